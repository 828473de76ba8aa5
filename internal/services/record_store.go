package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"expensebook/internal/core"
	"expensebook/internal/log"
	"expensebook/internal/storage"
)

// RecordStore manages the record partition of the active profile.
type RecordStore struct {
	kv     storage.KV
	logger *log.Logger
	clock  clock
}

// NewRecordStore creates a record store over kv. A nil logger discards output.
func NewRecordStore(kv storage.KV, logger *log.Logger) *RecordStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &RecordStore{kv: kv, logger: logger.WithComponent(log.ComponentRecord)}
}

// WithClock overrides the time source used for new record ids.
func (s *RecordStore) WithClock(now func() time.Time) *RecordStore {
	s.clock = now
	return s
}

// Load reads a profile's records in stored order. A missing or corrupted
// partition yields an empty set.
func (s *RecordStore) Load(ctx context.Context, profileID string) ([]core.Record, error) {
	var records []core.Record
	_, err := storage.LoadJSON(ctx, s.kv, storage.RecordsKey(profileID), &records)
	switch {
	case errors.Is(err, core.ErrInvalidFormat):
		s.logger.LogFields(ctx, slog.LevelWarn, "Stored records are corrupted, treating as empty",
			log.NewFields().WithOperation(log.OpRead).WithProfile(profileID, "").WithError(err))
		return []core.Record{}, nil
	case err != nil:
		return nil, fmt.Errorf("load records: %w", err)
	}
	if records == nil {
		records = []core.Record{}
	}
	return records, nil
}

// Add validates in and appends the new record to the active profile.
func (s *RecordStore) Add(ctx context.Context, st core.State, in core.RecordInput) (core.State, core.Record, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return st, core.Record{}, err
	}
	rec, err := core.NewRecord(in, st.Records, s.clock.now())
	if err != nil {
		return st, core.Record{}, err
	}
	next := append(slices.Clone(st.Records), rec)
	if err := s.persist(ctx, active.ID, next); err != nil {
		return st, core.Record{}, err
	}
	s.logger.LogFields(ctx, slog.LevelDebug, "Record added", log.NewFields().
		WithOperation(log.OpCreate).
		WithProfile(active.ID, active.Name).
		WithRecord(rec.ID, rec.Amount.String(), string(rec.Category)))
	return st.WithRecords(next), rec, nil
}

// PrepareDelete reports which record Delete would remove.
func (s *RecordStore) PrepareDelete(_ context.Context, st core.State, id int64) (Impact, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return Impact{}, err
	}
	rec, ok := st.FindRecord(id)
	if !ok {
		return Impact{}, fmt.Errorf("record %d: %w", id, core.ErrNotFound)
	}
	return Impact{
		ProfileID:   active.ID,
		ProfileName: active.Name,
		Records:     1,
		Total:       rec.Amount,
		Record:      &rec,
	}, nil
}

// Delete removes the record with id. An unknown id is a no-op.
func (s *RecordStore) Delete(ctx context.Context, st core.State, id int64) (core.State, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return st, err
	}
	if _, ok := st.FindRecord(id); !ok {
		return st, nil
	}
	next := slices.DeleteFunc(slices.Clone(st.Records), func(r core.Record) bool { return r.ID == id })
	if err := s.persist(ctx, active.ID, next); err != nil {
		return st, err
	}
	s.logger.DebugContext(ctx, "Record deleted", log.FieldProfileID, active.ID, log.FieldRecordID, id)
	return st.WithRecords(next), nil
}

// PrepareClear reports how many records Clear would remove.
func (s *RecordStore) PrepareClear(_ context.Context, st core.State) (Impact, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return Impact{}, err
	}
	return Impact{
		ProfileID:   active.ID,
		ProfileName: active.Name,
		Records:     len(st.Records),
		Total:       sumRecords(st.Records),
	}, nil
}

// Clear empties the active profile's records. Clearing an empty set succeeds.
func (s *RecordStore) Clear(ctx context.Context, st core.State) (core.State, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return st, err
	}
	if err := s.persist(ctx, active.ID, []core.Record{}); err != nil {
		return st, err
	}
	s.logger.LogFields(ctx, slog.LevelInfo, "Records cleared", log.NewFields().
		WithOperation(log.OpClear).
		WithProfile(active.ID, active.Name).
		WithCount(len(st.Records)))
	return st.WithRecords([]core.Record{}), nil
}

// Replace stores records as the active profile's complete set.
func (s *RecordStore) Replace(ctx context.Context, st core.State, records []core.Record) (core.State, error) {
	active, err := st.ActiveProfile()
	if err != nil {
		return st, err
	}
	next := slices.Clone(records)
	if next == nil {
		next = []core.Record{}
	}
	if err := s.persist(ctx, active.ID, next); err != nil {
		return st, err
	}
	s.logger.LogFields(ctx, slog.LevelInfo, "Records replaced", log.NewFields().
		WithOperation(log.OpImport).
		WithProfile(active.ID, active.Name).
		WithCount(len(next)))
	return st.WithRecords(next), nil
}

func (s *RecordStore) persist(ctx context.Context, profileID string, records []core.Record) error {
	m, err := storage.SetJSON(storage.RecordsKey(profileID), records)
	if err != nil {
		return err
	}
	if err := storage.Apply(ctx, s.kv, m); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist records",
			log.FieldProfileID, profileID, log.FieldError, err)
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}
