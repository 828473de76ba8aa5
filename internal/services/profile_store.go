package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"expensebook/internal/core"
	"expensebook/internal/log"
	"expensebook/internal/storage"
)

// summaryConcurrency bounds the partitions read in parallel by Summaries.
const summaryConcurrency = 4

// ProfileSummary is a profile with the size of its record set.
type ProfileSummary struct {
	Profile core.Profile
	Count   int
	Total   core.Money
	Active  bool
}

// ProfileStore manages the profile list and the active selection.
type ProfileStore struct {
	kv      storage.KV
	records *RecordStore
	logger  *log.Logger
	clock   clock
}

// NewProfileStore creates a profile store. records is used to load the
// active profile's set whenever the selection changes.
func NewProfileStore(kv storage.KV, records *RecordStore, logger *log.Logger) *ProfileStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &ProfileStore{
		kv:      kv,
		records: records,
		logger:  logger.WithComponent(log.ComponentProfile),
	}
}

// WithClock overrides the time source used for creation timestamps.
func (s *ProfileStore) WithClock(now func() time.Time) *ProfileStore {
	s.clock = now
	return s
}

// List returns the profiles in creation order.
func (s *ProfileStore) List(st core.State) []core.Profile {
	return slices.Clone(st.Profiles)
}

// Active returns the active profile, if any.
func (s *ProfileStore) Active(st core.State) (core.Profile, bool) {
	p, err := st.ActiveProfile()
	return p, err == nil
}

// Create adds a profile. The active selection is not changed.
func (s *ProfileStore) Create(ctx context.Context, st core.State, name string) (core.State, core.Profile, error) {
	p, err := core.NewProfile(name, st.Profiles, s.clock.now())
	if err != nil {
		return st, core.Profile{}, err
	}
	profiles := append(slices.Clone(st.Profiles), p)
	m, err := storage.SetJSON(storage.UsersKey, profiles)
	if err != nil {
		return st, core.Profile{}, err
	}
	if err := storage.Apply(ctx, s.kv, m); err != nil {
		return st, core.Profile{}, fmt.Errorf("save profiles: %w", err)
	}
	s.logger.InfoContext(ctx, "Profile created", log.FieldProfileID, p.ID, log.FieldProfile, p.Name)

	st.Profiles = profiles
	return st, p, nil
}

// PrepareDelete reports what deleting the profile would remove.
func (s *ProfileStore) PrepareDelete(ctx context.Context, st core.State, id string) (Impact, error) {
	p, ok := st.FindProfile(id)
	if !ok {
		return Impact{}, fmt.Errorf("profile %s: %w", id, core.ErrNotFound)
	}
	records := st.Records
	if st.Active == nil || st.Active.ID != id {
		var err error
		if records, err = s.records.Load(ctx, id); err != nil {
			return Impact{}, err
		}
	}
	return Impact{
		ProfileID:   p.ID,
		ProfileName: p.Name,
		Records:     len(records),
		Total:       sumRecords(records),
	}, nil
}

// Delete removes the profile and its records in one write. Deleting the
// active profile clears the selection.
func (s *ProfileStore) Delete(ctx context.Context, st core.State, id string) (core.State, error) {
	p, ok := st.FindProfile(id)
	if !ok {
		return st, fmt.Errorf("profile %s: %w", id, core.ErrNotFound)
	}
	profiles := slices.DeleteFunc(slices.Clone(st.Profiles), func(q core.Profile) bool { return q.ID == id })
	users, err := storage.SetJSON(storage.UsersKey, profiles)
	if err != nil {
		return st, err
	}
	muts := []storage.Mutation{users, storage.Remove(storage.RecordsKey(id))}

	wasActive := st.Active != nil && st.Active.ID == id
	if wasActive {
		muts = append(muts, storage.Remove(storage.LastUserKey))
	}
	if err := storage.Apply(ctx, s.kv, muts...); err != nil {
		return st, fmt.Errorf("delete profile: %w", err)
	}
	s.logger.LogFields(ctx, slog.LevelInfo, "Profile deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithProfile(p.ID, p.Name))

	st.Profiles = profiles
	if wasActive {
		st.Active = nil
		st.Records = []core.Record{}
	}
	return st, nil
}

// SetActive selects a profile, remembers it as the last active one and
// replaces the in-memory record set with that profile's records.
func (s *ProfileStore) SetActive(ctx context.Context, st core.State, id string) (core.State, core.Profile, error) {
	p, ok := st.FindProfile(id)
	if !ok {
		return st, core.Profile{}, fmt.Errorf("profile %s: %w", id, core.ErrNotFound)
	}
	records, err := s.records.Load(ctx, p.ID)
	if err != nil {
		return st, core.Profile{}, err
	}
	if err := storage.Apply(ctx, s.kv, storage.Set(storage.LastUserKey, []byte(p.ID))); err != nil {
		return st, core.Profile{}, fmt.Errorf("save active profile: %w", err)
	}
	s.logger.LogFields(ctx, slog.LevelDebug, "Profile activated", log.NewFields().
		WithOperation(log.OpActivate).
		WithProfile(p.ID, p.Name).
		WithCount(len(records)))

	st.Active = &p
	st.Records = records
	return st, p, nil
}

// Restore rebuilds the state from storage: the profile list, then the last
// active profile and its records when it still exists.
func (s *ProfileStore) Restore(ctx context.Context) (core.State, error) {
	st := core.State{Profiles: []core.Profile{}, Records: []core.Record{}}

	var profiles []core.Profile
	_, err := storage.LoadJSON(ctx, s.kv, storage.UsersKey, &profiles)
	switch {
	case errors.Is(err, core.ErrInvalidFormat):
		s.logger.WarnContext(ctx, "Stored profile list is corrupted, starting empty", log.FieldError, err)
	case err != nil:
		return st, fmt.Errorf("restore profiles: %w", err)
	case profiles != nil:
		st.Profiles = profiles
	}

	last, found, err := s.kv.Get(ctx, storage.LastUserKey)
	if err != nil {
		return st, fmt.Errorf("%w: restore active profile: %v", core.ErrStorageUnavailable, err)
	}
	if !found {
		return st, nil
	}
	p, ok := st.FindProfile(strings.TrimSpace(string(last)))
	if !ok {
		s.logger.DebugContext(ctx, "Last active profile no longer exists", log.FieldProfileID, string(last))
		return st, nil
	}
	records, err := s.records.Load(ctx, p.ID)
	if err != nil {
		return st, err
	}
	s.logger.LogFields(ctx, slog.LevelDebug, "State restored", log.NewFields().
		WithOperation(log.OpRestore).
		WithProfile(p.ID, p.Name).
		WithCount(len(records)))

	st.Active = &p
	st.Records = records
	return st, nil
}

// Summaries returns every profile with its record count and total, in list
// order. Partitions are read concurrently.
func (s *ProfileStore) Summaries(ctx context.Context, st core.State) ([]ProfileSummary, error) {
	out := make([]ProfileSummary, len(st.Profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i, p := range st.Profiles {
		g.Go(func() error {
			records, err := s.records.Load(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("profile %s: %w", p.Name, err)
			}
			out[i] = ProfileSummary{
				Profile: p,
				Count:   len(records),
				Total:   sumRecords(records),
				Active:  st.Active != nil && st.Active.ID == p.ID,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.LogFields(ctx, slog.LevelWarn, "Failed to summarize profiles", log.NewFields().
			WithOperation(log.OpList).
			WithError(err))
		return nil, err
	}
	return out, nil
}

// Prune removes record partitions that belong to no profile and returns
// how many were removed.
func (s *ProfileStore) Prune(ctx context.Context, st core.State) (int, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list keys: %v", core.ErrStorageUnavailable, err)
	}
	owned := make(map[string]bool, len(st.Profiles))
	for _, p := range st.Profiles {
		owned[storage.RecordsKey(p.ID)] = true
	}
	var muts []storage.Mutation
	for _, k := range keys {
		if storage.IsRecordsKey(k) && !owned[k] {
			muts = append(muts, storage.Remove(k))
		}
	}
	if len(muts) == 0 {
		return 0, nil
	}
	if err := storage.Apply(ctx, s.kv, muts...); err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	s.logger.LogFields(ctx, slog.LevelInfo, "Orphaned record partitions removed", log.NewFields().
		WithOperation(log.OpPrune).
		WithCount(len(muts)))
	return len(muts), nil
}
