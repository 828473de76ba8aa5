package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebook/internal/core"
	"expensebook/internal/log"
	"expensebook/internal/storage"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type env struct {
	kv       storage.KV
	records  *RecordStore
	profiles *ProfileStore
}

func newEnv(t *testing.T, kv storage.KV) env {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemoryKV()
	}
	now := testNow
	tick := func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
	rs := NewRecordStore(kv, nil).WithClock(tick)
	return env{
		kv:       kv,
		records:  rs,
		profiles: NewProfileStore(kv, rs, nil).WithClock(tick),
	}
}

func (e env) createActive(t *testing.T, st core.State, name string) (core.State, core.Profile) {
	t.Helper()
	ctx := context.Background()
	st, p, err := e.profiles.Create(ctx, st, name)
	require.NoError(t, err)
	st, _, err = e.profiles.SetActive(ctx, st, p.ID)
	require.NoError(t, err)
	return st, p
}

func (e env) add(t *testing.T, st core.State, amount, category, date string) core.State {
	t.Helper()
	st, _, err := e.records.Add(context.Background(), st, core.RecordInput{
		Amount: amount, Category: category, Date: date,
	})
	require.NoError(t, err)
	return st
}

func TestProfileStore_CreateValidation(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, p, err := e.profiles.Create(ctx, core.State{}, "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Nil(t, st.Active, "creating a profile does not select it")

	tests := []struct {
		name string
		want error
	}{
		{"", core.ErrEmptyName},
		{"   ", core.ErrEmptyName},
		{"ABCDEFGHIJK", core.ErrNameTooLong},
		{"Alice", core.ErrDuplicateName},
	}
	for _, tt := range tests {
		next, _, err := e.profiles.Create(ctx, st, tt.name)
		assert.ErrorIs(t, err, tt.want, "name %q", tt.name)
		assert.ErrorIs(t, err, core.ErrValidation)
		assert.Len(t, next.Profiles, 1)
	}

	restored, err := e.profiles.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Profile{p}, restored.Profiles)
}

func TestProfileStore_IsolationAcrossSwitches(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, a := e.createActive(t, core.State{}, "A")
	st = e.add(t, st, "10", "food", "2024-03-01")
	st = e.add(t, st, "5", "transport", "2024-03-02")

	st, b := e.createActive(t, st, "B")
	assert.Empty(t, st.Records)
	st = e.add(t, st, "99", "health", "2024-03-03")

	st, _, err := e.profiles.SetActive(ctx, st, a.ID)
	require.NoError(t, err)
	require.Len(t, st.Records, 2)
	for _, r := range st.Records {
		assert.NotEqual(t, "99", r.Amount.String())
	}

	fromB, err := e.records.Load(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, fromB, 1)
}

func TestProfileStore_DeleteCascades(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, a := e.createActive(t, core.State{}, "A")
	st = e.add(t, st, "1", "food", "2024-03-01")
	st = e.add(t, st, "2", "food", "2024-03-02")
	st, b, err := e.profiles.Create(ctx, st, "B")
	require.NoError(t, err)

	impact, err := e.profiles.PrepareDelete(ctx, st, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, impact.Records)
	assert.Equal(t, "3", impact.Total.String())

	st, err = e.profiles.Delete(ctx, st, a.ID)
	require.NoError(t, err)
	assert.Nil(t, st.Active)
	assert.Empty(t, st.Records)
	assert.Equal(t, []core.Profile{b}, e.profiles.List(st))

	left, err := e.records.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, found, err := e.kv.Get(ctx, storage.LastUserKey)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = e.profiles.Delete(ctx, st, a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = e.profiles.PrepareDelete(ctx, st, a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestProfileStore_DeleteInactiveKeepsSelection(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, other, err := e.profiles.Create(ctx, core.State{}, "Other")
	require.NoError(t, err)
	st, a := e.createActive(t, st, "A")
	st = e.add(t, st, "1", "food", "2024-03-01")

	st, err = e.profiles.Delete(ctx, st, other.ID)
	require.NoError(t, err)
	active, ok := e.profiles.Active(st)
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID)
	assert.Len(t, st.Records, 1)
}

func TestProfileStore_SetActiveUnknown(t *testing.T) {
	e := newEnv(t, nil)
	st, _, err := e.profiles.SetActive(context.Background(), core.State{}, "user_missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Nil(t, st.Active)
}

func TestProfileStore_Restore(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, err := e.profiles.Restore(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Profiles)
	assert.Nil(t, st.Active)

	st, a := e.createActive(t, st, "A")
	e.add(t, st, "7.5", "food", "2024-03-01")

	st, err = e.profiles.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.Active)
	assert.Equal(t, a.ID, st.Active.ID)
	require.Len(t, st.Records, 1)
	assert.Equal(t, "7.5", st.Records[0].Amount.String())

	// a dangling lastUserId is ignored
	require.NoError(t, e.kv.Put(ctx, storage.LastUserKey, []byte("user_gone")))
	st, err = e.profiles.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.Active)
	assert.Len(t, st.Profiles, 1)
}

func TestProfileStore_Summaries(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, a := e.createActive(t, core.State{}, "A")
	st = e.add(t, st, "1.25", "food", "2024-03-01")
	st = e.add(t, st, "2", "food", "2024-03-02")
	st, b, err := e.profiles.Create(ctx, st, "B")
	require.NoError(t, err)

	sums, err := e.profiles.Summaries(ctx, st)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, a.ID, sums[0].Profile.ID)
	assert.Equal(t, 2, sums[0].Count)
	assert.Equal(t, "3.25", sums[0].Total.String())
	assert.True(t, sums[0].Active)
	assert.Equal(t, b.ID, sums[1].Profile.ID)
	assert.Equal(t, 0, sums[1].Count)
	assert.False(t, sums[1].Active)
}

func TestProfileStore_Prune(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, _ := e.createActive(t, core.State{}, "A")
	st = e.add(t, st, "1", "food", "2024-03-01")
	require.NoError(t, e.kv.Put(ctx, storage.RecordsKey("user_orphan"), []byte(`[]`)))

	n, err := e.profiles.Prune(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = e.profiles.Prune(ctx, st)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, st.Records, 1)
}

func TestRecordStore_AddRequiresActiveProfile(t *testing.T) {
	e := newEnv(t, nil)
	_, _, err := e.records.Add(context.Background(), core.State{}, core.RecordInput{Amount: "1", Date: "2024-01-01"})
	assert.ErrorIs(t, err, core.ErrNoActiveProfile)
}

func TestRecordStore_AddValidation(t *testing.T) {
	e := newEnv(t, nil)
	st, _ := e.createActive(t, core.State{}, "A")

	tests := []struct {
		in   core.RecordInput
		want error
	}{
		{core.RecordInput{Amount: "0", Date: "2024-01-01"}, core.ErrInvalidAmount},
		{core.RecordInput{Amount: "-3", Date: "2024-01-01"}, core.ErrInvalidAmount},
		{core.RecordInput{Amount: "abc", Date: "2024-01-01"}, core.ErrInvalidAmount},
		{core.RecordInput{Amount: "3"}, core.ErrMissingDate},
		{core.RecordInput{Amount: "3", Date: "2024-13-40"}, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		next, _, err := e.records.Add(context.Background(), st, tt.in)
		assert.ErrorIs(t, err, tt.want)
		assert.Empty(t, next.Records)
	}
}

func TestRecordStore_AddThenDelete(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, a := e.createActive(t, core.State{}, "A")
	st = e.add(t, st, "10", "food", "2024-03-01")
	st, rec, err := e.records.Add(ctx, st, core.RecordInput{Amount: "2.5", Category: "shopping", Note: " gift ", Date: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, "gift", rec.Note)
	assert.Greater(t, rec.ID, st.Records[0].ID)
	assert.Equal(t, "12.5", sumRecords(st.Records).String())

	impact, err := e.records.PrepareDelete(ctx, st, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, impact.Record)
	assert.Equal(t, rec.ID, impact.Record.ID)

	before := st
	st, err = e.records.Delete(ctx, st, 424242)
	require.NoError(t, err)
	assert.Equal(t, before.Records, st.Records)
	_, err = e.records.PrepareDelete(ctx, st, 424242)
	assert.ErrorIs(t, err, core.ErrNotFound)

	st, err = e.records.Delete(ctx, st, rec.ID)
	require.NoError(t, err)
	require.Len(t, st.Records, 1)

	stored, err := e.records.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, st.Records, stored)
}

func TestRecordStore_Clear(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	_, err := e.records.Clear(ctx, core.State{})
	assert.ErrorIs(t, err, core.ErrNoActiveProfile)

	st, a := e.createActive(t, core.State{}, "A")
	impact, err := e.records.PrepareClear(ctx, st)
	require.NoError(t, err)
	assert.True(t, impact.Empty())

	st = e.add(t, st, "4", "food", "2024-03-01")
	impact, err = e.records.PrepareClear(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 1, impact.Records)

	st, err = e.records.Clear(ctx, st)
	require.NoError(t, err)
	assert.Empty(t, st.Records)

	raw, found, err := e.kv.Get(ctx, storage.RecordsKey(a.ID))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(raw))
}

func TestRecordStore_LoadCorruptedPartition(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	require.NoError(t, e.kv.Put(ctx, storage.RecordsKey("user_x"), []byte(`{"not":"a list"`)))

	records, err := e.records.Load(ctx, "user_x")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

type brokenKV struct {
	*storage.MemoryKV
	fail bool
}

func (b *brokenKV) Batch(ctx context.Context, muts ...storage.Mutation) error {
	if b.fail {
		return errors.New("quota exceeded")
	}
	return b.MemoryKV.Batch(ctx, muts...)
}

func TestFailedWritesLeaveStateUnchanged(t *testing.T) {
	kv := &brokenKV{MemoryKV: storage.NewMemoryKV()}
	e := newEnv(t, kv)
	ctx := context.Background()

	st, a := e.createActive(t, core.State{}, "A")
	st = e.add(t, st, "1", "food", "2024-03-01")
	kv.fail = true

	next, _, err := e.records.Add(ctx, st, core.RecordInput{Amount: "2", Date: "2024-03-02"})
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.Equal(t, st, next)

	next, err = e.records.Clear(ctx, st)
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.Equal(t, st, next)

	next, err = e.profiles.Delete(ctx, st, a.ID)
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.Equal(t, st, next)

	next, _, err = e.profiles.Create(ctx, st, "B")
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.Equal(t, st, next)

	kv.fail = false
	stored, err := e.records.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	restored, err := e.profiles.Restore(ctx)
	require.NoError(t, err)
	assert.Len(t, restored.Profiles, 1)
}

func TestRecordStore_Replace(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, a := e.createActive(t, core.State{}, "A")
	st = e.add(t, st, "1", "food", "2024-03-01")

	st, err := e.records.Replace(ctx, st, nil)
	require.NoError(t, err)
	assert.Empty(t, st.Records)

	loaded, err := e.records.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStores_LogOperations(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})
	kv := storage.NewMemoryKV()
	rs := NewRecordStore(kv, logger).WithClock(func() time.Time { return testNow })
	ps := NewProfileStore(kv, rs, logger).WithClock(func() time.Time { return testNow })
	ctx := context.Background()

	st, p, err := ps.Create(ctx, core.State{}, "Alice")
	require.NoError(t, err)
	st, _, err = ps.SetActive(ctx, st, p.ID)
	require.NoError(t, err)
	st, _, err = rs.Add(ctx, st, core.RecordInput{Amount: "3", Category: "food", Date: "2024-03-15"})
	require.NoError(t, err)
	_, err = rs.Clear(ctx, st)
	require.NoError(t, err)
	_, err = ps.Restore(ctx)
	require.NoError(t, err)

	ops := map[string]string{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if op, ok := entry[log.FieldOperation].(string); ok {
			ops[op] = entry[log.FieldComponent].(string)
		}
	}
	assert.Equal(t, log.ComponentProfile, ops[log.OpActivate])
	assert.Equal(t, log.ComponentProfile, ops[log.OpRestore])
	assert.Equal(t, log.ComponentRecord, ops[log.OpCreate])
	assert.Equal(t, log.ComponentRecord, ops[log.OpClear])
}
