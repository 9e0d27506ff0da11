package history

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/raine/market-dashboard/internal/listing"
	"github.com/raine/market-dashboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHistoryTest(t *testing.T) (*Store, *storage.SQLiteStore) {
	kv, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	store := NewStore(kv)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return store, kv
}

func ptr(v float64) *float64 { return &v }

func TestStore_RecordDedupesCaseInsensitively(t *testing.T) {
	store, _ := setupHistoryTest(t)

	_, err := store.Record(listing.Query{Text: "camera", PriceMode: listing.PriceModeAuto, FilterStrength: 4})
	require.NoError(t, err)
	_, err = store.Record(listing.Query{Text: "lens"})
	require.NoError(t, err)
	second, err := store.Record(listing.Query{Text: "CAMERA", PriceMode: listing.PriceModeSpecific, MinPrice: ptr(50), MaxPrice: ptr(200)})
	require.NoError(t, err)

	entries := store.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "CAMERA", entries[0].Text)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, listing.PriceModeSpecific, entries[0].PriceMode)
	assert.Equal(t, 200.0, *entries[0].MaxPrice)
	assert.True(t, time.Date(2025, 1, 1, 12, 3, 0, 0, time.UTC).Equal(entries[0].Timestamp))
	assert.Equal(t, "Min 50 · Max 200", entries[0].RangeLabel)
	assert.Equal(t, "lens", entries[1].Text)
}

func TestStore_RecordCapsAtTwenty(t *testing.T) {
	store, _ := setupHistoryTest(t)

	for i := 0; i < 25; i++ {
		_, err := store.Record(listing.Query{Text: fmt.Sprintf("query %d", i)})
		require.NoError(t, err)
	}

	entries := store.List()
	require.Len(t, entries, MaxEntries)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("query %d", 24-i), e.Text)
	}
}

func TestStore_CorruptBlobIsEmpty(t *testing.T) {
	store, kv := setupHistoryTest(t)

	require.NoError(t, kv.Set(Key, "{not json"))
	assert.Empty(t, store.List())

	_, err := store.Record(listing.Query{Text: "camera"})
	require.NoError(t, err)
	assert.Len(t, store.List(), 1)
}

func TestStore_Clear(t *testing.T) {
	store, kv := setupHistoryTest(t)

	_, err := store.Record(listing.Query{Text: "camera"})
	require.NoError(t, err)
	require.NoError(t, store.Clear())

	assert.Empty(t, store.List())
	_, ok, err := kv.Get(Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Find(t *testing.T) {
	store, _ := setupHistoryTest(t)

	entry, err := store.Record(listing.Query{Text: "camera", CategoryID: "625", ConditionID: "new"})
	require.NoError(t, err)

	found, ok := store.Find(entry.ID)
	require.True(t, ok)
	assert.Equal(t, "Cameras & Photo", found.CategoryLabel)
	assert.Equal(t, "New", found.ConditionLabel)

	_, ok = store.Find("missing")
	assert.False(t, ok)
}

type failingKV struct {
	getErr error
	setErr error
}

func (f *failingKV) Get(string) (string, bool, error) { return "", false, f.getErr }
func (f *failingKV) Set(string, string) error         { return f.setErr }
func (f *failingKV) Remove(string) error              { return nil }

func TestStore_ReadErrorIsEmptyList(t *testing.T) {
	store := NewStore(&failingKV{getErr: errors.New("disk on fire")})
	assert.Empty(t, store.List())
}

// flakyKV fails the next Get once, then passes through.
type flakyKV struct {
	KV
	failNext bool
}

func (f *flakyKV) Get(key string) (string, bool, error) {
	if f.failNext {
		f.failNext = false
		return "", false, errors.New("database is locked")
	}
	return f.KV.Get(key)
}

func TestStore_RecordKeepsHistoryOnReadError(t *testing.T) {
	_, kv := setupHistoryTest(t)
	flaky := &flakyKV{KV: kv}
	store := NewStore(flaky)

	for i := 0; i < 10; i++ {
		_, err := store.Record(listing.Query{Text: fmt.Sprintf("q%d", i)})
		require.NoError(t, err)
	}

	flaky.failNext = true
	_, err := store.Record(listing.Query{Text: "new one"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read history")

	entries := store.List()
	require.Len(t, entries, 10)
	assert.Equal(t, "q9", entries[0].Text)

	_, err = store.Record(listing.Query{Text: "new one"})
	require.NoError(t, err)
	assert.Len(t, store.List(), 11)
}

func TestStore_TimestampKeepsMilliseconds(t *testing.T) {
	store, kv := setupHistoryTest(t)
	store.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 123456789, time.UTC) }

	_, err := store.Record(listing.Query{Text: "camera"})
	require.NoError(t, err)

	raw, _, err := kv.Get(Key)
	require.NoError(t, err)
	assert.Contains(t, raw, `"timestamp":"2025-01-01T12:00:00.123Z"`)
	assert.Equal(t, 123*time.Millisecond, time.Duration(store.List()[0].Timestamp.Nanosecond()))
}

func TestStore_WriteErrorIsReturned(t *testing.T) {
	store := NewStore(&failingKV{setErr: errors.New("read-only")})

	_, err := store.Record(listing.Query{Text: "camera"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save history")
}
