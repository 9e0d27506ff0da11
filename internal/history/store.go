// Package history keeps the most recent distinct searches.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raine/market-dashboard/internal/listing"
	"github.com/rs/zerolog/log"
)

const (
	// Key is the storage key holding the serialized history.
	Key = "search_history"

	// MaxEntries is the number of searches kept.
	MaxEntries = 20
)

// KV is the persistence the history is written to.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Entry is one remembered search.
type Entry struct {
	ID string `json:"id"`
	listing.Query
	Timestamp      time.Time `json:"timestamp"`
	CategoryLabel  string    `json:"categoryLabel"`
	ConditionLabel string    `json:"conditionLabel"`
	RangeLabel     string    `json:"rangeLabel"`
}

// Store is a most-recently-used set of searches: recording a query whose text
// already exists (case-insensitively) moves it to the front with the new
// parameters.
type Store struct {
	kv    KV
	now   func() time.Time
	newID func() string
}

// NewStore creates a history backed by kv.
func NewStore(kv KV) *Store {
	return &Store{
		kv:    kv,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Record stores q as the most recent search and returns the new entry. A
// failed read leaves the stored history untouched.
func (s *Store) Record(q listing.Query) (Entry, error) {
	entries, err := s.load()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read history: %w", err)
	}

	kept := make([]Entry, 0, len(entries)+1)
	entry := Entry{
		ID:             s.newID(),
		Query:          q,
		Timestamp:      s.now().UTC().Truncate(time.Millisecond),
		CategoryLabel:  q.CategoryLabel(),
		ConditionLabel: q.ConditionLabel(),
		RangeLabel:     q.RangeLabel(),
	}
	kept = append(kept, entry)
	for _, e := range entries {
		if strings.EqualFold(e.Text, q.Text) {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > MaxEntries {
		kept = kept[:MaxEntries]
	}

	if err := s.write(kept); err != nil {
		return Entry{}, err
	}

	log.Debug().Str("query", q.Text).Int("entries", len(kept)).Msg("search history updated")
	return entry, nil
}

// List returns the history, most recent first.
func (s *Store) List() []Entry {
	return s.read()
}

// Find returns the entry with the given ID.
func (s *Store) Find(id string) (Entry, bool) {
	for _, e := range s.read() {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Clear removes the stored history.
func (s *Store) Clear() error {
	if err := s.kv.Remove(Key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// read never fails: a missing, unreadable or corrupt blob is an empty
// history.
func (s *Store) read() []Entry {
	entries, err := s.load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read search history")
		return []Entry{}
	}
	return entries
}

// load only fails when the store itself does. A missing or corrupt blob is an
// empty history.
func (s *Store) load() ([]Entry, error) {
	raw, ok, err := s.kv.Get(Key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Warn().Err(err).Msg("discarding corrupt search history")
		return []Entry{}, nil
	}
	if entries == nil {
		return []Entry{}, nil
	}
	return entries, nil
}

func (s *Store) write(entries []Entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := s.kv.Set(Key, string(b)); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
