// Package store persists user preferences and the recent-search list in a
// small sqlite key/value table. Values are written as whole-value
// replacements; there are no partial or merge writes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/weather-insight/internal/weather"
)

const (
	keyUnit          = "unit"
	keyTheme         = "theme"
	keySearchHistory = "search-history"
)

// HistoryCapacity bounds the recent-search list.
const HistoryCapacity = 5

// Theme is the display theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrInvalidPreference is returned when a preference value is not one of the
// allowed choices.
var ErrInvalidPreference = errors.New("invalid preference value")

// Preferences is the persisted user preference pair.
type Preferences struct {
	Unit  weather.Units `json:"unit"`
	Theme Theme         `json:"theme"`
}

// DefaultPreferences returns the metric/light defaults.
func DefaultPreferences() Preferences {
	return Preferences{Unit: weather.UnitsMetric, Theme: ThemeLight}
}

// Store is a sqlite-backed preference and search-history store. It keeps an
// in-memory copy of both values, loaded once at open, and writes through on
// every change.
type Store struct {
	db *sqlx.DB

	mu      sync.Mutex
	prefs   Preferences
	history []string
}

// Open opens (creating if needed) the store at the given sqlite path and
// loads persisted state. Unknown or corrupt persisted values fall back to
// defaults rather than failing the open.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}

	s := &Store{db: db, prefs: DefaultPreferences()}
	s.load()
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) load() {
	if v, ok := s.get(keyUnit); ok && weather.Units(v).Valid() {
		s.prefs.Unit = weather.Units(v)
	}
	if v, ok := s.get(keyTheme); ok && (Theme(v) == ThemeLight || Theme(v) == ThemeDark) {
		s.prefs.Theme = Theme(v)
	}
	if v, ok := s.get(keySearchHistory); ok {
		var history []string
		if err := json.Unmarshal([]byte(v), &history); err == nil {
			if len(history) > HistoryCapacity {
				history = history[:HistoryCapacity]
			}
			s.history = history
		}
	}
}

// Preferences returns the current preference pair.
func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetPreferences validates and persists a new preference pair, replacing both
// values wholesale.
func (s *Store) SetPreferences(p Preferences) error {
	if !p.Unit.Valid() {
		return fmt.Errorf("%w: unit %q", ErrInvalidPreference, p.Unit)
	}
	if p.Theme != ThemeLight && p.Theme != ThemeDark {
		return fmt.Errorf("%w: theme %q", ErrInvalidPreference, p.Theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.set(keyUnit, string(p.Unit)); err != nil {
		return err
	}
	if err := s.set(keyTheme, string(p.Theme)); err != nil {
		return err
	}
	s.prefs = p
	return nil
}

// History returns the recent searches, most recent first.
func (s *Store) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// RememberSearch records a resolved place name at the front of the history,
// promoting an existing entry instead of duplicating it and dropping the
// oldest entry beyond capacity. Empty names are ignored.
func (s *Store) RememberSearch(name string) error {
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := promote(s.history, name, HistoryCapacity)
	encoded, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	if err := s.set(keySearchHistory, string(encoded)); err != nil {
		return err
	}
	s.history = updated
	return nil
}

// promote returns history with name at the front, any prior occurrence
// removed, and length capped at limit.
func promote(history []string, name string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, name)
	for _, h := range history {
		if h == name {
			continue
		}
		out = append(out, h)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (s *Store) get(key string) (string, bool) {
	var value string
	if err := s.db.Get(&value, "SELECT value FROM kv WHERE key = ?", key); err != nil {
		return "", false
	}
	return value, true
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
