// Package store contains the core logic for the in-memory inventory.
// It maps item names to stock quantities and is safe for concurrent access.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ASHISH26940/stockledger/internal/persistence"
)

// DefaultLowThreshold is the quantity below which an item counts as low stock.
const DefaultLowThreshold = 5

var (
	// ErrInvalidItem is returned for a blank name or a quantity that is not a finite number.
	ErrInvalidItem = errors.New("invalid item")
	// ErrItemNotFound is returned when removing an item that is not stocked.
	ErrItemNotFound = errors.New("item not in stock")
)

// LogEntry records one successful add for the lifetime of the store.
type LogEntry struct {
	ID      string
	Time    time.Time
	Message string
}

func (e LogEntry) String() string {
	return e.Time.Format("2006-01-02 15:04:05.000000") + ": " + e.Message
}

// Store is a thread-safe in-memory inventory.
type Store struct {
	mu   sync.RWMutex
	data map[string]float64
	logs []LogEntry

	log *zap.Logger
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for warnings and load/save notices.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used for log entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New initializes and returns a new empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]float64),
		log:  zap.NewNop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add increases the stock of name by qty. Negative quantities are accepted
// with a warning. Invalid input leaves the inventory untouched.
func (s *Store) Add(name string, qty float64) error {
	if err := validateEntry(name, qty); err != nil {
		return err
	}
	if qty < 0 {
		s.log.Warn("adding negative quantity", zap.String("item", name), zap.Float64("quantity", qty))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.data[name] + qty
	if !isFinite(total) {
		return fmt.Errorf("%w: stock of %q would overflow", ErrInvalidItem, name)
	}
	if total <= 0 {
		delete(s.data, name)
	} else {
		s.data[name] = total
	}
	s.logs = append(s.logs, LogEntry{
		ID:      uuid.NewString(),
		Time:    s.now(),
		Message: fmt.Sprintf("Added %s of %s", FormatQuantity(qty), name),
	})
	return nil
}

// Remove decreases the stock of name by qty and drops the item once its
// quantity reaches zero or below.
func (s *Store) Remove(name string, qty float64) error {
	if err := validateEntry(name, qty); err != nil {
		return err
	}
	if qty < 0 {
		s.log.Warn("removing negative quantity", zap.String("item", name), zap.Float64("quantity", qty))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrItemNotFound, name)
	}
	total := current - qty
	if !isFinite(total) {
		return fmt.Errorf("%w: stock of %q would overflow", ErrInvalidItem, name)
	}
	if total <= 0 {
		delete(s.data, name)
		return nil
	}
	s.data[name] = total
	return nil
}

// Get returns the stock of name, or 0 if it is not stocked.
func (s *Store) Get(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[name]
}

// ListLow returns the names of items whose quantity is strictly below
// threshold, sorted by name.
func (s *Store) ListLow(threshold float64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	low := make([]string, 0)
	for name, qty := range s.data {
		if qty < threshold {
			low = append(low, name)
		}
	}
	sort.Strings(low)
	return low
}

// Len returns the number of stocked items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Items returns a copy of the inventory.
func (s *Store) Items() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make(map[string]float64, len(s.data))
	for name, qty := range s.data {
		items[name] = qty
	}
	return items
}

// Replace discards the current inventory and copies items in its place.
// Entries are taken verbatim.
func (s *Store) Replace(items map[string]float64) {
	data := make(map[string]float64, len(items))
	for name, qty := range items {
		data[name] = qty
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

// Logs returns the add log in the order entries were recorded.
func (s *Store) Logs() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LogEntry(nil), s.logs...)
}

// Load replaces the inventory with the document at path. A missing file
// leaves an empty inventory and is not an error. A document that cannot be
// read or parsed also leaves an empty inventory, and the cause is returned.
func (s *Store) Load(path string) error {
	items, err := persistence.ReadFile(path)
	if err != nil {
		s.Replace(nil)
		if errors.Is(err, os.ErrNotExist) {
			s.log.Warn("inventory file not found, starting with an empty inventory", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("load inventory: %w", err)
	}

	s.Replace(items)
	s.log.Info("inventory loaded", zap.String("path", path), zap.Int("items", len(items)))
	return nil
}

// Save writes the inventory to path as an indented JSON document.
func (s *Store) Save(path string) error {
	items := s.Items()
	if err := persistence.WriteFile(path, items); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	s.log.Info("inventory saved", zap.String("path", path), zap.Int("items", len(items)))
	return nil
}

// Report writes every item and its quantity to w, sorted by name.
func (s *Store) Report(w io.Writer) error {
	items := s.Items()
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("--- Items Report ---\n")
	if len(names) == 0 {
		b.WriteString("Inventory is empty.\n")
	}
	for _, name := range names {
		fmt.Fprintf(&b, "%s -> %s\n", name, FormatQuantity(items[name]))
	}
	b.WriteString("--------------------\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatQuantity renders qty without trailing zeros, e.g. 7 or 2.5.
func FormatQuantity(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}
