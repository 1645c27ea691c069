package engine

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// DefaultDailyLimit is the default YouTube Data API daily quota.
const DefaultDailyLimit = 10_000

// defaultCosts holds quota units per operation type, from Google's
// documentation. Unknown operations cost 1 unit.
var defaultCosts = map[string]int{
	"list":           1,
	"insert":         50,
	"update":         50,
	"delete":         50,
	"search":         100,
	"video_insert":   1600,
	"caption_insert": 400,
	"caption_update": 450,
	"thumbnail_set":  50,
}

// quotaTZ is the timezone the daily budget resets in. YouTube quota resets
// at midnight Pacific Time.
const quotaTZ = "America/Los_Angeles"

// LedgerConfig configures a Ledger.
type LedgerConfig struct {
	DailyLimit int
	DBPath     string           // empty = in-memory only, budget resets on restart
	CostsPath  string           // optional costs.yaml override
	Now        func() time.Time // nil = time.Now, injectable for tests
}

// costsFile is the shape of an optional costs.yaml override.
type costsFile struct {
	DailyLimit int            `yaml:"daily_limit"`
	Costs      map[string]int `yaml:"costs"`
}

// Ledger tracks the declining daily quota budget. All reserve/commit/release
// sequences serialize on one mutex so two concurrent reservations can never
// both observe stale remaining budget and double-spend.
type Ledger struct {
	mu       sync.Mutex
	limit    int
	used     int
	reserved int
	resetAt  time.Time
	loc      *time.Location
	costs    map[string]int
	db       *sql.DB
	now      func() time.Time
}

// Reservation is a provisional quota deduction, later confirmed with Commit
// or undone with Release. Exactly one of the two must be called.
type Reservation struct {
	ID     string
	ledger *Ledger
	cost   int
	done   bool
}

// QuotaStatus is a snapshot of the current budget.
type QuotaStatus struct {
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	Day       string    `json:"day"`
	ResetAt   time.Time `json:"reset_at"`
}

// NewLedger creates a quota ledger. When DBPath is set, consumed units are
// persisted per calendar day so a restart cannot reset an exhausted budget.
func NewLedger(c LedgerConfig) (*Ledger, error) {
	loc, err := time.LoadLocation(quotaTZ)
	if err != nil {
		slog.Warn("quota: tzdata lookup failed, using UTC", slog.Any("error", err))
		loc = time.UTC
	}

	l := &Ledger{
		limit: c.DailyLimit,
		loc:   loc,
		costs: defaultCosts,
		now:   c.Now,
	}
	if l.limit <= 0 {
		l.limit = DefaultDailyLimit
	}
	if l.now == nil {
		l.now = time.Now
	}
	l.resetAt = nextMidnight(l.now(), loc)

	if c.CostsPath != "" {
		if err := l.loadCosts(c.CostsPath); err != nil {
			return nil, err
		}
	}

	if c.DBPath != "" {
		if err := l.openDB(c.DBPath); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Cost returns the unit cost for an operation type, defaulting to 1.
func (l *Ledger) Cost(operation string) int {
	if c, ok := l.costs[operation]; ok {
		return c
	}
	return 1
}

// Reserve checks the request against the remaining budget and holds cost
// units on success. A denial happens before any network I/O — that is the
// hard-fail guarantee.
func (l *Ledger) Reserve(cost int) (*Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDay()

	available := l.limit - l.used - l.reserved
	if cost > available {
		remaining := available
		if remaining < 0 {
			remaining = 0
		}
		return nil, &QuotaError{
			Requested: cost,
			Remaining: remaining,
			Limit:     l.limit,
			ResetAt:   l.resetAt,
		}
	}

	l.reserved += cost
	return &Reservation{ID: uuid.New().String(), ledger: l, cost: cost}, nil
}

// Commit finalizes the reservation with the actual cost charged, which may
// differ from the estimate (paginated calls). Idempotent after first use.
func (r *Reservation) Commit(actual int) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	l.rollDay()
	l.reserved -= r.cost
	l.used += actual
	l.persist()
}

// Release undoes a reservation whose call never charged quota.
func (r *Reservation) Release() {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	l.reserved -= r.cost
}

// Status returns a snapshot of the budget.
func (l *Ledger) Status() QuotaStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDay()
	remaining := l.limit - l.used - l.reserved
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{
		Used:      l.used,
		Remaining: remaining,
		Limit:     l.limit,
		Day:       l.dayKey(l.now()),
		ResetAt:   l.resetAt,
	}
}

// Close releases the underlying database handle, if any.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// rollDay lazily zeroes consumption once per reset crossing. In-flight
// reservations are left in place; they commit into the new day.
// Caller must hold l.mu.
func (l *Ledger) rollDay() {
	now := l.now()
	if now.Before(l.resetAt) {
		return
	}
	l.used = 0
	l.resetAt = nextMidnight(now, l.loc)
	l.persist()
}

func (l *Ledger) dayKey(t time.Time) string {
	return t.In(l.loc).Format("2006-01-02")
}

func nextMidnight(now time.Time, loc *time.Location) time.Time {
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day()+1, 0, 0, 0, 0, loc)
}

func (l *Ledger) loadCosts(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("quota: read costs file: %w", err)
	}
	var cf costsFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("quota: parse %s: %w", path, err)
	}
	if cf.DailyLimit > 0 {
		l.limit = cf.DailyLimit
	}
	if len(cf.Costs) > 0 {
		merged := make(map[string]int, len(defaultCosts)+len(cf.Costs))
		for k, v := range defaultCosts {
			merged[k] = v
		}
		for k, v := range cf.Costs {
			merged[k] = v
		}
		l.costs = merged
	}
	slog.Info("quota: cost overrides loaded", slog.String("path", path), slog.Int("limit", l.limit))
	return nil
}

func (l *Ledger) openDB(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("quota: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("quota: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS quota_days (
		day  TEXT PRIMARY KEY,
		used INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return fmt.Errorf("quota: init schema: %w", err)
	}
	l.db = db

	var used int
	err = db.QueryRow(`SELECT used FROM quota_days WHERE day = ?`, l.dayKey(l.now())).Scan(&used)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		db.Close()
		l.db = nil
		return fmt.Errorf("quota: load state: %w", err)
	default:
		l.used = used
		slog.Info("quota: restored state", slog.Int("used", used), slog.Int("limit", l.limit))
	}
	return nil
}

// persist writes the current day's consumption. Caller must hold l.mu.
func (l *Ledger) persist() {
	if l.db == nil {
		return
	}
	_, err := l.db.Exec(
		`INSERT INTO quota_days (day, used) VALUES (?, ?)
		 ON CONFLICT(day) DO UPDATE SET used = excluded.used`,
		l.dayKey(l.now()), l.used,
	)
	if err != nil {
		slog.Warn("quota: persist failed", slog.Any("error", err))
	}
}
