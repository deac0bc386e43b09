package analytics

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists visits in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create analytics dir: %w", err)
	}
	// Pragmas in the DSN apply to every pooled connection. WAL lets the
	// dashboard read while the middleware writes; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			timestamp DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting returns the value for key, or "" when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetSetting upserts a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Salt loads the per-installation hashing salt, creating it on first use.
func (s *Store) Salt(ctx context.Context) (string, error) {
	salt, err := s.GetSetting(ctx, "hash_salt")
	if err != nil {
		return "", fmt.Errorf("read hash salt: %w", err)
	}
	if salt != "" {
		return salt, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt = hex.EncodeToString(b)
	if err := s.SetSetting(ctx, "hash_salt", salt); err != nil {
		return "", fmt.Errorf("store hash salt: %w", err)
	}
	return salt, nil
}

// SaveVisit stores a human page view.
func (s *Store) SaveVisit(ctx context.Context, v Visit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO visits
		(visitor_id, ip_hash, browser, os, device, path, referrer, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.IPHash, v.Browser, v.OS, v.Device, v.Path, v.Referrer, v.Timestamp.UTC())
	return err
}

// SaveBotVisit stores a crawler page view.
func (s *Store) SaveBotVisit(ctx context.Context, bv BotVisit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_visits
		(bot_name, ip_hash, user_agent, path, timestamp) VALUES (?, ?, ?, ?, ?)`,
		bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, bv.Timestamp.UTC())
	return err
}

// GetStats aggregates visits in [from, to).
func (s *Store) GetStats(ctx context.Context, from, to time.Time) (*Stats, error) {
	from, to = from.UTC(), to.UTC()
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ? AND timestamp < ?`,
		from, to).Scan(&stats.TotalViews, &stats.UniqueVisitors); err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bot_visits WHERE timestamp >= ? AND timestamp < ?`,
		from, to).Scan(&stats.BotVisits); err != nil {
		return nil, fmt.Errorf("count bot visits: %w", err)
	}

	var err error
	if stats.TopPages, err = s.topPages(ctx, from, to, 10); err != nil {
		return nil, err
	}
	if stats.BrowserStats, err = s.dimension(ctx, "browser", from, to); err != nil {
		return nil, err
	}
	if stats.DeviceStats, err = s.dimension(ctx, "device", from, to); err != nil {
		return nil, err
	}
	if stats.ReferrerStats, err = s.dimension(ctx, "referrer", from, to); err != nil {
		return nil, err
	}
	if stats.DailyViews, err = s.dailyViews(ctx, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) topPages(ctx context.Context, from, to time.Time, limit int) ([]PageStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, COUNT(*) AS views FROM visits
		WHERE timestamp >= ? AND timestamp < ?
		GROUP BY path ORDER BY views DESC, path LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	defer rows.Close()

	var out []PageStat
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// dimension groups visits by column, which must be a fixed column name.
func (s *Store) dimension(ctx context.Context, column string, from, to time.Time) ([]DimensionStat, error) {
	switch column {
	case "browser", "os", "device", "referrer":
	default:
		return nil, fmt.Errorf("unknown dimension %q", column)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) AS n FROM visits
		WHERE timestamp >= ? AND timestamp < ?
		GROUP BY `+column+` ORDER BY n DESC, `+column+` LIMIT 10`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s stats: %w", column, err)
	}
	defer rows.Close()

	var out []DimensionStat
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) dailyViews(ctx context.Context, from, to time.Time) ([]DailyView, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp FROM visits
		WHERE timestamp >= ? AND timestamp < ?`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily views: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		counts[ts.UTC().Format("2006-01-02")]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// one entry per day, zero-filled, oldest first
	var out []DailyView
	for d := TruncateDay(from); d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		out = append(out, DailyView{Date: key, Views: counts[key]})
	}
	return out, nil
}

// CleanupOldVisits removes visits and bot visits older than retentionDays.
func (s *Store) CleanupOldVisits(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup visits: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bot_visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot_visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs CleanupOldVisits every interval until the
// returned stop function is called. Errors go to onErr.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, onErr func(error)) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldVisits(context.Background(), retentionDays); err != nil && onErr != nil {
					onErr(err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

// TruncateDay returns midnight UTC of t's day.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
