package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"PriceBoard/internal/logger"
	"PriceBoard/internal/model"
)

// SQLiteCache persists recent price points to a SQLite database.
type SQLiteCache struct {
	db       *sql.DB
	mu       sync.Mutex
	capacity int
	log      *zap.Logger
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
func NewSQLiteCache(dbPath string, capacity int, log *zap.Logger) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create cache dir")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	c := &SQLiteCache{db: db, capacity: capacity, log: logger.OrNop(log)}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	c.log.Info("sqlite cache opened", zap.String("path", dbPath), zap.Int("capacity", capacity))
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_points (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT    NOT NULL,
			timestamp INTEGER NOT NULL,
			price     REAL    NOT NULL,
			direction INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_symbol ON price_points(symbol, id)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return errors.Wrapf(err, "exec %q", s[:40])
		}
	}
	return nil
}

func (c *SQLiteCache) Load(symbol string) ([]model.PricePoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT timestamp, price, direction FROM price_points
		WHERE symbol = ? ORDER BY id`, symbol)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", symbol)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var ts int64
		var dir int
		var p model.PricePoint
		if err := rows.Scan(&ts, &p.Price, &dir); err != nil {
			return nil, errors.Wrapf(err, "scan %s", symbol)
		}
		p.Time = time.UnixMilli(ts)
		p.Direction = model.Direction(dir)
		points = append(points, p)
	}
	return points, rows.Err()
}

func (c *SQLiteCache) Append(symbol string, p model.PricePoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO price_points (symbol, timestamp, price, direction)
		VALUES (?,?,?,?)`, symbol, p.Time.UnixMilli(), p.Price, int(p.Direction)); err != nil {
		return errors.Wrapf(err, "insert %s", symbol)
	}
	if _, err := tx.Exec(`DELETE FROM price_points WHERE symbol = ? AND id NOT IN (
		SELECT id FROM price_points WHERE symbol = ? ORDER BY id DESC LIMIT ?)`,
		symbol, symbol, c.capacity); err != nil {
		return errors.Wrapf(err, "evict %s", symbol)
	}
	return tx.Commit()
}

func (c *SQLiteCache) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM price_points`); err != nil {
		return errors.Wrap(err, "reset")
	}
	c.log.Info("sqlite cache reset")
	return nil
}

func (c *SQLiteCache) Close() error {
	c.log.Info("closing sqlite cache")
	return c.db.Close()
}
