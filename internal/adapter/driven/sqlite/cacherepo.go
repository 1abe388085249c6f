package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fittrack-app/fittrack/internal/adapter/driven/kvcache"
)

// Compile-time interface satisfaction check.
var _ kvcache.Backend = (*CacheRepo)(nil)

// CacheRepo is the SQLite implementation of the kvcache.Backend interface.
// Values are opaque bytes; the kvcache layer owns the envelope and expiry.
type CacheRepo struct {
	db *DB
}

// NewCacheRepo creates a new CacheRepo over the given database.
func NewCacheRepo(db *DB) *CacheRepo {
	return &CacheRepo{db: db}
}

// Put stores or replaces the value for key.
func (r *CacheRepo) Put(ctx context.Context, key string, value []byte) error {
	const query = `INSERT OR REPLACE INTO cache_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("put cache entry %q: %w", key, err)
	}
	return nil
}

// Fetch returns the value for key, reporting found=false when absent.
func (r *CacheRepo) Fetch(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT value FROM cache_entries WHERE key = ?`
	var value []byte
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch cache entry %q: %w", key, err)
	}
	return value, true, nil
}

// Delete removes the entry for key. Deleting an absent key is not an error.
func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM cache_entries WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix.
// LIKE special characters in the prefix are escaped so the match is literal.
func (r *CacheRepo) DeletePrefix(ctx context.Context, prefix string) error {
	const query = `DELETE FROM cache_entries WHERE key LIKE ? ESCAPE '\'`
	if _, err := r.db.Writer.ExecContext(ctx, query, escapeLike(prefix)+"%"); err != nil {
		return fmt.Errorf("delete cache entries with prefix %q: %w", prefix, err)
	}
	return nil
}

// escapeLike escapes %, _ and \ so a prefix is matched literally by LIKE.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
