package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Base is embedded by the domain repositories. It carries the connection or
// the transaction the repository is currently bound to.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM handle bound to ctx (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Bind returns a copy of the base that runs against tx.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Dialect names the SQL dialect of the connection.
func (b Base) Dialect() string {
	if b.db == nil || b.db.Dialector == nil {
		return ""
	}
	return b.db.Dialector.Name()
}

// DistinctIDs trims ids, drops blanks and duplicates, and keeps first-seen order.
func DistinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
