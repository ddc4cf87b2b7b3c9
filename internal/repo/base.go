// Package repo holds query helpers shared by the domain repositories.
package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Base is embedded by repositories that are also rebuilt around a
// transaction handle, so one set of query methods serves both.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB starts a query bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

// ForUpdate starts a SELECT ... FOR UPDATE. The lock lasts until the
// surrounding transaction ends, so it is pointless outside one.
func (b Base) ForUpdate(ctx context.Context) *gorm.DB {
	return b.DB(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains builds an ILIKE pattern matching term anywhere in a column.
// Wildcards typed by the user are matched literally.
func Contains(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
