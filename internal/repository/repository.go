package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/logist-zp/internal/db"
)

// forUpdate adds SELECT ... FOR UPDATE where the dialect supports row locks.
// sqlite serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if db.IsPostgres(tx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// filters collects AND-ed raw SQL conditions and their arguments.
type filters struct {
	clauses []string
	args    []interface{}
}

func (f *filters) add(clause string, args ...interface{}) {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, args...)
}

func (f *filters) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}
