package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/BMS-2026/crm-service/internal/query"
	"github.com/BMS-2026/crm-service/internal/repositories"
)

// ApplyFilter compiles a predicate tree onto a GORM query. A nil expression
// is the unconditional match-all. Field names only ever come from the query
// package's whitelists, never from raw client input.
func ApplyFilter(db *gorm.DB, e query.Expr) *gorm.DB {
	if e == nil {
		return db
	}
	clause, args := compileExpr(e)
	if clause == "" {
		return db
	}
	return db.Where(clause, args...)
}

func compileExpr(e query.Expr) (string, []interface{}) {
	switch v := e.(type) {
	case query.And:
		return compileGroup(v.Exprs, " AND ")
	case query.Or:
		return compileGroup(v.Exprs, " OR ")
	case query.Eq:
		return fmt.Sprintf("%s = ?", v.Field), []interface{}{v.Value}
	case query.Range:
		var parts []string
		var args []interface{}
		if v.Min != nil {
			parts = append(parts, fmt.Sprintf("%s >= ?", v.Field))
			args = append(args, *v.Min)
		}
		if v.Max != nil {
			parts = append(parts, fmt.Sprintf("%s <= ?", v.Field))
			args = append(args, *v.Max)
		}
		return strings.Join(parts, " AND "), args
	case query.Contains:
		return fmt.Sprintf("%s ILIKE ?", v.Field), []interface{}{"%" + v.Text + "%"}
	case query.IsNull:
		return fmt.Sprintf("%s IS NULL", v.Field), nil
	}
	return "", nil
}

func compileGroup(exprs []query.Expr, sep string) (string, []interface{}) {
	var parts []string
	var args []interface{}
	for _, e := range exprs {
		clause, clauseArgs := compileExpr(e)
		if clause == "" {
			continue
		}
		parts = append(parts, "("+clause+")")
		args = append(args, clauseArgs...)
	}
	return strings.Join(parts, sep), args
}

// ApplyOrder renders a resolved OrderSpec. Keys were whitelisted by the
// resolver; NULLS LAST keeps unscored customers at the tail in both
// directions, so score pagination stays stable.
func ApplyOrder(db *gorm.DB, spec query.OrderSpec) *gorm.DB {
	for _, key := range spec.Keys {
		dir := "ASC"
		if key.Descending {
			dir = "DESC"
		}
		if key.Field == "score" {
			db = db.Order(fmt.Sprintf("%s %s NULLS LAST", key.Field, dir))
			continue
		}
		db = db.Order(key.Field + " " + dir)
	}
	return db
}

// ApplyPage applies the resolved offset/limit window.
func ApplyPage(db *gorm.DB, page query.Page) *gorm.DB {
	if page.Limit > 0 {
		db = db.Limit(page.Limit)
	}
	if page.Offset > 0 {
		db = db.Offset(page.Offset)
	}
	return db
}

// ApplyCallLogFilters applies the optional call-log list filters.
func ApplyCallLogFilters(db *gorm.DB, filters repositories.CallLogFilters) *gorm.DB {
	if filters.UserID != nil {
		db = db.Where("user_id = ?", *filters.UserID)
	}
	if filters.CustomerID != nil {
		db = db.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.Status != nil {
		db = db.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		db = db.Where("call_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		db = db.Where("call_date <= ?", *filters.DateTo)
	}
	return db
}
