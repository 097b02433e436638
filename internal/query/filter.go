// Package query builds the normalized query descriptors (predicate tree,
// ordering, pagination) that the storage adapter interprets. Everything here
// is pure: malformed input is coerced, never rejected.
package query

import (
	"strings"

	"github.com/BMS-2026/crm-service/internal/models"
)

// Expr is a composable predicate tree. The persistence layer translates it
// to its own query language; nothing here is SQL.
type Expr interface {
	isExpr()
}

type And struct {
	Exprs []Expr
}

type Or struct {
	Exprs []Expr
}

// Eq matches field = value.
type Eq struct {
	Field string
	Value any
}

// Range matches field >= Min and/or field <= Max; nil bound means open side.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

// Contains matches a case-insensitive substring on field.
type Contains struct {
	Field string
	Text  string
}

// IsNull matches field IS NULL.
type IsNull struct {
	Field string
}

func (And) isExpr()      {}
func (Or) isExpr()       {}
func (Eq) isExpr()       {}
func (Range) isExpr()    {}
func (Contains) isExpr() {}
func (IsNull) isExpr()   {}

// CustomerParams are the raw, untrusted list-query parameters.
type CustomerParams struct {
	Search    string
	MinScore  *float64
	MaxScore  *float64
	Job       string
	Marital   string
	Education string
	Housing   *bool
}

// searchFields are the columns the free-text search spans.
var searchFields = []string{"name", "phone_number", "job"}

// BuildCustomerFilter translates the caller's role and raw parameters into a
// predicate tree. The search disjunction and the role-visibility disjunction
// are combined as whole groups under a top-level conjunction, so neither one
// leaks terms into the other.
func BuildCustomerFilter(role models.UserRole, callerID uint, p CustomerParams) Expr {
	var groups []Expr

	if s := strings.TrimSpace(p.Search); s != "" {
		terms := make([]Expr, 0, len(searchFields))
		for _, f := range searchFields {
			terms = append(terms, Contains{Field: f, Text: s})
		}
		groups = append(groups, Or{Exprs: terms})
	}

	if v := VisibilityFilter(role, callerID); v != nil {
		groups = append(groups, v)
	}

	if p.MinScore != nil || p.MaxScore != nil {
		groups = append(groups, Range{Field: "score", Min: p.MinScore, Max: p.MaxScore})
	}

	if p.Job != "" {
		groups = append(groups, Eq{Field: "job", Value: p.Job})
	}
	if p.Marital != "" {
		groups = append(groups, Eq{Field: "marital", Value: p.Marital})
	}
	if p.Education != "" {
		groups = append(groups, Eq{Field: "education", Value: p.Education})
	}
	if p.Housing != nil {
		groups = append(groups, Eq{Field: "housing", Value: *p.Housing})
	}

	switch len(groups) {
	case 0:
		return nil // match all
	case 1:
		return groups[0]
	default:
		return And{Exprs: groups}
	}
}

// VisibilityFilter returns the role-based visibility restriction for customer
// queries, or nil when the role sees the full table. SALES sees the shared
// unassigned pool plus its own book — never unconditional access.
func VisibilityFilter(role models.UserRole, callerID uint) Expr {
	if role == models.RoleSales {
		return Or{Exprs: []Expr{
			IsNull{Field: "sales_id"},
			Eq{Field: "sales_id", Value: callerID},
		}}
	}
	return nil
}
