package repository

import (
	"fmt"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fieldSet maps the public field names of an entity to its columns. It is
// the only place that knows how a domain.Filter becomes SQL.
type fieldSet struct {
	columns map[string]string
	search  []string
}

var domainFields = fieldSet{
	columns: map[string]string{
		"id":         "id",
		"name":       "name",
		"namespace":  "namespace",
		"status":     "status",
		"created_at": "created_at",
		"createdAt":  "created_at",
		"updated_at": "updated_at",
		"updatedAt":  "updated_at",
	},
	search: []string{"name"},
}

var recordFields = fieldSet{
	columns: map[string]string{
		"id":         "id",
		"domainId":   "domain_id",
		"domain_id":  "domain_id",
		"name":       "name",
		"type":       "type",
		"content":    "content",
		"ttl":        "ttl",
		"created_at": "created_at",
		"createdAt":  "created_at",
		"updated_at": "updated_at",
		"updatedAt":  "updated_at",
	},
	search: []string{"name", "content"},
}

var matchNothing = clause.Expr{SQL: "1 = 0"}

func (fs fieldSet) column(field string) (clause.Column, error) {
	col, ok := fs.columns[field]
	if !ok {
		return clause.Column{}, domain.NewValidationError(field, "unknown field")
	}
	return clause.Column{Name: col}, nil
}

// expression translates a filter tree into a parametrized clause. A nil
// result means "no restriction".
func (fs fieldSet) expression(f domain.Filter) (clause.Expression, error) {
	switch n := f.(type) {
	case nil:
		return nil, nil
	case domain.Condition:
		return fs.condition(n)
	case domain.And:
		exprs := make([]clause.Expression, 0, len(n))
		for _, child := range n {
			e, err := fs.expression(child)
			if err != nil {
				return nil, err
			}
			if e != nil {
				exprs = append(exprs, e)
			}
		}
		switch len(exprs) {
		case 0:
			return nil, nil
		case 1:
			return exprs[0], nil
		}
		return clause.AndConditions{Exprs: exprs}, nil
	case domain.Or:
		exprs := make([]clause.Expression, 0, len(n))
		for _, child := range n {
			e, err := fs.expression(child)
			if err != nil {
				return nil, err
			}
			if e == nil {
				// an unrestricted branch makes the whole disjunction unrestricted
				return nil, nil
			}
			exprs = append(exprs, e)
		}
		switch len(exprs) {
		case 0:
			return matchNothing, nil
		case 1:
			return exprs[0], nil
		}
		return clause.OrConditions{Exprs: exprs}, nil
	}
	return nil, domain.NewValidationError("filter", fmt.Sprintf("unsupported filter node %T", f))
}

func (fs fieldSet) condition(c domain.Condition) (clause.Expression, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	col, err := fs.column(c.Field)
	if err != nil {
		return nil, err
	}
	switch c.Operator {
	case domain.OpEq:
		return clause.Eq{Column: col, Value: c.Value}, nil
	case domain.OpNe:
		return clause.Neq{Column: col, Value: c.Value}, nil
	case domain.OpGt:
		return clause.Gt{Column: col, Value: c.Value}, nil
	case domain.OpLt:
		return clause.Lt{Column: col, Value: c.Value}, nil
	case domain.OpGte:
		return clause.Gte{Column: col, Value: c.Value}, nil
	case domain.OpLte:
		return clause.Lte{Column: col, Value: c.Value}, nil
	case domain.OpLike:
		return clause.Expr{SQL: `? LIKE ? ESCAPE '\'`, Vars: []any{col, c.Value}}, nil
	case domain.OpIn:
		values := c.Value.([]any)
		if len(values) == 0 {
			return matchNothing, nil
		}
		return clause.IN{Column: col, Values: values}, nil
	}
	return nil, domain.NewValidationError(c.Field, fmt.Sprintf("unknown operator %q", c.Operator))
}

// orderBy builds a deterministic ordering: the requested keys followed by id.
// Without keys the storage engine order is kept.
func (fs fieldSet) orderBy(sorts []domain.Sort) (clause.Expression, error) {
	if len(sorts) == 0 {
		return nil, nil
	}
	order := clause.OrderBy{}
	byID := false
	for _, s := range sorts {
		col, err := fs.column(s.Field)
		if err != nil {
			return nil, err
		}
		byID = byID || col.Name == "id"
		order.Columns = append(order.Columns, clause.OrderByColumn{Column: col, Desc: s.Direction == domain.SortDesc})
	}
	if !byID {
		order.Columns = append(order.Columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return order, nil
}

// where wraps the filter expression into a gorm scope.
func (fs fieldSet) where(f domain.Filter) (func(*gorm.DB) *gorm.DB, error) {
	expr, err := fs.expression(f)
	if err != nil {
		return nil, err
	}
	return func(tx *gorm.DB) *gorm.DB {
		if expr == nil {
			return tx
		}
		return tx.Clauses(clause.Where{Exprs: []clause.Expression{expr}})
	}, nil
}

func paginate[M any, T any](tx *gorm.DB, fs fieldSet, filter domain.Filter, req domain.PageRequest, conv func(M) T) (*domain.Page[T], error) {
	req = req.Normalize()
	scope, err := fs.where(domain.AllOf(filter, domain.SearchFilter(req.Search, fs.search...)))
	if err != nil {
		return nil, err
	}
	order, err := fs.orderBy(req.Sort)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := tx.Model(new(M)).Scopes(scope).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	query := tx.Model(new(M)).Scopes(scope)
	if order != nil {
		query = query.Clauses(order)
	}
	var models []M
	if err := query.Offset(req.Offset).Limit(req.Limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}

	rows := make([]T, 0, len(models))
	for _, m := range models {
		rows = append(rows, conv(m))
	}
	return domain.NewPage(rows, total, req), nil
}
