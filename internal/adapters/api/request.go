package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
)

const maxBodyBytes = 1 << 20

type createDomainRequest struct {
	Name string `json:"name" validate:"required,max=253"`
}

// updateDomainRequest lists the server-owned fields only to reject them.
type updateDomainRequest struct {
	ID        json.RawMessage `json:"id"`
	Namespace json.RawMessage `json:"namespace"`
	Status    json.RawMessage `json:"status"`
	Name      *string         `json:"name" validate:"omitempty,max=253"`
}

type createRecordRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Type    string `json:"type" validate:"required,max=10"`
	Content string `json:"content" validate:"required,max=4096"`
	TTL     int    `json:"ttl" validate:"gte=0"`
}

type updateRecordRequest struct {
	ID       json.RawMessage `json:"id"`
	DomainID json.RawMessage `json:"domainId"`
	Name     *string         `json:"name" validate:"omitempty,max=255"`
	Type     *string         `json:"type" validate:"omitempty,max=10"`
	Content  *string         `json:"content" validate:"omitempty,max=4096"`
	TTL      *int            `json:"ttl" validate:"omitempty,gte=1"`
}

type pageQuery struct {
	Offset        int    `validate:"gte=0"`
	Page          int    `validate:"gte=0"`
	Limit         int    `validate:"gte=0"`
	Search        string `validate:"max=255"`
	SortDirection string `validate:"omitempty,oneof=ASC DESC asc desc"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst, rejecting unknown fields, and validates
// it.
func (h *APIHandler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("body", err.Error())
	}
	return h.check(dst)
}

func (h *APIHandler) check(v any) error {
	err := h.validate.Struct(v)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("failed on %q", fe.Tag()))
	}
	return err
}

func forbidden(field string, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	return domain.NewValidationError(field, field+" cannot be changed")
}

func (req updateDomainRequest) patch() (domain.DomainPatch, error) {
	for _, f := range []struct {
		name string
		raw  json.RawMessage
	}{{"id", req.ID}, {"namespace", req.Namespace}, {"status", req.Status}} {
		if err := forbidden(f.name, f.raw); err != nil {
			return domain.DomainPatch{}, err
		}
	}
	return domain.DomainPatch{Name: req.Name}, nil
}

func (req updateRecordRequest) patch() (domain.RecordPatch, error) {
	if err := forbidden("id", req.ID); err != nil {
		return domain.RecordPatch{}, err
	}
	if err := forbidden("domainId", req.DomainID); err != nil {
		return domain.RecordPatch{}, err
	}
	p := domain.RecordPatch{Name: req.Name, Content: req.Content, TTL: req.TTL}
	if req.Type != nil {
		t := domain.RecordType(*req.Type)
		p.Type = &t
	}
	return p, nil
}

// listQuery parses offset|page, limit, search, sort, sort_direction and
// filter from the query string.
func (h *APIHandler) listQuery(q url.Values) (domain.Filter, domain.PageRequest, error) {
	var pq pageQuery
	for _, p := range []struct {
		key string
		dst *int
	}{{"offset", &pq.Offset}, {"page", &pq.Page}, {"limit", &pq.Limit}} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, domain.PageRequest{}, domain.NewValidationError(p.key, "must be an integer")
		}
		*p.dst = n
	}
	pq.Search = q.Get("search")
	pq.SortDirection = q.Get("sort_direction")
	if err := h.check(pq); err != nil {
		return nil, domain.PageRequest{}, err
	}

	dir, err := domain.ParseSortDirection(pq.SortDirection, domain.SortDesc)
	if err != nil {
		return nil, domain.PageRequest{}, err
	}
	sorts, err := parseSort(q.Get("sort"), dir)
	if err != nil {
		return nil, domain.PageRequest{}, err
	}
	if len(sorts) == 0 {
		sorts = []domain.Sort{{Field: "created_at", Direction: dir}}
	}
	filter, err := domain.ParseFilter([]byte(q.Get("filter")))
	if err != nil {
		return nil, domain.PageRequest{}, err
	}
	return filter, domain.PageRequest{
		Offset: pq.Offset,
		Page:   pq.Page,
		Limit:  pq.Limit,
		Search: pq.Search,
		Sort:   sorts,
	}, nil
}

// parseSort reads "field[:asc|desc][,field...]". Keys without a direction
// use def.
func parseSort(raw string, def domain.SortDirection) ([]domain.Sort, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var sorts []domain.Sort
	for _, part := range strings.Split(raw, ",") {
		field, dirText, _ := strings.Cut(strings.TrimSpace(part), ":")
		if field == "" {
			return nil, domain.NewValidationError("sort", "empty sort field")
		}
		dir, err := domain.ParseSortDirection(dirText, def)
		if err != nil {
			return nil, err
		}
		sorts = append(sorts, domain.Sort{Field: field, Direction: dir})
	}
	return sorts, nil
}
