package crud

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc or desc in any case. An empty value means asc.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return "", apperrors.InvalidParameter("invalid sort direction %q", raw)
	}
}

// Page selects a window of a deterministic ordering.
type Page struct {
	Offset        int
	Limit         int
	SortField     string
	SortDirection Direction
}

const DefaultLimit = 10

func (p Page) normalized() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.SortDirection == "" {
		p.SortDirection = Asc
	}
	return p
}

func (p Page) Validate() error {
	switch p.SortDirection {
	case "", Asc, Desc:
		return nil
	default:
		return apperrors.InvalidParameter("invalid sort direction %q", p.SortDirection)
	}
}

// SortFields maps the public sort keys of an entity to qualified columns.
// Only keys present in the map can ever reach a query.
type SortFields map[string]string

// Column resolves a sort key. An empty key resolves to the entity's id column.
func (s SortFields) Column(key string) (string, error) {
	if key == "" {
		if col, ok := s["id"]; ok {
			return col, nil
		}
		return "id", nil
	}
	col, ok := s[key]
	if !ok {
		return "", apperrors.InvalidParameter("invalid sort field %q, allowed: %s", key, strings.Join(s.Keys(), ", "))
	}
	return col, nil
}

// Default returns preferred when it is allowed, otherwise "id" when allowed,
// otherwise the empty key, which Column resolves to the id column.
func (s SortFields) Default(preferred string) string {
	for _, key := range []string{preferred, "id"} {
		if _, ok := s[key]; ok {
			return key
		}
	}
	return ""
}

func (s SortFields) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Restrict narrows the allow-list to keys. An empty keys slice keeps every
// field; naming a key outside the allow-list is an error.
func (s SortFields) Restrict(keys []string) (SortFields, error) {
	if len(keys) == 0 {
		return s, nil
	}
	out := SortFields{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		col, ok := s[k]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", k)
		}
		out[k] = col
	}
	return out, nil
}

// Patch is a partial update expressed as column values.
type Patch interface {
	Columns() map[string]any
}
