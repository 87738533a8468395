// Package exporters serializes the flat book projection into export formats
// and writes catalog snapshots to disk.
package exporters

import (
	"sort"
	"strings"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// Serializer encodes export records in one format.
type Serializer interface {
	Format() string
	ContentType() string
	Extension() string
	Serialize(records []entities.ExportRecord) ([]byte, error)
}

// Registry selects serializers by format name.
type Registry struct {
	serializers map[string]Serializer
}

func NewRegistry(serializers ...Serializer) *Registry {
	r := &Registry{serializers: make(map[string]Serializer, len(serializers))}
	for _, s := range serializers {
		r.Register(s)
	}
	return r
}

// DefaultRegistry knows json, csv, yaml and xlsx.
func DefaultRegistry() *Registry {
	return NewRegistry(JSONSerializer{}, CSVSerializer{}, YAMLSerializer{}, XLSXSerializer{})
}

func (r *Registry) Register(s Serializer) {
	r.serializers[strings.ToLower(s.Format())] = s
}

// Get returns the serializer for format, or InvalidParameter.
func (r *Registry) Get(format string) (Serializer, error) {
	s, ok := r.serializers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, apperrors.InvalidParameter("unsupported export format %q, use one of: %s", format, strings.Join(r.Formats(), ", "))
	}
	return s, nil
}

// Formats lists the registered format names in order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.serializers))
	for name := range r.serializers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
