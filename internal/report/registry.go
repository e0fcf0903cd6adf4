// Package report holds the ordered set of charts a site build renders and
// the runner that writes them to disk.
package report

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/KaramelBytes/roadstats-cli/internal/analysis"
)

// Kind separates whole-dataset charts from two-year comparisons.
type Kind string

const (
	KindBase    Kind = "base"
	KindCompare Kind = "compare"
)

// NamePrefix starts every report name; the rest is the field.
const NamePrefix = "fatalities_by_"

// Descriptor names one chart and how to draw it.
type Descriptor struct {
	Name   string
	Title  string
	Field  string
	Kind   Kind
	Render func(*Context) (image.Image, error)
	// Table, when set, supplies the aggregate behind the chart for the workbook.
	Table func(*Context) analysis.Sheet
}

// Registry keeps descriptors in registration order.
type Registry struct {
	list  []Descriptor
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Register appends d. Empty and duplicate names are rejected.
func (r *Registry) Register(d Descriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("report name is empty")
	}
	if d.Render == nil {
		return fmt.Errorf("report %s has no renderer", d.Name)
	}
	if _, ok := r.index[d.Name]; ok {
		return fmt.Errorf("report %s already registered", d.Name)
	}
	r.index[d.Name] = len(r.list)
	r.list = append(r.list, d)
	return nil
}

// MustRegister is Register for static tables; it panics on error.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// List returns the descriptors in registration order.
func (r *Registry) List() []Descriptor {
	return append([]Descriptor(nil), r.list...)
}

// Get looks a descriptor up by name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.list[i], true
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.list))
	for i, d := range r.list {
		out[i] = d.Name
	}
	return out
}

// Len returns the number of registered reports.
func (r *Registry) Len() int { return len(r.list) }

// Select returns a registry holding only the named reports, in registry order.
// A name may omit the common prefix. Unknown names are an error.
func (r *Registry) Select(names []string) (*Registry, error) {
	want := map[string]bool{}
	var unknown []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := r.index[n]; !ok {
			if _, ok := r.index[NamePrefix+n]; ok {
				n = NamePrefix + n
			} else {
				unknown = append(unknown, n)
				continue
			}
		}
		want[n] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown reports: %s", strings.Join(unknown, ", "))
	}
	out := NewRegistry()
	for _, d := range r.list {
		if want[d.Name] {
			out.MustRegister(d)
		}
	}
	return out, nil
}

// BaseName returns the report name for a field's whole-dataset chart.
func BaseName(field string) string { return NamePrefix + field }

// CompareName returns the report name for a field's comparison chart.
func CompareName(field string) string { return NamePrefix + field + "_compare" }

// Sheets collects the workbook tables of every report that has one.
func Sheets(c *Context, r *Registry) []analysis.Sheet {
	var out []analysis.Sheet
	for _, d := range r.list {
		if d.Table == nil {
			continue
		}
		s := d.Table(c)
		s.Name = strings.TrimPrefix(d.Name, NamePrefix)
		out = append(out, s)
	}
	return out
}
