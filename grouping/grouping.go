// Package grouping reorganizes a flat benchmark list into a per admission
// method view.
package grouping

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"

	"github.com/letmevibethatforyou/unicatalog"
)

// Grouped maps admission method to benchmarks. Methods keep the order in
// which they first occurred in the source list.
type Grouped struct {
	methods []string
	groups  map[string][]unicatalog.Benchmark
}

// ByMethod groups benchmarks by their Method value in a single pass.
// Method strings are compared as-is: "THPT" and "thpt " are two groups.
// Within a group, records keep their input order.
func ByMethod(benchmarks []unicatalog.Benchmark) *Grouped {
	g := &Grouped{
		methods: make([]string, 0),
		groups:  make(map[string][]unicatalog.Benchmark),
	}

	for _, b := range benchmarks {
		if _, exists := g.groups[b.Method]; !exists {
			g.methods = append(g.methods, b.Method)
		}
		g.groups[b.Method] = append(g.groups[b.Method], b)
	}

	return g
}

// Methods returns the group keys in first-occurrence order.
func (g *Grouped) Methods() []string {
	return append([]string(nil), g.methods...)
}

// Get returns a copy of the benchmarks for method, or nil if there are none.
func (g *Grouped) Get(method string) []unicatalog.Benchmark {
	return slices.Clone(g.groups[method])
}

// Len returns the number of groups.
func (g *Grouped) Len() int {
	return len(g.methods)
}

// All iterates groups in first-occurrence order. Each group is a copy.
func (g *Grouped) All() iter.Seq2[string, []unicatalog.Benchmark] {
	return func(yield func(string, []unicatalog.Benchmark) bool) {
		for _, m := range g.methods {
			if !yield(m, slices.Clone(g.groups[m])) {
				return
			}
		}
	}
}

// MarshalJSON encodes the groups as a JSON object whose keys appear in
// first-occurrence order.
func (g *Grouped) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range g.methods {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(g.groups[m])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
