// Package filtergraph models ffmpeg filter graphs as typed stages and renders
// them to the textual filter description only when handing off to ffmpeg.
package filtergraph

import (
	"strings"
)

// Arg is one filter option. An empty Key renders as a positional value.
type Arg struct {
	Key   string
	Value string
}

// Filter is a single ffmpeg filter such as scale or overlay.
type Filter struct {
	Name string
	Args []Arg
}

// Stage is a linear filter chain with labelled inputs and an optional
// labelled output.
type Stage struct {
	Inputs  []string
	Filters []Filter
	Output  string
}

// Graph is an ordered list of stages. Later stages consume earlier outputs by
// label.
type Graph struct {
	Stages []Stage
}

// NewFilter builds a filter from alternating key/value pairs.
func NewFilter(name string, kv ...string) Filter {
	f := Filter{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Args = append(f.Args, Arg{Key: kv[i], Value: kv[i+1]})
	}
	return f
}

// Positional builds a filter whose options are unnamed, e.g. scale=iw*0.5:-1.
func Positional(name string, values ...string) Filter {
	f := Filter{Name: name}
	for _, v := range values {
		f.Args = append(f.Args, Arg{Value: v})
	}
	return f
}

func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		if a.Key == "" {
			parts[i] = a.Value
		} else {
			parts[i] = a.Key + "=" + a.Value
		}
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

// Chain renders the stage's filters without labels.
func (s Stage) Chain() string {
	parts := make([]string, len(s.Filters))
	for i, f := range s.Filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, ",")
}

func (s Stage) String() string {
	var sb strings.Builder
	for _, in := range s.Inputs {
		sb.WriteString(Label(in))
	}
	sb.WriteString(s.Chain())
	if s.Output != "" {
		sb.WriteString(Label(s.Output))
	}
	return sb.String()
}

// String renders a complex filter graph (-filter_complex).
func (g Graph) String() string {
	parts := make([]string, len(g.Stages))
	for i, s := range g.Stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, ";")
}

// Simple reports whether the graph is a single unlabelled-output chain over
// one input and can be passed as -vf.
func (g Graph) Simple() bool {
	return len(g.Stages) == 1 &&
		len(g.Stages[0].Inputs) <= 1 &&
		g.Stages[0].Output == ""
}

// Outputs lists every labelled stage output in declaration order.
func (g Graph) Outputs() []string {
	var out []string
	for _, s := range g.Stages {
		if s.Output != "" {
			out = append(out, s.Output)
		}
	}
	return out
}

// Label wraps a stream name in brackets.
func Label(name string) string {
	return "[" + name + "]"
}
