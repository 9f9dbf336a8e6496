// Package diag models compiler diagnostics the way esbuild's internal/logger
// models JS build messages: a small Msg/Location pair plus a Log that
// accumulates and renders them. Rendering here is plain text; colorizing the
// output is left to an external collaborator.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Kind differentiates error, warning and note diagnostics.
type Kind uint8

const (
	Error Kind = iota
	Warning
	Note
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Location pins a diagnostic to a place in source.
type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 1-based
	LineText string // the offending source line, for snippet rendering
}

// Help is a single "= help: ..." line attached to a Msg.
type Help string

// Msg is a single diagnostic.
type Msg struct {
	Kind     Kind
	Text     string
	Location *Location
	Help     []Help
}

// String renders a Msg in the spec's diagnostic format:
//
//	<kind>: <message>
//	  --> file:line:column
//	  = help: ...
func (m Msg) String() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%s: %s", m.Kind, m.Text)
	if m.Location != nil {
		loc := m.Location
		fmt.Fprintf(&sb, "\n  --> %s:%d:%d", loc.File, loc.Line, loc.Column)
		if loc.LineText != "" {
			fmt.Fprintf(&sb, "\n%s", loc.LineText)
			caret := strings.Repeat(" ", max(0, loc.Column-1)) + "^"
			fmt.Fprintf(&sb, "\n%s", caret)
		}
	}
	for _, h := range m.Help {
		fmt.Fprintf(&sb, "\n  = help: %s", h)
	}
	return sb.String()
}

// Error implements the error interface so a Msg can travel through generic
// error-collecting plumbing (e.g. util.Collector) and still render richly.
func (m Msg) Error() string { return m.String() }

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Log accumulates diagnostics produced during a compilation run.
type Log struct {
	msgs []Msg
}

// NewLog returns an empty diagnostic log.
func NewLog() *Log {
	return &Log{msgs: make([]Msg, 0, 8)}
}

// FromErrors builds a Log from a slice of errors such as the one a
// util.Collector accumulates. Errors that are themselves a Msg keep their
// Kind, Location and Help; any other error is wrapped as a plain Error-kind
// message with no location.
func FromErrors(errs []error) *Log {
	l := NewLog()
	for _, e := range errs {
		if m, ok := e.(Msg); ok {
			l.Add(m)
			continue
		}
		l.Add(Msg{Kind: Error, Text: e.Error()})
	}
	return l
}

// Add appends a diagnostic to the log.
func (l *Log) Add(m Msg) {
	l.msgs = append(l.msgs, m)
}

// Errorf appends an Error-kind diagnostic built from a format string.
func (l *Log) Errorf(loc *Location, format string, args ...interface{}) {
	l.Add(Msg{Kind: Error, Text: fmt.Sprintf(format, args...), Location: loc})
}

// HasErrors reports whether any Error-kind diagnostic was logged.
func (l *Log) HasErrors() bool {
	for _, m := range l.msgs {
		if m.Kind == Error {
			return true
		}
	}
	return false
}

// Msgs returns the accumulated diagnostics sorted by file, then line, then
// column, mirroring esbuild's SortableMsgs ordering.
func (l *Log) Msgs() []Msg {
	out := make([]Msg, len(l.msgs))
	copy(out, l.msgs)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].Location, out[j].Location
		if li == nil || lj == nil {
			return li != nil
		}
		if li.File != lj.File {
			return li.File < lj.File
		}
		if li.Line != lj.Line {
			return li.Line < lj.Line
		}
		return li.Column < lj.Column
	})
	return out
}

// String renders every accumulated diagnostic, one per line block.
func (l *Log) String() string {
	parts := make([]string, 0, len(l.msgs))
	for _, m := range l.Msgs() {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, "\n")
}
