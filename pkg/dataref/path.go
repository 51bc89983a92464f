// Package dataref resolves data references such as
// "utgifter.omraader[omr_nr=4].total" against a budget year.
//
// A reference is a dot-separated list of identifiers. Any identifier may be
// followed by a bracketed equality filter that picks the first element of the
// list it names whose key equals the value.
package dataref

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidPath = errors.New("invalid data reference")

// Segment is one navigation step, either a FieldSegment or a FilterSegment.
type Segment interface {
	segment()
}

type FieldSegment struct {
	Name string
}

type FilterSegment struct {
	Key   string
	Value FilterValue
}

func (FieldSegment) segment()  {}
func (FilterSegment) segment() {}

// FilterValue is the right-hand side of a filter. Values that lex as a number
// compare against numeric fields only, everything else against string fields.
type FilterValue struct {
	Number   float64
	Text     string
	IsNumber bool
}

func (v FilterValue) String() string {
	if v.IsNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

type Path []Segment

func (p Path) String() string {
	var b strings.Builder
	for _, seg := range p {
		switch s := seg.(type) {
		case FieldSegment:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Name)
		case FilterSegment:
			fmt.Fprintf(&b, "[%s=%s]", s.Key, s.Value)
		}
	}
	return b.String()
}

// Parse tokenizes a reference. It fails on empty input, empty identifiers,
// unterminated or empty filters and trailing garbage.
func Parse(ref string) (Path, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrInvalidPath)
	}
	p := parser{input: ref}
	var path Path
	for {
		name, err := p.identifier()
		if err != nil {
			return nil, err
		}
		path = append(path, FieldSegment{Name: name})

		if p.peek() == '[' {
			filter, err := p.filter()
			if err != nil {
				return nil, err
			}
			path = append(path, filter)
		}

		if p.done() {
			return path, nil
		}
		if p.peek() != '.' {
			return nil, p.errorf("expected '.'")
		}
		p.pos++
	}
}

type parser struct {
	input string
	pos   int
}

func (p *parser) done() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) errorf(msg string) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrInvalidPath, msg, p.pos, p.input)
}

func (p *parser) identifier() (string, error) {
	start := p.pos
	for !p.done() && isIdentByte(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected identifier")
	}
	return p.input[start:p.pos], nil
}

func (p *parser) filter() (FilterSegment, error) {
	p.pos++ // '['
	key, err := p.identifier()
	if err != nil {
		return FilterSegment{}, err
	}
	if p.peek() != '=' {
		return FilterSegment{}, p.errorf("expected '='")
	}
	p.pos++
	start := p.pos
	for !p.done() && p.peek() != ']' {
		p.pos++
	}
	if p.done() {
		return FilterSegment{}, p.errorf("unterminated filter")
	}
	raw := p.input[start:p.pos]
	if raw == "" {
		return FilterSegment{}, p.errorf("empty filter value")
	}
	p.pos++ // ']'
	return FilterSegment{Key: key, Value: parseFilterValue(raw)}, nil
}

func parseFilterValue(raw string) FilterValue {
	if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return FilterValue{Number: n, IsNumber: true}
	}
	return FilterValue{Text: raw}
}

func isIdentByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
