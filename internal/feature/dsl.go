package feature

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-repseq/internal/anchor"
)

// ErrSyntax is wrapped by all parse errors.
var ErrSyntax = errors.New("malformed gene feature")

// Parse reads the compact notation: terms joined with '+', where a term is
// a feature name ("CDR3"), a name with offsets ("CDR3(1,-2)"), a point with
// offsets ("CDR3Begin(0,10)") or an explicit range ("{FR1Begin(-33):FR3End}").
// The literal "null" parses to a nil feature.
func Parse(s string) (*GeneFeature, error) {
	s = strings.ReplaceAll(s, " ", "")
	if s == "null" {
		return nil, nil
	}
	terms, err := splitTerms(s)
	if err != nil {
		return nil, err
	}
	parts := make([]*GeneFeature, 0, len(terms))
	for _, t := range terms {
		f, err := parseTerm(t)
		if err != nil {
			return nil, err
		}
		parts = append(parts, f)
	}
	return Merge(parts...)
}

// MustParse is Parse that panics on error.
func MustParse(s string) *GeneFeature {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

// splitTerms splits on '+' signs that are not nested in brackets.
func splitTerms(s string) ([]string, error) {
	var (
		terms []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrSyntax, s)
			}
		case '+':
			if depth == 0 {
				terms = append(terms, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrSyntax, s)
	}
	terms = append(terms, s[start:])
	for _, t := range terms {
		if t == "" {
			return nil, fmt.Errorf("%w: empty term in %q", ErrSyntax, s)
		}
	}
	return terms, nil
}

func parseTerm(s string) (*GeneFeature, error) {
	if s[0] == '{' {
		if s[len(s)-1] != '}' {
			return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
		}
		from, to, ok := strings.Cut(s[1:len(s)-1], ":")
		if !ok || strings.Contains(to, ":") {
			return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
		}
		begin, err := anchor.ParsePoint(from)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		end, err := anchor.ParsePoint(to)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		return New(begin, end), nil
	}

	br := strings.IndexByte(s, '(')
	if br < 0 {
		f, ok := ByName(s)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", ErrSyntax, s)
		}
		return f, nil
	}
	if s[len(s)-1] != ')' {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	o1, o2, ok := strings.Cut(s[br+1:len(s)-1], ",")
	if !ok {
		return nil, fmt.Errorf("%w: two offsets expected in %q", ErrSyntax, s)
	}
	left, err := strconv.Atoi(o1)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	right, err := strconv.Atoi(o2)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}

	name := s[:br]
	if f, ok := ByName(name); ok {
		return WithOffsets(f, left, right), nil
	}
	if p, ok := anchor.PointByName(name); ok {
		return AroundPoint(p, left, right), nil
	}
	return nil, fmt.Errorf("%w: unknown feature or anchor point %q", ErrSyntax, name)
}

// Encode writes f in the compact notation accepted by Parse.
func Encode(f *GeneFeature) string {
	if name, ok := NameOf(f); ok {
		return name
	}
	terms := make([]string, len(f.regions))
	for i, r := range f.regions {
		base, _ := NameOf(&GeneFeature{regions: []ReferenceRange{r.WithoutOffsets()}})
		if r.Begin.SameAnchor(r.End) {
			base = r.Begin.WithoutOffset().Encode(true)
		}
		switch {
		case base == "":
			terms[i] = "{" + r.Begin.Encode(true) + ":" + r.End.Encode(false) + "}"
		case r.HasOffsets():
			terms[i] = base + "(" + strconv.Itoa(r.Begin.Offset()) + "," + strconv.Itoa(r.End.Offset()) + ")"
		default:
			terms[i] = base
		}
	}
	return strings.Join(terms, "+")
}

// MarshalText implements encoding.TextMarshaler.
func (f *GeneFeature) MarshalText() ([]byte, error) {
	return []byte(Encode(f)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *GeneFeature) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("%w: null is not a feature", ErrSyntax)
	}
	f.regions = v.regions
	return nil
}
