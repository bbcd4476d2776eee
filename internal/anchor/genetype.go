// Package anchor provides the catalog of named coordinate landmarks of
// V, D, J and C gene segments and the ReferencePoint value built on it.
package anchor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GeneType identifies the segment a gene (or an anchor point) belongs to.
type GeneType int8

// Gene types in germline order. Unknown is used for values that are not
// bound to a single segment.
const (
	Unknown GeneType = iota - 1
	Variable
	Diversity
	Joining
	Constant
)

// GeneTypes lists all gene types in germline order.
var GeneTypes = []GeneType{Variable, Diversity, Joining, Constant}

var geneTypeInfo = [...]struct {
	letter   byte
	name     string
	cdr3Side int
}{
	Variable:  {'V', "Variable", +1},
	Diversity: {'D', "Diversity", 0},
	Joining:   {'J', "Joining", -1},
	Constant:  {'C', "Constant", -2},
}

// Letter returns the one-letter code (V, D, J or C).
func (g GeneType) Letter() byte {
	if g < Variable || g > Constant {
		return '?'
	}
	return geneTypeInfo[g].letter
}

// String returns the full gene type name.
func (g GeneType) String() string {
	if g < Variable || g > Constant {
		return "Unknown"
	}
	return geneTypeInfo[g].name
}

// CDR3Side tells on which side of the CDR3 the segment lies: +1 for V
// (left), -1 for J (right), 0 for D (inside) and -2 for C.
func (g GeneType) CDR3Side() int {
	if g < Variable || g > Constant {
		return 0
	}
	return geneTypeInfo[g].cdr3Side
}

// ParseGeneType parses a gene type from its letter (case-insensitive) or
// its full name.
func ParseGeneType(s string) (GeneType, error) {
	if len(s) == 1 {
		switch s[0] {
		case 'V', 'v':
			return Variable, nil
		case 'D', 'd':
			return Diversity, nil
		case 'J', 'j':
			return Joining, nil
		case 'C', 'c':
			return Constant, nil
		}
	}
	for _, g := range GeneTypes {
		if strings.EqualFold(g.String(), s) {
			return g, nil
		}
	}
	return Unknown, fmt.Errorf("unknown gene type %q", s)
}

// MarshalJSON encodes the gene type as its letter.
func (g GeneType) MarshalJSON() ([]byte, error) {
	if g < Variable || g > Constant {
		return nil, fmt.Errorf("cannot encode gene type %d", g)
	}
	return json.Marshal(string(g.Letter()))
}

// UnmarshalJSON decodes a gene type letter.
func (g *GeneType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode gene type: %w", err)
	}
	v, err := ParseGeneType(s)
	if err != nil {
		return err
	}
	*g = v
	return nil
}
