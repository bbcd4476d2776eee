package partition

import (
	"fmt"

	"github.com/inodb/vibe-repseq/internal/sequence"
)

// Reverse returns the opposite-strand view of p together with t expressed
// in the coordinates of that view.
func Reverse(p sequence.Provider, t Table) (*sequence.Reversed, Table, error) {
	rp, err := sequence.ReverseProvider(p)
	if err != nil {
		return nil, Table{}, err
	}
	rt, err := t.Relative(sequence.NewRange(rp.Size(), 0))
	if err != nil {
		return nil, Table{}, fmt.Errorf("reverse anchor points: %w", err)
	}
	return rp, rt, nil
}
