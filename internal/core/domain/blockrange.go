package domain

import "fmt"

// BlockRange is an inclusive range of block numbers scanned in one cycle.
// Ranges produced across successive cycles are contiguous and non-overlapping.
type BlockRange struct {
	From uint64
	To   uint64
}

// Valid reports whether the range is well-formed.
func (r BlockRange) Valid() bool {
	return r.From <= r.To
}

// Len returns the number of blocks in the range.
func (r BlockRange) Len() uint64 {
	if !r.Valid() {
		return 0
	}
	return r.To - r.From + 1
}

func (r BlockRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.From, r.To)
}
