// Package combination holds the pure algorithms behind the API: deriving
// labeled items from group sizes, enumerating the combinations that take at
// most one item per group, counting them, and fingerprinting them.
//
// Nothing in this package touches the database or keeps shared state, so
// every function is safe to call from any number of goroutines.
package combination

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxGroups is the number of group letters available ('A'..'Z').
const MaxGroups = 26

var (
	// ErrTooManyGroups is returned when more group sizes are supplied than
	// there are group letters.
	ErrTooManyGroups = errors.New("at most 26 groups are supported")

	// ErrNonPositiveCount is returned when a group size is zero or negative.
	ErrNonPositiveCount = errors.New("group sizes must be positive")
)

// Item is one labeled element of the derived universe. Label is the group
// letter followed by the 1-based position within the group ("B3").
type Item struct {
	Label string
	Group byte
}

// GroupLetter returns the letter assigned to the group at input position i.
func GroupLetter(i int) byte { return byte('A' + i) }

// ValidateCounts reports whether counts can be expanded by DeriveItems,
// without allocating anything.
func ValidateCounts(counts []int) error {
	if len(counts) > MaxGroups {
		return fmt.Errorf("%w: got %d", ErrTooManyGroups, len(counts))
	}
	for i, c := range counts {
		if c <= 0 {
			return fmt.Errorf("%w: group %c has size %d", ErrNonPositiveCount, GroupLetter(i), c)
		}
	}
	return nil
}

// DeriveItems expands group sizes into the ordered item list: all of group
// A's items first (A1..An), then group B's, and so on.
func DeriveItems(counts []int) ([]Item, error) {
	if err := ValidateCounts(counts); err != nil {
		return nil, err
	}
	total := 0
	for _, c := range counts {
		total += c
	}

	items := make([]Item, 0, total)
	for i, c := range counts {
		g := GroupLetter(i)
		prefix := string(g)
		for n := 1; n <= c; n++ {
			items = append(items, Item{Label: prefix + strconv.Itoa(n), Group: g})
		}
	}
	return items, nil
}
