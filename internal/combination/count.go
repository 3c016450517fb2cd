package combination

import (
	"math"
	"math/bits"
)

// Count returns the number of combinations Generate would produce for groups
// of the given sizes, without enumerating them: the sum, over every choice of
// length groups, of the product of their sizes. Non-positive sizes are
// treated as absent groups. The result saturates at math.MaxUint64.
func Count(sizes []int, length int) uint64 {
	if length <= 0 || length > positive(sizes) {
		return 0
	}
	// e[j] accumulates the j-th elementary symmetric polynomial of the sizes.
	e := make([]uint64, length+1)
	e[0] = 1
	groups := 0
	for _, s := range sizes {
		if s <= 0 {
			continue
		}
		groups++
		for j := min(groups, length); j >= 1; j-- {
			e[j] = satAdd(e[j], satMul(e[j-1], uint64(s)))
		}
	}
	return e[length]
}

func positive(sizes []int) int {
	n := 0
	for _, s := range sizes {
		if s > 0 {
			n++
		}
	}
	return n
}

func satAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func satMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
