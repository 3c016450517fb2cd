package combination

import (
	"math/rand"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func mustItems(t *testing.T, counts ...int) []Item {
	t.Helper()
	items, err := DeriveItems(counts)
	if err != nil {
		t.Fatalf("DeriveItems(%v): %v", counts, err)
	}
	return items
}

// setKey canonicalizes a combination as its sorted label set.
func setKey(combo []string) string {
	s := append([]string(nil), combo...)
	sort.Strings(s)
	return strings.Join(s, ",")
}

func asSet(t *testing.T, combos [][]string) map[string]struct{} {
	t.Helper()
	out := make(map[string]struct{}, len(combos))
	for _, c := range combos {
		k := setKey(c)
		if _, dup := out[k]; dup {
			t.Fatalf("duplicate label set %q", k)
		}
		out[k] = struct{}{}
	}
	return out
}

// asTuples keys each combination by its labels in emitted order.
func asTuples(combos [][]string) map[string]bool {
	out := make(map[string]bool, len(combos))
	for _, c := range combos {
		out[strings.Join(c, ",")] = true
	}
	return out
}

var generators = map[string]GenerateFunc{
	"subsets":   Generate,
	"backtrack": GenerateBacktrack,
}

func TestGenerate_Examples(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		length int
		want   [][]string
	}{
		{
			name:   "two groups of two",
			counts: []int{2, 2},
			length: 2,
			want:   [][]string{{"A1", "B1"}, {"A1", "B2"}, {"A2", "B1"}, {"A2", "B2"}},
		},
		{
			name:   "three singletons",
			counts: []int{1, 1, 1},
			length: 3,
			want:   [][]string{{"A1", "B1", "C1"}},
		},
		{
			name:   "single group cannot pair",
			counts: []int{3},
			length: 2,
			want:   [][]string{},
		},
		{
			name:   "choose two of three groups",
			counts: []int{1, 2, 1},
			length: 2,
			want: [][]string{
				{"A1", "B1"}, {"A1", "B2"},
				{"A1", "C1"},
				{"B1", "C1"}, {"B2", "C1"},
			},
		},
	}
	for _, tc := range tests {
		for name, gen := range generators {
			t.Run(tc.name+"/"+name, func(t *testing.T) {
				got := gen(mustItems(t, tc.counts...), tc.length)
				if !reflect.DeepEqual(got, tc.want) {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			})
		}
	}
}

func TestGenerate_EmptyForOutOfRangeLength(t *testing.T) {
	items := mustItems(t, 2, 3)
	for name, gen := range generators {
		for _, length := range []int{-1, 0, 3, 10} {
			got := gen(items, length)
			if got == nil || len(got) != 0 {
				t.Fatalf("%s length=%d: want empty non-nil, got %v", name, length, got)
			}
		}
	}
	for name, gen := range generators {
		if got := gen(nil, 1); got == nil || len(got) != 0 {
			t.Fatalf("%s on no items: want empty, got %v", name, got)
		}
	}
}

func TestGenerate_TupleOrderFollowsGroupOrder(t *testing.T) {
	// Groups appear as C, A; tuples must list C's label first.
	items := []Item{{"C1", 'C'}, {"C2", 'C'}, {"A1", 'A'}}
	want := [][]string{{"C1", "A1"}, {"C2", "A1"}}
	for name, gen := range generators {
		if got := gen(items, 2); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestGenerateBacktrack_InterleavedTupleOrder(t *testing.T) {
	items := []Item{{"A1", 'A'}, {"B1", 'B'}, {"A2", 'A'}}
	got := GenerateBacktrack(items, 2)
	want := [][]string{{"A1", "B1"}, {"A2", "B1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGenerate_InterleavedGroupsStillEquivalent(t *testing.T) {
	items := []Item{{"A1", 'A'}, {"B1", 'B'}, {"A2", 'A'}, {"C1", 'C'}, {"B2", 'B'}}
	for length := 1; length <= 3; length++ {
		a := asSet(t, Generate(items, length))
		b := asSet(t, GenerateBacktrack(items, length))
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("length=%d: subsets %v != backtrack %v", length, a, b)
		}
		if ta, tb := asTuples(Generate(items, length)), asTuples(GenerateBacktrack(items, length)); !reflect.DeepEqual(ta, tb) {
			t.Fatalf("length=%d: tuple order differs: %v vs %v", length, ta, tb)
		}
	}
}

// Every combination has exactly length labels from length distinct groups,
// and the number of combinations matches Count.
func TestGenerate_Properties(t *testing.T) {
	counts := []int{3, 1, 2, 4}
	items := mustItems(t, counts...)
	group := make(map[string]byte, len(items))
	for _, it := range items {
		group[it.Label] = it.Group
	}
	for name, gen := range generators {
		for length := 1; length <= len(counts); length++ {
			combos := gen(items, length)
			if uint64(len(combos)) != Count(counts, length) {
				t.Fatalf("%s length=%d: %d combos, Count says %d", name, length, len(combos), Count(counts, length))
			}
			asSet(t, combos)
			for _, c := range combos {
				if len(c) != length {
					t.Fatalf("%s: combo %v has wrong length", name, c)
				}
				seen := map[byte]bool{}
				for _, l := range c {
					if seen[group[l]] {
						t.Fatalf("%s: combo %v repeats group %c", name, c, group[l])
					}
					seen[group[l]] = true
				}
			}
		}
	}
}

// The two traversals must agree as sets of label sets on arbitrary inputs.
func TestGenerate_StrategiesEquivalent_Randomized(t *testing.T) {
	rng := rand.New(rand.NewSource(20240611))
	for iter := 0; iter < 300; iter++ {
		n := 1 + rng.Intn(6)
		counts := make([]int, n)
		for i := range counts {
			counts[i] = 1 + rng.Intn(4)
		}
		length := rng.Intn(n+3) - 1 // covers <=0 and > groups
		items := mustItems(t, counts...)

		a := Generate(items, length)
		b := GenerateBacktrack(items, length)
		if len(a) != len(b) {
			t.Fatalf("counts=%v length=%d: sizes differ %d vs %d", counts, length, len(a), len(b))
		}
		if sa, sb := asSet(t, a), asSet(t, b); !reflect.DeepEqual(sa, sb) {
			t.Fatalf("counts=%v length=%d: sets differ", counts, length)
		}
		if !reflect.DeepEqual(asTuples(a), asTuples(b)) {
			t.Fatalf("counts=%v length=%d: tuple order differs", counts, length)
		}
	}
}

func TestForStrategy(t *testing.T) {
	for _, s := range []Strategy{"", StrategySubsets, StrategyBacktrack} {
		if fn, err := ForStrategy(s); err != nil || fn == nil {
			t.Fatalf("ForStrategy(%q): fn=%v err=%v", s, fn, err)
		}
	}
	if _, err := ForStrategy("random"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func BenchmarkGenerate(b *testing.B) {
	items, _ := DeriveItems([]int{4, 4, 4, 4, 4, 4})
	for name, gen := range generators {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = gen(items, 4)
			}
		})
	}
}
