package bot

import "math/bits"

// itemSet is a bitset of still-claimable item indices. Each search branch
// owns its own copy; values are never shared between siblings.
type itemSet []uint64

// fullItemSet returns a set with items 0..n-1 present.
func fullItemSet(n int) itemSet {
	s := make(itemSet, (n+63)/64)
	for i := range s {
		s[i] = ^uint64(0)
	}
	if r := n % 64; r != 0 {
		s[len(s)-1] = 1<<r - 1
	}
	return s
}

func (s itemSet) has(i int) bool { return s[i>>6]&(1<<(i&63)) != 0 }

func (s itemSet) clear(i int) { s[i>>6] &^= 1 << (i & 63) }

func (s itemSet) clone() itemSet { return append(itemSet(nil), s...) }

func (s itemSet) count() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}
