package tld

import (
	"fmt"
	"sort"
	"strings"
)

// Pair couples an accepted label with its acceptance flags.
type Pair struct {
	Label string
	Flags Flags
}

type buildConfig struct {
	empty Flags
}

// Option configures table construction.
type Option func(*buildConfig)

// WithEmptyAccept marks the start state accepting for the given
// categories, so the empty string matches. The default rejects it; the
// policy is explicit either way rather than inferred from the input set.
func WithEmptyAccept(f Flags) Option {
	return func(c *buildConfig) {
		c.empty = f
	}
}

// node is a candidate automaton state during construction. Transitions
// are keyed by case-folded byte until the alphabet is frozen.
type node struct {
	flags Flags
	next  map[byte]*node
}

// Build constructs the acceptance table for the given labels. Duplicate
// labels merge by flag union. Construction fails eagerly on an empty
// input set, a label outside the alphabet, or a label without flags; it
// never partially succeeds.
func Build(pairs []Pair, opts ...Option) (*Table, error) {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(pairs) == 0 {
		return nil, ErrNoLabels
	}

	alpha := newAlphabet()
	root := &node{flags: cfg.empty, next: map[byte]*node{}}

	for _, p := range pairs {
		if p.Flags == 0 {
			return nil, fmt.Errorf("%w [%s]", ErrNoFlags, p.Label)
		}

		if p.Label == "" {
			return nil, fmt.Errorf("%w [empty]", ErrInvalidLabel)
		}

		cur := root
		for i := 0; i < len(p.Label); i++ {
			b := p.Label[i]
			if !validLabelByte(b) {
				return nil, fmt.Errorf(
					"%w [%s] byte %d",
					ErrInvalidLabel, p.Label, i,
				)
			}

			alpha.add(b)

			b = foldCase(b)
			n := cur.next[b]
			if n == nil {
				n = &node{next: map[byte]*node{}}
				cur.next[b] = n
			}

			cur = n
		}

		// Union, never last-write-wins: a duplicate label must not
		// silently drop categories from an earlier occurrence.
		cur.flags |= p.Flags
	}

	m := &merger{
		reg:  map[string]*node{},
		done: map[*node]*node{},
	}

	// The root stays un-merged; it is the unique entry point and must
	// remain unreachable from other states.
	for b, c := range root.next {
		root.next[b] = m.merge(c)
	}

	return freeze(root, alpha), nil
}

// merger collapses equivalent states bottom-up: two states are equivalent
// when their flags and full transition rows are identical. Shared label
// suffixes collapse into shared states, shrinking the emitted matrix
// without changing the accepted language.
type merger struct {
	reg  map[string]*node
	done map[*node]*node
}

func (m *merger) merge(n *node) *node {
	if c, ok := m.done[n]; ok {
		return c
	}

	for b, c := range n.next {
		n.next[b] = m.merge(c)
	}

	sig := signature(n)
	c, ok := m.reg[sig]
	if !ok {
		c = n
		m.reg[sig] = n
	}

	m.done[n] = c
	m.done[c] = c

	return c
}

// signature is the row identity of a state. Children are already
// canonical when it runs, so pointer identity is row identity.
func signature(n *node) string {
	keys := make([]byte, 0, len(n.next))
	for b := range n.next {
		keys = append(keys, b)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", n.flags)
	for _, b := range keys {
		fmt.Fprintf(&sb, "|%c>%p", b, n.next[b])
	}

	return sb.String()
}

// freeze numbers the surviving states breadth-first from the root and
// emits the immutable transition matrix. The root is always state 0.
func freeze(root *node, alpha alphabet) *Table {
	ids := map[*node]int32{root: 0}
	order := []*node{root}

	for i := 0; i < len(order); i++ {
		n := order[i]

		keys := make([]byte, 0, len(n.next))
		for b := range n.next {
			keys = append(keys, b)
		}

		sort.Slice(keys, func(i, j int) bool {
			return keys[i] < keys[j]
		})

		for _, b := range keys {
			c := n.next[b]
			if _, ok := ids[c]; !ok {
				ids[c] = int32(len(order))
				order = append(order, c)
			}
		}
	}

	tokens := int(alpha.tokens)
	t := &Table{
		alpha:  alpha,
		tokens: tokens,
		flags:  make([]Flags, len(order)),
		trans:  make([]int32, len(order)*tokens),
	}

	for i := range t.trans {
		t.trans[i] = NoTransition
	}

	for i, n := range order {
		t.flags[i] = n.flags

		row := t.trans[i*tokens : (i+1)*tokens]
		for b, c := range n.next {
			row[alpha.token(b)] = ids[c]
		}
	}

	return t
}
