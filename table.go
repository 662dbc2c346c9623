package tld

import (
	"encoding/binary"
	"fmt"
	"io"
)

// NoTransition is the row sentinel for "no outgoing edge on this token".
// Matching stops immediately when it is read.
const NoTransition int32 = -1

// tableVersion is the on-disk format version. Bump on any layout change;
// new acceptance bits extend the format without a bump because decoders
// carry flag bytes through opaquely.
const tableVersion uint16 = 1

var tableMagic = [4]byte{'T', 'L', 'D', 'T'}

// Table is the deterministic finite automaton over accepted labels. It is
// immutable once built or decoded and owns the alphabet it was built with,
// so token semantics always match between builder and matcher. A table is
// safe for unlimited concurrent use without synchronization.
type Table struct {
	alpha  alphabet
	tokens int
	flags  []Flags
	trans  []int32 // row-major, len == len(flags)*tokens
}

// States returns the number of automaton states.
func (t *Table) States() int {
	return len(t.flags)
}

// Tokens returns the size of the reduced input alphabet.
func (t *Table) Tokens() int {
	return t.tokens
}

// Start returns the entry state. It is always 0.
func (t *Table) Start() int32 {
	return 0
}

// Step advances one input byte, returning the next state or NoTransition
// when the byte is outside the alphabet or the state has no edge for it.
// NoTransition is terminal: stepping from it stays on it, so a walk may
// consume its whole input and check acceptance once at the end.
func (t *Table) Step(state int32, b byte) int32 {
	if state == NoTransition {
		return NoTransition
	}

	tok := t.alpha.token(b)
	if tok == TokenInvalid {
		return NoTransition
	}

	return t.trans[int(state)*t.tokens+int(tok)]
}

// Accepts reports whether halting in the given state satisfies any of the
// requested acceptance categories. NoTransition accepts nothing.
func (t *Table) Accepts(state int32, want Flags) bool {
	if state == NoTransition {
		return false
	}

	return t.flags[state]&want != 0
}

// validate checks the table shape once so the per-query walk never needs
// bounds checks: every transition lands in [0, States) or is the
// sentinel, and every alphabet token is within the row width.
func (t *Table) validate() error {
	if t.tokens < 1 || t.tokens > 128 {
		return fmt.Errorf(
			"%w: token count %d", ErrMalformedTable, t.tokens,
		)
	}

	if len(t.flags) == 0 {
		return fmt.Errorf("%w: no states", ErrMalformedTable)
	}

	if len(t.trans) != len(t.flags)*t.tokens {
		return fmt.Errorf(
			"%w: matrix is %d cells, want %d",
			ErrMalformedTable, len(t.trans), len(t.flags)*t.tokens,
		)
	}

	for i, next := range t.trans {
		if next == NoTransition {
			continue
		}

		if next < 0 || int(next) >= len(t.flags) {
			return fmt.Errorf(
				"%w: state %d token %d -> %d out of range",
				ErrMalformedTable, i/t.tokens, i%t.tokens, next,
			)
		}
	}

	for b, tok := range t.alpha.m {
		if tok == TokenInvalid {
			continue
		}

		if tok < 0 || int(tok) >= t.tokens {
			return fmt.Errorf(
				"%w: byte %#x maps to token %d of %d",
				ErrMalformedTable, b, tok, t.tokens,
			)
		}
	}

	return nil
}

// Encode writes the table artifact: magic, version, alphabet page, then
// the state matrix as fixed-width little-endian records. The round trip
// through Decode is lossless.
func (t *Table) Encode(w io.Writer) error {
	if _, err := w.Write(tableMagic[:]); err != nil {
		return err
	}

	for _, v := range []any{
		tableVersion,
		uint8(t.tokens),
		uint8(0), // reserved
	} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	page := make([]byte, len(t.alpha.m))
	for i, tok := range t.alpha.m {
		page[i] = byte(tok)
	}

	if _, err := w.Write(page); err != nil {
		return err
	}

	err := binary.Write(w, binary.LittleEndian, uint32(len(t.flags)))
	if err != nil {
		return err
	}

	for i, f := range t.flags {
		err = binary.Write(w, binary.LittleEndian, uint8(f))
		if err != nil {
			return err
		}

		row := t.trans[i*t.tokens : (i+1)*t.tokens]
		err = binary.Write(w, binary.LittleEndian, row)
		if err != nil {
			return err
		}
	}

	return nil
}

// Decode reads a table artifact and validates its shape before returning
// it. A table that decodes successfully can be matched against without
// any per-query fault paths.
func Decode(r io.Reader) (*Table, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTable, err)
	}

	if magic != tableMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedTable)
	}

	var version uint16
	err := binary.Read(r, binary.LittleEndian, &version)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTable, err)
	}

	if version != tableVersion {
		return nil, fmt.Errorf(
			"%w: got %d, want %d",
			ErrTableVersion, version, tableVersion,
		)
	}

	var tokens, reserved uint8
	err = binary.Read(r, binary.LittleEndian, &tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTable, err)
	}

	err = binary.Read(r, binary.LittleEndian, &reserved)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTable, err)
	}

	t := &Table{
		alpha:  newAlphabet(),
		tokens: int(tokens),
	}

	var page [256]byte
	if _, err = io.ReadFull(r, page[:]); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTable, err)
	}

	for i, b := range page {
		t.alpha.m[i] = int8(b)
	}
	t.alpha.tokens = int8(tokens)

	var states uint32
	err = binary.Read(r, binary.LittleEndian, &states)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTable, err)
	}

	// Far beyond any plausible label set; guards against allocating
	// from a corrupt header.
	const maxStates = 1 << 20
	if states == 0 || states > maxStates {
		return nil, fmt.Errorf(
			"%w: state count %d", ErrMalformedTable, states,
		)
	}

	t.flags = make([]Flags, states)
	t.trans = make([]int32, int(states)*t.tokens)

	for i := 0; i < int(states); i++ {
		var f uint8
		err = binary.Read(r, binary.LittleEndian, &f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedTable, err)
		}

		t.flags[i] = Flags(f)

		row := t.trans[i*t.tokens : (i+1)*t.tokens]
		err = binary.Read(r, binary.LittleEndian, row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedTable, err)
		}
	}

	if err = t.validate(); err != nil {
		return nil, err
	}

	return t, nil
}
