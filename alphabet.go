package tld

// TokenInvalid is the token for any byte outside the recognized alphabet.
const TokenInvalid int8 = -1

// alphabet is the total byte-to-token mapping a table is built with. Token
// indices are dense, assigned in first-seen order over the accepted labels,
// and frozen once the table is built. ASCII case is folded at the mapping
// so queries may arrive in either case.
type alphabet struct {
	tokens int8
	m      [256]int8
}

func newAlphabet() alphabet {
	a := alphabet{}
	for i := range a.m {
		a.m[i] = TokenInvalid
	}

	return a
}

// add registers the byte (and its upper-case twin for letters) and returns
// its token. Re-adding a known byte returns the existing token.
func (a *alphabet) add(b byte) int8 {
	b = foldCase(b)
	if a.m[b] != TokenInvalid {
		return a.m[b]
	}

	t := a.tokens
	a.m[b] = t
	if b >= 'a' && b <= 'z' {
		a.m[b-'a'+'A'] = t
	}

	a.tokens++

	return t
}

// token maps a single input byte, TokenInvalid for anything the accepted
// language never uses.
func (a *alphabet) token(b byte) int8 {
	return a.m[b]
}

func foldCase(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}

	return b
}

// validLabelByte reports whether a byte may appear in an accepted label at
// all. The recognized set is the DNS label alphabet: case-insensitive
// ASCII letters, digits, and hyphen.
func validLabelByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '-':
		return true
	}

	return false
}
