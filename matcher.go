package tld

// Match walks the candidate byte-by-byte against the transition matrix
// and reports whether it is an accepted label for any of the requested
// acceptance categories. A byte outside the alphabet or a missing edge
// rejects immediately; the empty string is decided by the start state's
// flags. Match allocates nothing and runs in O(len(candidate)) with one
// alphabet lookup per byte.
func (t *Table) Match(candidate string, want Flags) bool {
	state := int32(0)

	for i := 0; i < len(candidate); i++ {
		tok := t.alpha.m[candidate[i]]
		if tok == TokenInvalid {
			return false
		}

		state = t.trans[int(state)*t.tokens+int(tok)]
		if state == NoTransition {
			return false
		}
	}

	return t.flags[state]&want != 0
}

// MatchHost reports whether the candidate is acceptable as the top-level
// label of a generic hostname.
func (t *Table) MatchHost(candidate string) bool {
	return t.Match(candidate, Host)
}

// MatchMail reports whether the candidate is acceptable as the top-level
// label of a mail-address domain.
func (t *Table) MatchMail(candidate string) bool {
	return t.Match(candidate, Mail)
}
