package tld

import (
	"errors"
	"testing"
)

var legacyFixture = []Pair{
	{"it", Host},
	{"com", Host},
	{"org", Host},
	{"eu", Host},
	{"arpa", Host | Mail},
	{"fw", Host},
	{"lan", Host | Mail},
	{"trap", Host},
	{"thc", Host},
	{"museum", Host | Mail},
	{"jobs", Host},
}

func Test_Build_errors(t *testing.T) {
	tests := map[string]struct {
		pairs []Pair
		err   error
	}{
		"empty-set": {
			pairs: nil,
			err:   ErrNoLabels,
		},
		"empty-label": {
			pairs: []Pair{{"", Host}},
			err:   ErrInvalidLabel,
		},
		"invalid-byte": {
			pairs: []Pair{{"c_m", Host}},
			err:   ErrInvalidLabel,
		},
		"invalid-utf8": {
			pairs: []Pair{{"müseum", Host}},
			err:   ErrInvalidLabel,
		},
		"no-flags": {
			pairs: []Pair{{"com", 0}},
			err:   ErrNoFlags,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			table, err := Build(test.pairs)
			if !errors.Is(err, test.err) {
				t.Fatalf("expected %v, got %v", test.err, err)
			}

			if table != nil {
				t.Fatalf("expected nil table on error")
			}
		})
	}
}

func Test_Build_flag_union(t *testing.T) {
	table, err := Build([]Pair{
		{"arpa", Host},
		{"arpa", Mail},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !table.Match("arpa", Host) {
		t.Errorf("expected host acceptance after union")
	}

	if !table.Match("arpa", Mail) {
		t.Errorf("expected mail acceptance after union")
	}
}

func Test_Build_minimizes(t *testing.T) {
	table, err := Build(legacyFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Upper bound for the raw trie: root plus one state per label
	// byte. Suffix sharing must land below it.
	naive := 1
	for _, p := range legacyFixture {
		naive += len(p.Label)
	}

	if table.States() >= naive {
		t.Errorf(
			"expected fewer than %d states, got %d",
			naive, table.States(),
		)
	}

	if table.States() < 2 {
		t.Errorf("implausible state count %d", table.States())
	}
}

func Test_Build_order_independent(t *testing.T) {
	forward, err := Build(legacyFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reversed := make([]Pair, len(legacyFixture))
	for i, p := range legacyFixture {
		reversed[len(legacyFixture)-1-i] = p
	}

	backward, err := Build(reversed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	probes := []string{
		"", "i", "it", "ita", "com", "co", "org", "arpa",
		"museum", "jobs", "zzzz", "lan", "thc", "trap", "xyz",
	}

	for _, probe := range probes {
		for _, want := range []Flags{Host, Mail, Either} {
			if forward.Match(probe, want) != backward.Match(probe, want) {
				t.Errorf(
					"order-dependent result for [%s] intent %s",
					probe, want,
				)
			}
		}
	}
}

func Test_Build_prefix_not_accepted(t *testing.T) {
	table, err := Build(legacyFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Interior states carry no flags; prefixes of accepted labels
	// must not match.
	for _, probe := range []string{"muse", "ar", "c", "co", "j"} {
		if table.Match(probe, Either) {
			t.Errorf("prefix [%s] unexpectedly accepted", probe)
		}
	}
}

func Test_Build_empty_accept_option(t *testing.T) {
	table, err := Build(legacyFixture, WithEmptyAccept(Host))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !table.Match("", Host) {
		t.Errorf("expected empty string host acceptance")
	}

	if table.Match("", Mail) {
		t.Errorf("unexpected empty string mail acceptance")
	}
}
