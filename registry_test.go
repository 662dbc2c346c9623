package tld

import (
	"context"
	"testing"
)

func Test_Registry_Add_union(t *testing.T) {
	reg := NewRegistry()

	reg.Add("ARPA", Host)
	reg.Add("arpa", Mail)
	reg.Add("com", Host)

	if reg.Len() != 2 {
		t.Fatalf("expected 2 labels, got %d", reg.Len())
	}

	pairs := reg.Pairs()
	if pairs[0].Label != "arpa" || pairs[1].Label != "com" {
		t.Fatalf("expected sorted pairs, got %v", pairs)
	}

	if pairs[0].Flags != Either {
		t.Errorf("expected union of flags, got %s", pairs[0].Flags)
	}

	if pairs[1].Flags != Host {
		t.Errorf("expected host flags, got %s", pairs[1].Flags)
	}
}

func Test_ReadSources_iana(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, err := ReadSources(ctx, &NOOPLogger{}, Source{
		Location: Location{
			Path: "testdata/iana/tlds-alpha-by-domain.txt",
			Type: LOC,
		},
		Type:    IANA,
		Accept:  "either",
		SkipIDN: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	// Two xn-- entries filtered from the ten listed
	if reg.Len() != 8 {
		t.Fatalf("expected 8 labels, got %d", reg.Len())
	}

	var com bool
	for _, p := range reg.Pairs() {
		if p.Flags != Either {
			t.Errorf("expected either for [%s], got %s", p.Label, p.Flags)
		}

		// Upstream list is uppercase; stored labels fold
		com = com || p.Label == "com"
	}

	if !com {
		t.Errorf("expected folded [com] label")
	}
}

func Test_ReadSources_iana_idn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, err := ReadSources(ctx, &NOOPLogger{}, Source{
		Location: Location{
			Path: "testdata/iana/tlds-alpha-by-domain.txt",
			Type: LOC,
		},
		Type: IANA,
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if reg.Len() != 10 {
		t.Fatalf("expected 10 labels, got %d", reg.Len())
	}
}

func Test_ReadSources_overlay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, err := ReadSources(ctx, &NOOPLogger{}, Source{
		Location: Location{
			Path: "testdata/overlay.list",
			Type: LOC,
		},
		Type:   OVERLAY,
		Accept: "host",
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := map[string]Flags{
		"fw":   Host,
		"lan":  Either,
		"thc":  Host,
		"trap": Host, // no column, source default applies
	}

	if reg.Len() != len(expected) {
		t.Fatalf("expected %d labels, got %d", len(expected), reg.Len())
	}

	for _, p := range reg.Pairs() {
		if p.Flags != expected[p.Label] {
			t.Errorf(
				"expected %s for [%s], got %s",
				expected[p.Label], p.Label, p.Flags,
			)
		}
	}
}

func Test_ReadSources_merge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, err := ReadSources(
		ctx,
		&NOOPLogger{},
		Source{
			Location: Location{
				Path: "testdata/iana/tlds-alpha-by-domain.txt",
				Type: LOC,
			},
			Type:    IANA,
			SkipIDN: true,
		},
		Source{
			Location: Location{
				Path: "testdata/overlay.list",
				Type: LOC,
			},
			Type:   OVERLAY,
			Accept: "host",
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if reg.Len() != 12 {
		t.Fatalf("expected 12 merged labels, got %d", reg.Len())
	}

	table, err := reg.Table()
	if err != nil {
		t.Fatalf("unexpected build error: %s", err)
	}

	tests := map[string]struct {
		candidate string
		want      Flags
		expected  bool
	}{
		"iana-host":     {"com", Host, true},
		"iana-mail":     {"com", Mail, true},
		"overlay-host":  {"lan", Host, true},
		"overlay-mail":  {"lan", Mail, true},
		"pseudo-host":   {"fw", Host, true},
		"pseudo-mail":   {"fw", Mail, false},
		"filtered-idn":  {"xn--p1ai", Host, false},
		"never-entered": {"zzzz", Either, false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			out := table.Match(test.candidate, test.want)
			if out != test.expected {
				t.Errorf(
					"expected %t for [%s] %s",
					test.expected, test.candidate, test.want,
				)
			}
		})
	}
}

func Test_ReadSources_errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tests := map[string]struct {
		srcs []Source
	}{
		"no-sources": {},
		"missing-file": {
			srcs: []Source{{
				Location: Location{
					Path: "testdata/does-not-exist.txt",
					Type: LOC,
				},
				Type: IANA,
			}},
		},
		"bad-accept": {
			srcs: []Source{{
				Location: Location{
					Path: "testdata/overlay.list",
					Type: LOC,
				},
				Type:   OVERLAY,
				Accept: "smtp",
			}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSources(ctx, &NOOPLogger{}, test.srcs...)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
