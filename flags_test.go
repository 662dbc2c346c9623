package tld

import "testing"

func Test_Flags_String(t *testing.T) {
	tests := map[string]struct {
		f        Flags
		expected string
	}{
		"none": {
			f:        0,
			expected: "none",
		},
		"mail": {
			f:        Mail,
			expected: "mail",
		},
		"host": {
			f:        Host,
			expected: "host",
		},
		"either": {
			f:        Either,
			expected: "mail,host",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			out := test.f.String()
			if out != test.expected {
				t.Errorf("expected [%s], got [%s]", test.expected, out)
			}
		})
	}
}

func Test_ParseFlags(t *testing.T) {
	tests := map[string]struct {
		in       string
		expected Flags
		err      bool
	}{
		"host": {
			in:       "host",
			expected: Host,
		},
		"mail": {
			in:       "mail",
			expected: Mail,
		},
		"both": {
			in:       "host,mail",
			expected: Either,
		},
		"either": {
			in:       "either",
			expected: Either,
		},
		"all": {
			in:       "all",
			expected: Either,
		},
		"mixed-case-spaced": {
			in:       " Host , MAIL ",
			expected: Either,
		},
		"empty": {
			in:  "",
			err: true,
		},
		"unknown": {
			in:  "smtp",
			err: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f, err := ParseFlags(test.in)
			if test.err {
				if err == nil {
					t.Fatalf("expected error for [%s]", test.in)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if f != test.expected {
				t.Errorf("expected %s, got %s", test.expected, f)
			}
		})
	}
}
