package tld

import (
	"fmt"
	"strings"

	"go.structs.dev/gen"
)

// Flags is the acceptance bitmask attached to an accepted label. A label
// may be acceptable inside a mail address, inside a generic hostname, or
// both. Bit positions are part of the serialized table format; new
// categories reserve the next free bit rather than reordering.
type Flags uint8

const (
	Mail Flags = 1 << iota
	Host

	// Either matches any acceptance category and reproduces the legacy
	// single final-flag behavior.
	Either = Mail | Host
)

var flagStrings = gen.FMap[Flags, string]{
	Mail: "mail",
	Host: "host",
}

var flagStringsR = flagStrings.Flip()

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}

	parts := make([]string, 0, 2)
	for _, bit := range []Flags{Mail, Host} {
		if f&bit != 0 {
			parts = append(parts, flagStrings[bit])
		}
	}

	return strings.Join(parts, ",")
}

// ParseFlags maps a config string such as "host" or "mail,host" to the
// corresponding bitmask. "either" and "all" select every category.
func ParseFlags(str string) (Flags, error) {
	var f Flags
	for _, part := range strings.Split(str, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}

		if part == "either" || part == "all" {
			f |= Either
			continue
		}

		bit, ok := flagStringsR[part]
		if !ok {
			return 0, fmt.Errorf("unknown acceptance category [%s]", part)
		}

		f |= bit
	}

	if f == 0 {
		return 0, fmt.Errorf("empty acceptance category [%s]", str)
	}

	return f, nil
}
