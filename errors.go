package tld

import (
	"errors"
	"fmt"
)

// Construction errors. Building a table either produces a complete valid
// table or fails with one of these; there is no partial success.
var (
	// ErrNoLabels indicates an empty input set.
	ErrNoLabels = errors.New("no labels provided")

	// ErrInvalidLabel indicates a label with a byte outside the
	// recognized alphabet, or an empty label.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrNoFlags indicates a label without any acceptance category.
	ErrNoFlags = errors.New("label has no acceptance flags")
)

// Consistency faults. These are deployment errors surfaced when a
// serialized table is loaded, never per query.
var (
	// ErrMalformedTable indicates a decoded table whose shape violates
	// the format invariants (out-of-range transition, bad alphabet page).
	ErrMalformedTable = errors.New("malformed table")

	// ErrTableVersion indicates an artifact written by an incompatible
	// format version.
	ErrTableVersion = errors.New("unsupported table version")
)

// checkNil checks if any of the provided values are nil and returns
// an error if they are.
func checkNil(values ...any) error {
	for _, value := range values {
		if value == nil {
			return fmt.Errorf("nil value of type %T", value)
		}
	}

	return nil
}

type Category string

const (
	VERIFY   Category = "verify"
	REGISTRY Category = "registry"
	CACHE    Category = "cache"
	UPSTREAM Category = "upstream"
)

func (c Category) String() string {
	return string(c)
}

// Error carries the context of a failure inside the query pipeline.
type Error struct {
	Msg      string   `json:"msg"`
	Inner    error    `json:"inner,omitempty"`
	Name     string   `json:"name,omitempty"`
	Category Category `json:"category,omitempty"`
	Client   string   `json:"client,omitempty"`
	Server   string   `json:"server,omitempty"`
}

func (e Error) String() string {
	msg := fmt.Sprintf("%s: %s", e.Msg, e.Inner)

	if e.Name != "" {
		msg = fmt.Sprintf("%s | %s", e.Name, msg)
	}

	if e.Server != "" {
		msg = fmt.Sprintf("%s | %s", e.Server, msg)
	}

	if e.Category != "" {
		msg = fmt.Sprintf("%s | %s", e.Category, msg)
	}

	return msg
}

func (e Error) Error() string {
	return e.String()
}

func (e Error) Unwrap() error {
	//nolint:errorlint // this is correctly implemented
	wrapped, ok := e.Inner.(wrappedErr)
	if !ok {
		return e.Inner
	}

	return wrapped.Unwrap()
}

type wrappedErr interface {
	Unwrap() error
}
