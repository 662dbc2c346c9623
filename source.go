package tld

// SourceType selects the list format a source is parsed with.
type SourceType string

const (
	// IANA is the registry format of tlds-alpha-by-domain.txt: one
	// label per line, '#' comments, every label carrying the source's
	// acceptance categories.
	IANA SourceType = "iana"

	// OVERLAY is a locally curated list: one label per line with an
	// optional per-label acceptance column, e.g. "lan host,mail".
	OVERLAY SourceType = "overlay"
)

type LocationType string

const (
	LOC LocationType = "local"
	REM LocationType = "remote"
)

type Location struct {
	Path string
	Type LocationType
}

// Source describes one list of accepted labels feeding the registry.
type Source struct {
	Location Location
	Type     SourceType

	// Accept is the acceptance category string applied to labels that do
	// not carry their own ("host", "mail,host", "either").
	Accept string

	// SkipIDN drops punycode (xn--) labels; IDN expansion is the
	// caller's concern, not this table's.
	SkipIDN bool

	Tags []string
}

type Sources []Source
