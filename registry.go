package tld

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

//go:generate curl https://data.iana.org/TLD/tlds-alpha-by-domain.txt -o testdata/iana/tlds-alpha-by-domain.txt

// Registry accumulates (label, flags) pairs from one or more sources.
// Duplicate labels merge by flag union regardless of which source or in
// what order they arrived.
type Registry struct {
	mu    sync.Mutex
	pairs map[string]Flags
}

func NewRegistry() *Registry {
	return &Registry{
		pairs: map[string]Flags{},
	}
}

// Add records an accepted label, folding case and unioning flags with any
// earlier occurrence.
func (r *Registry) Add(label string, f Flags) {
	label = strings.ToLower(label)

	r.mu.Lock()
	r.pairs[label] |= f
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pairs)
}

// Pairs returns the merged set sorted by label so repeated builds from
// the same sources are deterministic.
func (r *Registry) Pairs() []Pair {
	r.mu.Lock()
	defer r.mu.Unlock()

	pairs := make([]Pair, 0, len(r.pairs))
	for label, f := range r.pairs {
		pairs = append(pairs, Pair{Label: label, Flags: f})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Label < pairs[j].Label
	})

	return pairs
}

// Table builds the acceptance table from the merged set.
func (r *Registry) Table(opts ...Option) (*Table, error) {
	return Build(r.Pairs(), opts...)
}

// ReadSources streams the configured list sources into a merged registry.
// Local sources may point at a file or a directory of .txt/.list files;
// remote sources are fetched once over HTTP.
func ReadSources(
	ctx context.Context,
	logger Logger,
	srcs ...Source,
) (*Registry, error) {
	err := checkNil(ctx, logger)
	if err != nil {
		return nil, err
	}

	if len(srcs) == 0 {
		return nil, fmt.Errorf("no sources provided")
	}

	reg := NewRegistry()

	for _, src := range srcs {
		accept := Either
		if src.Accept != "" {
			accept, err = ParseFlags(src.Accept)
			if err != nil {
				return nil, Error{
					Category: REGISTRY,
					Msg:      "invalid acceptance category",
					Inner:    err,
					Name:     src.Location.Path,
				}
			}
		}

		err = reg.read(ctx, logger, src, accept)
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func (r *Registry) read(
	ctx context.Context,
	logger Logger,
	src Source,
	accept Flags,
) error {
	if src.Location.Type == REM {
		data, err := Get(ctx, src.Location.Path)
		if err != nil {
			return Error{
				Category: REGISTRY,
				Msg:      "failed to fetch list",
				Inner:    err,
				Name:     src.Location.Path,
			}
		}

		r.parse(data, src, accept, logger)

		return nil
	}

	info, err := os.Stat(src.Location.Path)
	if err != nil {
		return Error{
			Category: REGISTRY,
			Msg:      "failed to stat list",
			Inner:    err,
			Name:     src.Location.Path,
		}
	}

	if !info.IsDir() {
		data, err := os.ReadFile(src.Location.Path)
		if err != nil {
			return Error{
				Category: REGISTRY,
				Msg:      "failed to read list",
				Inner:    err,
				Name:     src.Location.Path,
			}
		}

		r.parse(data, src, accept, logger)

		return nil
	}

	bodies := ReadFiles(
		ctx,
		logger,
		ReadDirectory(
			ctx, logger, src.Location.Path,
			".txt", ".list",
		),
	)

	for body := range bodies {
		data, err := io.ReadAll(body)
		body.Close()
		if err != nil {
			logger.Errorw(
				"failed to read list body",
				"path", src.Location.Path,
				"error", err,
			)
			continue
		}

		r.parse(data, src, accept, logger)
	}

	return nil
}

// parse handles the registry text format: one label per line, blank lines
// and '#' comments skipped, inline comments trimmed. Overlay sources may
// carry a per-label acceptance column.
func (r *Registry) parse(
	data []byte,
	src Source,
	accept Flags,
	logger Logger,
) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		commentIndex := strings.Index(line, "#")
		if commentIndex != -1 {
			line = strings.TrimSpace(line[:commentIndex])
		}

		cols := strings.Fields(line)
		if len(cols) == 0 {
			continue
		}

		label := strings.ToLower(cols[0])

		flags := accept
		if src.Type == OVERLAY && len(cols) > 1 {
			f, err := ParseFlags(cols[1])
			if err != nil {
				logger.Warnw(
					"invalid acceptance column",
					"label", label,
					"error", err,
				)
			} else {
				flags = f
			}
		}

		if src.SkipIDN && strings.HasPrefix(label, "xn--") {
			continue
		}

		r.Add(label, flags)
	}
}
