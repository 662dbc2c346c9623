package tld

import (
	"context"
	"sync/atomic"

	"go.devnw.com/event"
)

// NewVerifier wraps an acceptance table in a pipeline interceptor.
func NewVerifier(
	ctx context.Context,
	pub *event.Publisher,
	logger Logger,
	table *Table,
) (*Verifier, error) {
	err := checkNil(ctx, pub, logger, table)
	if err != nil {
		return nil, err
	}

	v := &Verifier{
		ctx:    ctx,
		pub:    pub,
		logger: logger,
	}
	v.table.Store(table)

	return v, nil
}

// Verifier rejects queries whose top-level label the automaton does not
// accept for the query's intent. Everything else passes down the
// pipeline untouched.
type Verifier struct {
	ctx    context.Context
	pub    *event.Publisher
	logger Logger
	table  atomic.Pointer[Table]
}

// Swap atomically replaces the active table, e.g. after rebuilding from
// an updated registry. In-flight matches finish on the table they
// started with.
func (v *Verifier) Swap(t *Table) {
	if t == nil {
		return
	}

	v.table.Store(t)
}

// Intercept implements the stream.InterceptFunc which can then be used
// throughout the stream library; it answers rejected names with NXDOMAIN
// and never forwards them upstream.
func (v *Verifier) Intercept(
	_ context.Context,
	req *Request,
) (*Request, bool) {
	intent := req.Intent()

	if v.table.Load().Match(req.TLD(), intent) {
		v.logger.Debugw(
			"tld accepted",
			"category", string(VERIFY),
			"name", req.Name(),
			"tld", req.TLD(),
			"intent", intent.String(),
			"client", req.client,
		)

		return req, true
	}

	v.logger.Infow(
		"tld rejected",
		"category", string(VERIFY),
		"name", req.Name(),
		"tld", req.TLD(),
		"intent", intent.String(),
		"client", req.client,
		"server", req.server,
	)

	err := req.Reject()
	if err != nil {
		// Published against the verifier's lifetime, not the request,
		// which Reject has already cancelled.
		v.pub.ErrorFunc(v.ctx, func() error {
			return Error{
				Category: VERIFY,
				Msg:      "failed to reject request",
				Inner:    err,
				Name:     req.String(),
				Client:   req.client,
				Server:   req.server,
			}
		})
	}

	return nil, false
}
