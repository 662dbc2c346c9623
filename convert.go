package tld

import (
	"context"

	"github.com/google/uuid"
	"github.com/miekg/dns"
)

// HandleFunc is a type alias for the handler function
// from the dns package.
type HandleFunc func(dns.ResponseWriter, *dns.Msg)

// Convert returns a handler for the DNS server as well as a read-only
// channel of requests to be pushed down the pipeline.
func Convert(
	pCtx context.Context,
	logger Logger,
) (HandleFunc, <-chan *Request) {
	// Never closed: handlers may still be selecting on a send when the
	// context ends, so closing here would race them. Downstream workers
	// exit with the context instead of on close.
	out := make(chan *Request)

	return func(w dns.ResponseWriter, req *dns.Msg) {
		if len(req.Question) == 0 {
			err := w.WriteMsg(
				(&dns.Msg{}).SetRcode(req, dns.RcodeFormatError),
			)
			if err != nil {
				logger.Errorw(
					"failed to reject empty question",
					"error", err,
				)
			}

			return
		}

		ctx, cancel := context.WithCancel(pCtx)
		r := &Request{
			ctx:    ctx,
			cancel: cancel,
			id:     uuid.New(),
			w:      w,
			r:      req,
			server: w.LocalAddr().String(),
			client: w.RemoteAddr().String(),
		}

		select {
		case <-pCtx.Done():
			w.Close()

		case out <- r:
			logger.Debugw(
				"request queued",
				"id", r.id,
				"name", r.Name(),
				"client", r.client,
			)
		}
	}, out
}
