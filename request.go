package tld

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/miekg/dns"
)

type Writer interface {
	WriteMsg(res *dns.Msg) error
}

// Request encapsulates all of the request
// data for evaluation in the pipeline.
type Request struct {
	ctx    context.Context
	cancel context.CancelFunc
	id     uuid.UUID
	w      Writer
	r      *dns.Msg
	name   string
	server string
	client string
}

// Name returns the requested domain without the trailing root dot.
func (r *Request) Name() string {
	if r.name == "" {
		r.name = strings.TrimSuffix(r.r.Question[0].Name, ".")
	}

	return r.name
}

// TLD returns the top-level label of the requested domain.
func (r *Request) TLD() string {
	name := r.Name()

	return name[strings.LastIndexByte(name, '.')+1:]
}

// Intent maps the question type to the acceptance category the top-level
// label must satisfy: mail-exchanger lookups check the mail category,
// everything else the host category.
func (r *Request) Intent() Flags {
	if r.r.Question[0].Qtype == dns.TypeMX {
		return Mail
	}

	return Host
}

// Key returns a unique identifier for the request which is an aggregate
// of the name, type, and class.
func (r *Request) Key() string {
	return key(r.r)
}

func key(msg *dns.Msg) string {
	q := msg.Question[0]

	return fmt.Sprintf("%s:%d:%d", q.Name, q.Qtype, q.Qclass)
}

func (r *Request) String() string {
	return fmt.Sprintf(
		"%s %s %s",
		r.r.Question[0].Name,
		dns.Type(r.r.Question[0].Qtype).String(),
		dns.Class(r.r.Question[0].Qclass).String(),
	)
}

// Reject writes an NXDOMAIN response for the request
// directly to the original response writer.
func (r *Request) Reject() error {
	select {
	case <-r.ctx.Done():
		return r.ctx.Err()
	default:
		r.cancel()

		return r.w.WriteMsg(
			(&dns.Msg{}).SetRcode(r.r, dns.RcodeNameError),
		)
	}
}

// Answer writes the response for the request to the original
// response writer.
func (r *Request) Answer(msg *dns.Msg) error {
	select {
	case <-r.ctx.Done():
		return r.ctx.Err()
	default:
		r.cancel()

		return r.w.WriteMsg(msg)
	}
}
