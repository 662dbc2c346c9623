package tld

import (
	"context"
	"testing"
	"time"

	"github.com/miekg/dns"
	"go.devnw.com/alog"
	"go.devnw.com/event"
)

func Question(t *testing.T, domain string, qtype uint16) *dns.Msg {
	t.Logf("%s %s", domain, dns.Type(qtype))

	m := new(dns.Msg)
	m.SetQuestion(domain, qtype)

	return m
}

type TestWriter struct {
	response *dns.Msg
}

func (tw *TestWriter) WriteMsg(res *dns.Msg) error {
	tw.response = res
	return nil
}

func Test_Verifier_Intercept(t *testing.T) {
	tests := map[string]struct {
		domain string
		qtype  uint16
		pass   bool
	}{
		"host-accepted": {
			domain: "test.example.com.",
			qtype:  dns.TypeA,
			pass:   true,
		},
		"host-accepted-folded": {
			domain: "test.Example.COM.",
			qtype:  dns.TypeAAAA,
			pass:   true,
		},
		"mail-accepted": {
			domain: "mail.internal.arpa.",
			qtype:  dns.TypeMX,
			pass:   true,
		},
		"bare-tld-mail": {
			domain: "museum.",
			qtype:  dns.TypeMX,
			pass:   true,
		},
		"unknown-tld": {
			domain: "test.example.zzzz.",
			qtype:  dns.TypeA,
		},
		"mail-on-host-only": {
			domain: "mail.example.com.",
			qtype:  dns.TypeMX,
		},
		"pseudo-tld-mail": {
			domain: "relay.fw.",
			qtype:  dns.TypeMX,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pub := event.NewPublisher(ctx)
			defer pub.Close()

			logger, err := alog.New(
				ctx,
				"test",
				alog.DEFAULTTIMEFORMAT,
				time.UTC,
				0,
				alog.TestDestinations(ctx, t)...,
			)
			if err != nil {
				t.Fatal(err)
			}
			defer logger.Close()

			logger.Printc(ctx, pub.ReadEvents(0).Interface())
			logger.Errorc(ctx, pub.ReadErrors(0).Interface())

			v, err := NewVerifier(ctx, pub, &NOOPLogger{}, legacyTable(t))
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			reqCtx, reqCancel := context.WithCancel(ctx)
			defer reqCancel()

			req := &Request{
				ctx:    reqCtx,
				cancel: reqCancel,
				w:      &TestWriter{},
				r:      Question(t, test.domain, test.qtype),
			}

			out, pass := v.Intercept(ctx, req)
			if test.pass {
				if !pass {
					t.Fatal("expected passthrough; got rejection")
				}

				if out != req {
					t.Fatalf("expected original request, got %v", out)
				}

				return
			}

			if pass || out != nil {
				t.Fatal("expected rejection; got passthrough")
			}

			w, ok := req.w.(*TestWriter)
			if !ok {
				t.Fatalf("expected TestWriter, got %T", req.w)
			}

			if w.response == nil {
				t.Fatal("expected a response write")
			}

			if w.response.Rcode != dns.RcodeNameError {
				t.Fatalf(
					"expected NXDOMAIN, got %s",
					dns.RcodeToString[w.response.Rcode],
				)
			}
		})
	}
}

func Test_Verifier_Swap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := event.NewPublisher(ctx)
	defer pub.Close()

	v, err := NewVerifier(ctx, pub, &NOOPLogger{}, legacyTable(t))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	query := func() bool {
		reqCtx, reqCancel := context.WithCancel(ctx)
		defer reqCancel()

		_, pass := v.Intercept(ctx, &Request{
			ctx:    reqCtx,
			cancel: reqCancel,
			w:      &TestWriter{},
			r:      Question(t, "host.newtld.", dns.TypeA),
		})

		return pass
	}

	if query() {
		t.Fatal("expected rejection before swap")
	}

	next, err := Build([]Pair{{Label: "newtld", Flags: Host}})
	if err != nil {
		t.Fatalf("unexpected build error: %s", err)
	}

	v.Swap(next)

	if !query() {
		t.Fatal("expected passthrough after swap")
	}

	// nil swap keeps the active table
	v.Swap(nil)

	if !query() {
		t.Fatal("expected passthrough after nil swap")
	}
}
