package tld

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/miekg/dns"
	"go.devnw.com/event"
)

const (
	portReg  = `(\:{1}[0-9]{1,5}){0,1}`
	protoReg = `(tcp|udp|tcp-tls){0,1}(?:\:\/\/){0,1}`
	ipv4Reg  = `(?:[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3})`
	ipv6Reg  = `(?:(?:[0-9a-fA-F]{1,4}:){7,7}[0-9a-fA-F]{1,4}|(?:[0-9a-fA-F]{1,4}:){1,7}:|(?:[0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}|(?:[0-9a-fA-F]{1,4}:){1,5}(?::[0-9a-fA-F]{1,4}){1,2}|(?:[0-9a-fA-F]{1,4}:){1,4}(?::[0-9a-fA-F]{1,4}){1,3}|(?:[0-9a-fA-F]{1,4}:){1,3}(?::[0-9a-fA-F]{1,4}){1,4}|(?:[0-9a-fA-F]{1,4}:){1,2}(?::[0-9a-fA-F]{1,4}){1,5}|[0-9a-fA-F]{1,4}:(?:(?::[0-9a-fA-F]{1,4}){1,6})|:(?:(?::[0-9a-fA-F]{1,4}){1,7}|:)|fe80:(?::[0-9a-fA-F]{0,4}){0,4}%[0-9a-zA-Z]{1,}|::(?:ffff(?::0{1,4}){0,1}:){0,1}(?:(?:25[0-5]|(?:2[0-4]|1{0,1}[0-9]){0,1}[0-9])\.){3,3}(?:25[0-5]|(?:2[0-4]|1{0,1}[0-9]){0,1}[0-9])|(?:[0-9a-fA-F]{1,4}:){1,4}:(?:(?:25[0-5]|(?:2[0-4]|1{0,1}[0-9]){0,1}[0-9])\.){3,3}(?:25[0-5]|(?:2[0-4]|1{0,1}[0-9]){0,1}[0-9]))`
)

// addrReg is a regular expression for matching the supported
// address formats
// <proto>://<server>[:<port>].
var addrReg = regexp.MustCompile(
	fmt.Sprintf(`^%s(%s|%s)%s$`, protoReg, ipv4Reg, ipv6Reg, portReg),
)

// Protocol is a type alias of string for categorizing
// protocols for a DNS server.
type Protocol string

const (
	// UDP is the network type for UDP.
	UDP Protocol = "udp"

	// TCP is the network type for TCP.
	TCP Protocol = "tcp"

	// TLS is the network type for TLS over TCP.
	TLS Protocol = "tcp-tls"
)

// TLSConfig loads a preset tls configuration adding a custom CA
// certificate to the system trust store if provided.
func TLSConfig(caCert []byte) (*tls.Config, error) {
	caPool, err := x509.SystemCertPool()
	if err != nil {
		return nil, err
	}

	if len(caCert) > 0 {
		ok := caPool.AppendCertsFromPEM(caCert)
		if !ok {
			return nil, errors.New("failed to parse root certificate")
		}
	}

	return &tls.Config{
		MinVersion:               tls.VersionTLS13,
		RootCAs:                  caPool,
		PreferServerCipherSuites: true,
	}, nil
}

// Up creates a DNS client per upstream server as defined by the
// addresses. Each address should follow the format
// <proto>://<server>[:<port>].
func Up(
	ctx context.Context,
	pub *event.Publisher,
	logger Logger,
	addresses ...string,
) ([]*Upstream, error) {
	err := checkNil(ctx, pub, logger)
	if err != nil {
		return nil, err
	}

	upstreams := make([]*Upstream, 0, len(addresses))

	for _, address := range addresses {
		matches := addrReg.FindStringSubmatch(address)
		if len(matches) != 4 {
			return nil, fmt.Errorf("invalid address [%s]", address)
		}

		proto := UDP
		if matches[1] != "" {
			proto = Protocol(matches[1])
		}

		port := 53
		if proto == TLS {
			port = 853
		}

		p := strings.TrimPrefix(matches[3], ":")
		if p != "" {
			newport, err := strconv.Atoi(p)
			if err != nil {
				return nil, err
			}

			if newport < 1 || newport > 65535 {
				return nil, fmt.Errorf(
					"invalid port [%s]", matches[3],
				)
			}

			port = newport
		}

		var tlsConfig *tls.Config
		if proto == TLS {
			tlsConfig, err = TLSConfig(nil)
			if err != nil {
				return nil, err
			}
		}

		upstreams = append(upstreams, &Upstream{
			proto:   proto,
			address: net.ParseIP(matches[2]),
			port:    uint16(port),
			pub:     pub,
			logger:  logger,
			client: &dns.Client{
				Net:       string(proto),
				TLSConfig: tlsConfig,
			},
		})
	}

	return upstreams, nil
}

// Upstream handles the exchanging of DNS requests with the
// upstream server for a specific request.
type Upstream struct {
	address net.IP
	port    uint16

	// proto indicates the transport to use for the upstream server:
	// "udp", "tcp" or "tcp-tls"
	proto Protocol

	client *dns.Client
	pub    *event.Publisher
	logger Logger
}

func (u *Upstream) String() string {
	return fmt.Sprintf(
		"%s://%s",
		u.proto,
		u.addr(),
	)
}

func (u *Upstream) addr() string {
	return net.JoinHostPort(
		u.address.String(),
		strconv.Itoa(int(u.port)),
	)
}

// Intercept exchanges the request with the upstream server and writes
// the response back to the client. It never passes the request further
// down the pipeline.
func (u *Upstream) Intercept(
	ctx context.Context,
	req *Request,
) (s *Request, cont bool) {
	select {
	case <-ctx.Done():
		return
	default:
		resp, rtt, err := u.client.ExchangeContext(
			ctx, req.r, u.addr(),
		)
		if err != nil {
			u.pub.ErrorFunc(ctx, func() error {
				return Error{
					Category: UPSTREAM,
					Server:   u.String(),
					Msg:      "exchange failed",
					Inner:    err,
					Name:     req.String(),
					Client:   req.client,
				}
			})

			return
		}

		u.logger.Debugw(
			"upstream exchange",
			"category", string(UPSTREAM),
			"server", u.String(),
			"name", req.Name(),
			"rtt", rtt,
		)

		err = req.Answer(resp)
		if err != nil {
			u.pub.ErrorFunc(ctx, func() error {
				return Error{
					Category: UPSTREAM,
					Server:   u.String(),
					Msg:      "failed to answer request",
					Inner:    err,
					Name:     req.String(),
					Client:   req.client,
				}
			})
		}

		return
	}
}
