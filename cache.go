package tld

import (
	"context"
	"sync"
	"time"

	"github.com/miekg/dns"
	"go.devnw.com/ttl"
)

// DEFAULTTTL defines the fallback ttl for responses that do not
// provide one.
const DEFAULTTTL = 3600

// NewCache creates the response cache for the forwarding pipeline.
func NewCache(
	ctx context.Context,
	logger Logger,
) (*Cache, error) {
	err := checkNil(ctx, logger)
	if err != nil {
		return nil, err
	}

	return &Cache{
		ctx:    ctx,
		logger: logger,
		cache:  ttl.NewCache[string, *dns.Msg](ctx, time.Minute, false),
	}, nil
}

// Cache is the response cache intercept which attempts to first pull the
// response from the cache if it exists. On a miss the request is passed
// down the pipeline after wrapping its writer; the wrapper stores the
// response on the way back to the client.
type Cache struct {
	ctx    context.Context
	logger Logger
	cache  *ttl.Cache[string, *dns.Msg]
}

func (c *Cache) Intercept(
	ctx context.Context,
	req *Request,
) (*Request, bool) {
	r, ok := c.cache.Get(c.ctx, req.Key())
	if !ok || r == nil {
		// Hook the final response into the cache on its way out
		req.w = &interceptor{
			ctx:    c.ctx,
			cache:  c.cache,
			logger: c.logger,
			req:    req,
			next:   req.w.WriteMsg,
		}

		c.logger.Debugw(
			"cache miss",
			"category", string(CACHE),
			"name", req.Name(),
			"type", dns.Type(req.r.Question[0].Qtype).String(),
			"client", req.client,
		)

		return req, true
	}

	err := req.Answer(r.SetReply(req.r))
	if err != nil {
		c.logger.Errorw(
			"failed to answer from cache",
			"category", string(CACHE),
			"error", err,
			"name", req.Name(),
			"client", req.client,
		)
	}

	return nil, false
}

// interceptor is a Writer that caches the response for future queries so
// that they are not re-requesting an updated answer for a name that has
// already been resolved.
type interceptor struct {
	ctx    context.Context
	cache  *ttl.Cache[string, *dns.Msg]
	logger Logger
	req    *Request
	next   func(*dns.Msg) error
	once   sync.Once
}

func (i *interceptor) WriteMsg(res *dns.Msg) (err error) {
	i.once.Do(func() {
		ttl := time.Second * DEFAULTTTL

		if len(res.Answer) > 0 && res.Answer[0].Header() != nil {
			ttl = time.Second * time.Duration(res.Answer[0].Header().Ttl)
		}

		// Set the cache value with record specific TTL
		err = i.cache.SetTTL(i.ctx, i.req.Key(), res, ttl)
		if err != nil {
			return
		}

		i.logger.Debugw(
			"response cached",
			"category", string(CACHE),
			"name", i.req.Name(),
			"ttl", ttl,
			"client", i.req.client,
		)
	})

	if err != nil {
		return err
	}

	return i.next(res)
}
