package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.atomizer.io/stream"
	"go.devnw.com/alog"
	"go.devnw.com/event"
	"go.hostcheck.dev/tld"
)

var serve = &cobra.Command{
	Use:   "serve",
	Short: "run the validating DNS forwarder",
	RunE:  serveExec,
}

func init() {
	serve.Flags().Uint16P(
		"port",
		"p",
		53,
		"DNS listening port",
	)

	serve.Flags().StringSliceP(
		"upstream",
		"u",
		[]string{
			"tcp-tls://1.1.1.1:853",
			"tcp-tls://1.0.0.1:853",
		},
		"Upstream DNS Servers",
	)

	viper.BindPFlag("DNS.Port", serve.Flags().Lookup("port"))
	viper.BindPFlag("DNS.Upstream", serve.Flags().Lookup("upstream"))

	root.AddCommand(serve)
}

func serveExec(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	pub := event.NewPublisher(ctx)
	logger := tld.ConfigLogger().Sugar()

	if viper.GetBool("verbose") {
		alog.Printc(ctx, pub.ReadEvents(0).Interface())
	}

	alog.Errorc(ctx, pub.ReadErrors(0).Interface())

	f, err := os.Open(viper.GetString("table"))
	if err != nil {
		return err
	}

	table, err := tld.Decode(f)
	f.Close()
	if err != nil {
		return err
	}

	verifier, err := tld.NewVerifier(ctx, pub, logger, table)
	if err != nil {
		return err
	}

	cache, err := tld.NewCache(ctx, logger)
	if err != nil {
		return err
	}

	upstreams := viper.GetStringSlice("DNS.Upstream")
	ups, err := tld.Up(ctx, pub, logger, upstreams...)
	if err != nil {
		return err
	}

	i := &Initializer[*tld.Request, *tld.Request]{pub}

	up := make([]chan<- *tld.Request, 0, len(ups))
	for _, u := range ups {
		toUp := make(chan *tld.Request)
		i.Scale(
			ctx,
			toUp,
			u.Intercept,
		)
		up = append(up, toUp)
	}

	upstreamFan := make(chan *tld.Request)
	go stream.FanOut(ctx, upstreamFan, up...)

	handler, requests := tld.Convert(ctx, logger)

	// Register the handler into the dns server
	dns.HandleFunc(".", handler)

	port := uint16(viper.GetUint("DNS.Port"))
	server := &dns.Server{
		Addr: ":" + strconv.Itoa(int(port)),
		Net:  "udp",
	}

	go stream.Pipe( // Upstream FanOut
		ctx,
		i.Scale( // Verify
			ctx,
			i.Scale( // Cache
				ctx,
				requests,
				cache.Intercept,
			),
			verifier.Intercept,
		),
		upstreamFan,
	)

	fmt.Fprintf(
		os.Stderr,
		"tldcheck listening on port %v; upstream [%s]\n",
		port,
		strings.Join(upstreams, ", "),
	)

	return server.ListenAndServe()
}

type Initializer[T, U any] struct {
	pub *event.Publisher
}

func (i *Initializer[T, U]) Scale(
	ctx context.Context,
	in <-chan T,
	f stream.InterceptFunc[T, U],
) <-chan U {
	s := stream.Scaler[T, U]{
		Wait: time.Millisecond,
		Life: time.Millisecond * 100,
		Fn:   f,
	}

	out, err := s.Exec(ctx, in)
	if err != nil {
		i.pub.ErrorFunc(ctx, func() error {
			return err
		})
	}

	return out
}
