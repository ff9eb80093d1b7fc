// Package controller implements the initializer that serves the HTTP proxy of
// the node, alongside the Prometheus handler.
package controller

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.dedis.ch/oracle"
	"go.dedis.ch/oracle/cli"
	"go.dedis.ch/oracle/cli/node"
	"go.dedis.ch/oracle/proxy"
	"go.dedis.ch/oracle/proxy/http"
	"golang.org/x/xerrors"
)

const (
	// ListenFlag is the flag of the serve command holding the address of the
	// proxy.
	ListenFlag = "listen"

	// MetricsFlag is the flag of the serve command holding the path of the
	// Prometheus handler.
	MetricsFlag = "metrics-path"

	defaultAddr = "127.0.0.1:8080"
	defaultProm = "/metrics"
)

var (
	proxyFac func(string) proxy.Proxy = func(addr string) proxy.Proxy {
		return http.NewHTTP(addr)
	}

	defaultRetry = 50
	retryDelay   = 20 * time.Millisecond
)

// NewController returns a new initializer for the proxy.
func NewController() node.Initializer {
	return minimal{}
}

// minimal is an initializer that starts the proxy when the node is served. It
// does nothing for the other commands.
//
// - implements node.Initializer
type minimal struct{}

// SetCommands implements node.Initializer. It adds the flags of the proxy to
// the serve command.
func (minimal) SetCommands(builder node.Builder) {
	builder.SetStartFlags(
		cli.StringFlag{
			Name:  ListenFlag,
			Usage: "the address of the http server",
			Value: defaultAddr,
		},
		cli.StringFlag{
			Name:  MetricsFlag,
			Usage: "the path of the prometheus handler",
			Value: defaultProm,
		},
	)
}

// OnStart implements node.Initializer. It creates, starts and injects the
// proxy if an address is provided.
func (minimal) OnStart(flags cli.Flags, inj node.Injector) error {
	addr := flags.String(ListenFlag)
	if addr == "" {
		return nil
	}

	proxyhttp := proxyFac(addr)

	path := flags.String(MetricsFlag)
	if path != "" {
		registry := prometheus.NewRegistry()

		for _, c := range oracle.PromCollectors {
			err := registry.Register(c)
			if err != nil {
				return xerrors.Errorf("failed to register collector: %v", err)
			}
		}

		proxyhttp.RegisterHandler(path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	go proxyhttp.Listen()

	for i := 0; i < defaultRetry && proxyhttp.GetAddr() == nil; i++ {
		time.Sleep(retryDelay)
	}

	if proxyhttp.GetAddr() == nil {
		proxyhttp.Stop()

		return xerrors.Errorf("failed to start proxy server on '%s'", addr)
	}

	inj.Inject(proxyhttp)

	oracle.Logger.Info().Msgf("proxy listening on %s", proxyhttp.GetAddr())

	return nil
}

// OnStop implements node.Initializer. It stops the proxy if it is running.
func (minimal) OnStop(inj node.Injector) error {
	var p proxy.Proxy

	err := inj.Resolve(&p)
	if err == nil {
		p.Stop()
	}

	return nil
}
