package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/gmailbox/internal/gmail"
	"github.com/teemow/gmailbox/internal/google"
	"github.com/teemow/gmailbox/internal/instrumentation"
	"github.com/teemow/gmailbox/internal/logging"
)

// ServerContext holds the shared state of the MCP server: the credential
// manager, the lazily created Gmail client, and the ambient logger and
// metrics handed to every tool handler.
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	manager *google.Manager
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	readOnly bool

	mu       sync.RWMutex
	client   *gmail.Client
	shutdown bool
}

// Config configures a ServerContext.
type Config struct {
	// Manager owns the OAuth credential lifecycle. Required.
	Manager *google.Manager

	// Logger receives structured server logs. Defaults to a stderr logger.
	Logger *slog.Logger

	// Metrics records tool and API instrumentation. May be nil.
	Metrics *instrumentation.Metrics

	// ReadOnly disables every tool that mutates the mailbox.
	ReadOnly bool
}

// NewServerContext creates a new server context. The Gmail client is not
// created here: it is built on first use so the server can start without
// credentials and trigger the authorization flow from the first tool call.
func NewServerContext(ctx context.Context, config Config) (*ServerContext, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("credential manager is required")
	}
	if config.Logger == nil {
		config.Logger = logging.NewStderrLogger(false)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		manager: config.Manager,
		logger:  config.Logger,
		metrics: config.Metrics,

		readOnly: config.ReadOnly,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder; may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Manager returns the credential manager.
func (sc *ServerContext) Manager() *google.Manager {
	return sc.manager
}

// ReadOnly reports whether mutating tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// GmailClient returns the Gmail client, creating it on first use. Creation
// runs the full credential path: stored token, silent refresh, or the
// interactive authorization flow when nothing usable exists.
func (sc *ServerContext) GmailClient(ctx context.Context) (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.client != nil {
		return sc.client, nil
	}

	httpClient, err := sc.manager.Client(ctx)
	if err != nil {
		return nil, err
	}

	client, err := gmail.NewClient(sc.ctx, httpClient)
	if err != nil {
		return nil, err
	}
	client.SetMetrics(sc.metrics)
	client.SetLogger(sc.logger)

	sc.client = client
	return client, nil
}

// SetGmailClient sets the Gmail client, replacing any cached one.
func (sc *ServerContext) SetGmailClient(client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.client = client
}

// ResetGmailClient drops the cached client so the next call rebuilds it
// from fresh credentials. Used after a re-authorization.
func (sc *ServerContext) ResetGmailClient() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.client = nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
