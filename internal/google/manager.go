package google

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/gmailbox/internal/instrumentation"
	"github.com/teemow/gmailbox/internal/logging"
)

// callbackTimeout is how long an interactive authorization waits for the
// browser redirect before giving up.
const callbackTimeout = 300 * time.Second

// authState is the credential lifecycle state.
type authState int

const (
	stateUnauthenticated authState = iota
	stateRefreshing
	stateAwaitingCallback
	stateAuthenticated
)

// callbackResult is the rendezvous value between the loopback HTTP handler
// and the suspended authorization flow.
type callbackResult struct {
	code string
	err  error
}

// Manager owns the OAuth2 credential lifecycle: it refreshes silently when
// stored refresh material works, and otherwise drives the interactive
// authorization-code flow through a transient loopback listener.
//
// Only one interactive authorization may be in flight per process; a
// concurrent attempt fails fast with ErrAuthorizationInProgress rather than
// binding a second listener to the callback port.
type Manager struct {
	cfg     *oauth2.Config
	store   *TokenStore
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	// Injection points for tests. Defaults: net.Listen, openBrowser,
	// callbackTimeout.
	listen      func(network, addr string) (net.Listener, error)
	openBrowser func(url string) error
	authTimeout time.Duration

	mu    sync.Mutex
	state authState
	token *oauth2.Token
}

// NewManager creates a credential manager bound to the given OAuth config
// and token store.
func NewManager(cfg *oauth2.Config, store *TokenStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:         cfg,
		store:       store,
		logger:      logger,
		listen:      net.Listen,
		openBrowser: openBrowser,
		authTimeout: callbackTimeout,
	}
}

// SetMetrics attaches a metrics recorder. The manager works without one.
func (m *Manager) SetMetrics(metrics *instrumentation.Metrics) {
	m.metrics = metrics
}

// TokenPath returns the file path backing the credential store.
func (m *Manager) TokenPath() string {
	return m.store.Path()
}

// HasCredential reports whether a persisted credential record exists.
// It says nothing about whether the record is still accepted upstream.
func (m *Manager) HasCredential() bool {
	tok, err := m.store.Load()
	return err == nil && tok != nil
}

// Client returns an HTTP client carrying a live credential, suspending on
// the interactive authorization flow when no stored credential can be
// refreshed. The client auto-refreshes and is safe for concurrent use.
//
// ctx governs only the credential acquisition. The returned client
// outlives the call, so its token source is bound to the process lifetime
// rather than ctx; otherwise a cached client would fail every refresh
// with "context canceled" once the originating request ends.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	tok, err := m.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	base := context.Background()
	return oauth2.NewClient(base, m.cfg.TokenSource(base, tok)), nil
}

// ensureToken produces a live token: silent path first, interactive flow
// as the fallback.
func (m *Manager) ensureToken(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	if m.state == stateAwaitingCallback {
		m.mu.Unlock()
		return nil, ErrAuthorizationInProgress
	}
	tok := m.token
	m.mu.Unlock()

	if tok == nil {
		stored, err := m.store.Load()
		if err != nil {
			// A corrupt record is as good as no record; the file is left
			// in place for inspection.
			m.logger.Warn("ignoring unusable credential record", logging.Err(err))
		}
		tok = stored
	}

	if tok != nil {
		fresh, err := m.refresh(ctx, tok)
		if err == nil {
			return fresh, nil
		}
		m.logger.Warn("token refresh rejected, falling back to interactive authorization",
			logging.Err(err))
		m.setUnauthenticated()
	}

	return m.Authorize(ctx)
}

// refresh runs the silent liveness check: it asks the token source for a
// usable access token, which refreshes through the stored refresh material
// when the cached token has expired. A rotated token is persisted.
func (m *Manager) refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	m.mu.Lock()
	m.state = stateRefreshing
	m.mu.Unlock()

	fresh, err := m.cfg.TokenSource(ctx, tok).Token()
	if err != nil {
		m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.StatusError)
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.StatusSuccess)

	if fresh.AccessToken != tok.AccessToken {
		if err := m.store.Save(fresh); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed credential: %w", err)
		}
		m.logger.Debug("persisted rotated credential",
			slog.String("access_token", logging.SanitizeToken(fresh.AccessToken)))
	}

	m.mu.Lock()
	m.state = stateAuthenticated
	m.token = fresh
	m.mu.Unlock()
	return fresh, nil
}

// setUnauthenticated discards the in-memory credential. The persisted
// record is left untouched.
func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	m.state = stateUnauthenticated
	m.token = nil
	m.mu.Unlock()
}

// Authorize runs the interactive authorization-code flow: it opens the
// authorization URL in the user's browser (best effort), listens on the
// loopback callback port, and suspends until the redirect arrives, the
// window elapses, or ctx is cancelled. The exchanged token is persisted
// before this returns.
func (m *Manager) Authorize(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	if m.state == stateAwaitingCallback {
		m.mu.Unlock()
		return nil, ErrAuthorizationInProgress
	}
	m.state = stateAwaitingCallback
	m.mu.Unlock()

	tok, err := m.runAuthorization(ctx)

	m.mu.Lock()
	if err != nil {
		m.state = stateUnauthenticated
		m.token = nil
	} else {
		m.state = stateAuthenticated
		m.token = tok
	}
	m.mu.Unlock()

	if err != nil {
		m.metrics.RecordOAuthAuth(ctx, instrumentation.StatusError)
	} else {
		m.metrics.RecordOAuthAuth(ctx, instrumentation.StatusSuccess)
	}

	return tok, err
}

func (m *Manager) runAuthorization(ctx context.Context) (*oauth2.Token, error) {
	ln, err := m.listen("tcp", CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener on %s: %w", CallbackAddr, err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, callbackHandler(state, results))
	srv := &http.Server{Handler: mux}

	go func() {
		// Serve returns ErrServerClosed on Shutdown/Close; any other error
		// surfaces through the rendezvous so the caller is not left hanging.
		if serveErr := srv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			select {
			case results <- callbackResult{err: fmt.Errorf("callback listener failed: %w", serveErr)}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	}()

	authURL := m.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err := m.openBrowser(authURL); err != nil {
		// Not fatal: the URL is surfaced so the user can open it by hand.
		m.logger.Warn("could not launch browser", logging.Err(err))
	}
	m.logger.Info("waiting for authorization",
		slog.String("url", authURL),
		slog.Duration("timeout", m.authTimeout))

	timer := time.NewTimer(m.authTimeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := m.cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		if err := m.store.Save(tok); err != nil {
			return nil, err
		}
		m.logger.Info("authorization complete",
			slog.String("credentials", m.store.Path()))
		return tok, nil
	case <-timer.C:
		return nil, ErrAuthorizationTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// callbackHandler serves the loopback redirect: it validates the state
// token, extracts the authorization code or provider error, answers the
// browser with a human-readable page, and hands the outcome to the
// suspended flow exactly once.
func callbackHandler(state string, results chan<- callbackResult) http.HandlerFunc {
	deliver := func(res callbackResult) {
		select {
		case results <- res:
		default:
			// A second callback for the same attempt is ignored.
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if errCode := q.Get("error"); errCode != "" {
			writeCallbackPage(w, http.StatusOK, "Authorization failed",
				fmt.Sprintf("The provider reported: %s. You can close this window.", errCode))
			deliver(callbackResult{err: &AuthorizationError{Reason: errCode}})
			return
		}

		if got := q.Get("state"); got != state {
			writeCallbackPage(w, http.StatusBadRequest, "Authorization failed",
				"State mismatch; please retry the authorization.")
			deliver(callbackResult{err: &AuthorizationError{Reason: "state mismatch"}})
			return
		}

		code := q.Get("code")
		if code == "" {
			writeCallbackPage(w, http.StatusBadRequest, "Authorization failed",
				"The callback carried no authorization code.")
			deliver(callbackResult{err: &AuthorizationError{Reason: "missing authorization code"}})
			return
		}

		writeCallbackPage(w, http.StatusOK, "Authorization successful",
			"You can close this window and return to the terminal.")
		deliver(callbackResult{code: code})
	}
}

func writeCallbackPage(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<html><body><h1>%s</h1><p>%s</p></body></html>", title, detail)
}

// openBrowser launches the default browser for the platform.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
