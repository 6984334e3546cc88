// Package oauth turns an authorization code into a persisted bearer token
// and builds the URLs of the authorization flow.
package oauth

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/metrics"
)

const grantTypeAuthorizationCode = "authorization_code"

// Credentials identify the application to the authorization server
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type result struct {
	token string
	err   error
}

// exchange is one in-flight token request and the callers waiting on it
type exchange struct {
	waiters []chan result
}

// Exchanger trades authorization codes for tokens. Concurrent calls with the
// same code share a single network request; a different code runs on its own.
type Exchanger struct {
	client  CodeExchanger
	store   TokenWriter
	creds   Credentials
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu       sync.Mutex
	inflight map[string]*exchange
}

// NewExchanger creates an exchanger. m may be nil.
func NewExchanger(client CodeExchanger, store TokenWriter, creds Credentials, m *metrics.Metrics, logger zerolog.Logger) *Exchanger {
	return &Exchanger{
		client:   client,
		store:    store,
		creds:    creds,
		metrics:  m,
		logger:   logger.With().Str("component", "oauth").Logger(),
		inflight: make(map[string]*exchange),
	}
}

// Exchange returns the access token for code. The token is stored before
// any caller is released. A caller whose ctx ends stops waiting, the
// exchange itself continues for the others. Results are sent to waiters in
// the order they joined; the order in which callers return is unspecified.
func (e *Exchanger) Exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("authorization code is required: %w", domain.ErrInvalidRequest)
	}

	ch := make(chan result, 1)

	e.mu.Lock()
	ex, joined := e.inflight[code]
	if joined {
		ex.waiters = append(ex.waiters, ch)
	} else {
		ex = &exchange{waiters: []chan result{ch}}
		e.inflight[code] = ex
	}
	e.mu.Unlock()

	if joined {
		e.observe("joined")
		e.logger.Debug().Msg("joined in-flight exchange")
	} else {
		go e.run(context.WithoutCancel(ctx), code, ex)
	}

	select {
	case r := <-ch:
		return r.token, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Pending returns the number of callers waiting on code
func (e *Exchanger) Pending(code string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ex, ok := e.inflight[code]; ok {
		return len(ex.waiters)
	}
	return 0
}

func (e *Exchanger) run(ctx context.Context, code string, ex *exchange) {
	r := e.request(ctx, code)

	e.mu.Lock()
	delete(e.inflight, code)
	waiters := ex.waiters
	e.mu.Unlock()

	for _, w := range waiters {
		w <- r
	}
}

func (e *Exchanger) request(ctx context.Context, code string) result {
	resp, err := e.client.ExchangeCode(ctx, domain.TokenRequest{
		ClientID:     e.creds.ClientID,
		ClientSecret: e.creds.ClientSecret,
		RedirectURI:  e.creds.RedirectURI,
		Code:         code,
		GrantType:    grantTypeAuthorizationCode,
	})
	if err != nil {
		e.observe("failure")
		e.logger.Error().Err(err).Msg("failed to exchange authorization code")
		return result{err: err}
	}

	if err := e.store.Set(ctx, resp.AccessToken); err != nil {
		e.observe("failure")
		e.logger.Error().Err(err).Msg("failed to store access token")
		return result{err: err}
	}

	e.observe("success")
	e.logger.Info().Msg("authorization code exchanged")
	return result{token: resp.AccessToken}
}

// Logout discards the stored token
func (e *Exchanger) Logout(ctx context.Context) error {
	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	e.logger.Info().Msg("logged out")
	return nil
}

func (e *Exchanger) observe(outcome string) {
	if e.metrics != nil {
		e.metrics.OAuthExchanges.WithLabelValues(outcome).Inc()
	}
}
