package oauth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/metrics"
)

// blockingClient answers token requests only after release is closed
type blockingClient struct {
	release chan struct{}
	calls   atomic.Int32
	codes   sync.Map
	token   func(code string) string
	err     error
}

func newBlockingClient() *blockingClient {
	return &blockingClient{
		release: make(chan struct{}),
		token:   func(code string) string { return "token-for-" + code },
	}
}

func (c *blockingClient) ExchangeCode(ctx context.Context, tr domain.TokenRequest) (*domain.TokenResponse, error) {
	c.calls.Add(1)
	c.codes.Store(tr.Code, tr)
	<-c.release
	if c.err != nil {
		return nil, c.err
	}
	return &domain.TokenResponse{AccessToken: c.token(tr.Code), TokenType: "bearer"}, nil
}

// recordingStore notes how many callers had already returned when Set ran
type recordingStore struct {
	mu             sync.Mutex
	tokens         []string
	returnedAtSave []int32
	returned       *atomic.Int32
	err            error
	cleared        bool
}

func (s *recordingStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.returned != nil {
		s.returnedAtSave = append(s.returnedAtSave, s.returned.Load())
	}
	if s.err != nil {
		return s.err
	}
	s.tokens = append(s.tokens, token)
	return nil
}

func (s *recordingStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = true
	s.tokens = nil
	return s.err
}

var testCreds = Credentials{ClientID: "access", ClientSecret: "secret", RedirectURI: "imagefeed://auth"}

func TestExchanger_SameCodeSharesOneRequest(t *testing.T) {
	client := newBlockingClient()
	var returned atomic.Int32
	store := &recordingStore{returned: &returned}
	m := metrics.New()
	ex := NewExchanger(client, store, testCreds, m, zerolog.Nop())

	const callers = 5
	results := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ex.Exchange(context.Background(), "C1")
			returned.Add(1)
		}(i)
	}

	assert.Eventually(t, func() bool { return ex.Pending("C1") == callers }, time.Second, time.Millisecond)
	close(client.release)
	wg.Wait()

	assert.Equal(t, int32(1), client.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "token-for-C1", results[i])
	}

	assert.Equal(t, []string{"token-for-C1"}, store.tokens)
	assert.Equal(t, []int32{0}, store.returnedAtSave)
	assert.Zero(t, ex.Pending("C1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OAuthExchanges.WithLabelValues("success")))
	assert.Equal(t, float64(callers-1), testutil.ToFloat64(m.OAuthExchanges.WithLabelValues("joined")))

	req, ok := client.codes.Load("C1")
	require.True(t, ok)
	tr := req.(domain.TokenRequest)
	assert.Equal(t, "access", tr.ClientID)
	assert.Equal(t, "secret", tr.ClientSecret)
	assert.Equal(t, "imagefeed://auth", tr.RedirectURI)
	assert.Equal(t, "authorization_code", tr.GrantType)
}

func TestExchanger_DifferentCodesRunIndependently(t *testing.T) {
	client := newBlockingClient()
	store := &recordingStore{}
	ex := NewExchanger(client, store, testCreds, nil, zerolog.Nop())

	var wg sync.WaitGroup
	got := make(map[string]string)
	var mu sync.Mutex
	for _, code := range []string{"C1", "C2"} {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			token, err := ex.Exchange(context.Background(), code)
			assert.NoError(t, err)
			mu.Lock()
			got[code] = token
			mu.Unlock()
		}(code)
	}

	assert.Eventually(t, func() bool { return client.calls.Load() == 2 }, time.Second, time.Millisecond)
	close(client.release)
	wg.Wait()

	assert.Equal(t, "token-for-C1", got["C1"])
	assert.Equal(t, "token-for-C2", got["C2"])
	assert.Len(t, store.tokens, 2)
}

func TestExchanger_FailureReachesEveryWaiter(t *testing.T) {
	client := newBlockingClient()
	client.err = &domain.StatusError{Code: http.StatusBadRequest}
	store := &recordingStore{}
	ex := NewExchanger(client, store, testCreds, nil, zerolog.Nop())

	const callers = 3
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ex.Exchange(context.Background(), "bad")
		}(i)
	}

	assert.Eventually(t, func() bool { return ex.Pending("bad") == callers }, time.Second, time.Millisecond)
	close(client.release)
	wg.Wait()

	for _, err := range errs {
		var statusErr *domain.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	}
	assert.Empty(t, store.tokens)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestExchanger_CodeReusableAfterCompletion(t *testing.T) {
	client := newBlockingClient()
	close(client.release)
	store := &recordingStore{}
	ex := NewExchanger(client, store, testCreds, nil, zerolog.Nop())

	_, err := ex.Exchange(context.Background(), "C1")
	require.NoError(t, err)
	_, err = ex.Exchange(context.Background(), "C1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), client.calls.Load())
}

func TestExchanger_StoreFailure(t *testing.T) {
	client := newBlockingClient()
	close(client.release)
	store := &recordingStore{err: errors.New("keychain locked")}
	ex := NewExchanger(client, store, testCreds, nil, zerolog.Nop())

	token, err := ex.Exchange(context.Background(), "C1")
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestExchanger_EmptyCode(t *testing.T) {
	client := newBlockingClient()
	ex := NewExchanger(client, &recordingStore{}, testCreds, nil, zerolog.Nop())

	_, err := ex.Exchange(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Zero(t, client.calls.Load())
}

func TestExchanger_CallerCancellation(t *testing.T) {
	client := newBlockingClient()
	store := &recordingStore{}
	ex := NewExchanger(client, store, testCreds, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	cancelled := make(chan error, 1)
	go func() {
		_, err := ex.Exchange(ctx, "C1")
		cancelled <- err
	}()

	var survivor string
	var survivorErr error
	done := make(chan struct{})
	assert.Eventually(t, func() bool { return ex.Pending("C1") == 1 }, time.Second, time.Millisecond)
	go func() {
		defer close(done)
		survivor, survivorErr = ex.Exchange(context.Background(), "C1")
	}()
	assert.Eventually(t, func() bool { return ex.Pending("C1") == 2 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-cancelled, context.Canceled)

	// The request started by the cancelled caller still completes for the other one
	close(client.release)
	<-done
	require.NoError(t, survivorErr)
	assert.Equal(t, "token-for-C1", survivor)
	assert.Equal(t, []string{"token-for-C1"}, store.tokens)
}

func TestExchanger_Logout(t *testing.T) {
	store := &recordingStore{tokens: []string{"abc"}}
	ex := NewExchanger(newBlockingClient(), store, testCreds, nil, zerolog.Nop())

	require.NoError(t, ex.Logout(context.Background()))
	assert.True(t, store.cleared)

	store.err = errors.New("boom")
	err := ex.Logout(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to logout")
}
