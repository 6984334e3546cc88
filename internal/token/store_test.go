package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/imagefeed/internal/repository"
	"github.com/joshdurbin/imagefeed/internal/repository/mocks"
)

func TestStore_LazyLoad(t *testing.T) {
	repo := &mocks.TokenRepository{}
	repo.On("LoadToken", mock.Anything).Return("stored", nil).Once()

	store := NewStore(repo, zerolog.Nop())

	token, ok := store.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "stored", token)

	// Served from memory afterwards
	token, ok = store.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "stored", token)

	repo.AssertNumberOfCalls(t, "LoadToken", 1)
}

func TestStore_NotFound(t *testing.T) {
	repo := &mocks.TokenRepository{}
	repo.On("LoadToken", mock.Anything).Return("", repository.ErrTokenNotFound).Once()

	store := NewStore(repo, zerolog.Nop())

	token, ok := store.Token(context.Background())
	assert.False(t, ok)
	assert.Empty(t, token)

	_, ok = store.Token(context.Background())
	assert.False(t, ok)
	repo.AssertNumberOfCalls(t, "LoadToken", 1)
}

func TestStore_LoadErrorRetries(t *testing.T) {
	repo := &mocks.TokenRepository{}
	repo.On("LoadToken", mock.Anything).Return("", errors.New("disk on fire")).Once()
	repo.On("LoadToken", mock.Anything).Return("recovered", nil).Once()

	store := NewStore(repo, zerolog.Nop())

	_, ok := store.Token(context.Background())
	assert.False(t, ok)

	token, ok := store.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "recovered", token)
}

func TestStore_SetThenRead(t *testing.T) {
	repo := &mocks.TokenRepository{}
	repo.On("SaveToken", mock.Anything, "fresh").Return(nil)

	store := NewStore(repo, zerolog.Nop())
	require.NoError(t, store.Set(context.Background(), "fresh"))

	token, ok := store.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "fresh", token)

	// Set marks the store loaded so the repository is never read
	repo.AssertNotCalled(t, "LoadToken", mock.Anything)
}

func TestStore_SetFailureKeepsPrevious(t *testing.T) {
	repo := &mocks.TokenRepository{}
	repo.On("SaveToken", mock.Anything, "first").Return(nil)
	repo.On("SaveToken", mock.Anything, "second").Return(errors.New("read-only"))

	store := NewStore(repo, zerolog.Nop())
	require.NoError(t, store.Set(context.Background(), "first"))

	err := store.Set(context.Background(), "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist token")

	token, _ := store.Token(context.Background())
	assert.Equal(t, "first", token)
}

func TestStore_Clear(t *testing.T) {
	repo := &mocks.TokenRepository{}
	repo.On("SaveToken", mock.Anything, "abc").Return(nil)
	repo.On("DeleteToken", mock.Anything).Return(nil)

	store := NewStore(repo, zerolog.Nop())
	require.NoError(t, store.Set(context.Background(), "abc"))
	require.NoError(t, store.Clear(context.Background()))

	token, ok := store.Token(context.Background())
	assert.False(t, ok)
	assert.Empty(t, token)
	repo.AssertExpectations(t)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	repo := &mocks.TokenRepository{}
	repo.On("LoadToken", mock.Anything).Return("", repository.ErrTokenNotFound).Maybe()
	repo.On("SaveToken", mock.Anything, mock.Anything).Return(nil)

	store := NewStore(repo, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Set(context.Background(), fmt.Sprintf("token-%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			store.Token(context.Background())
		}()
	}
	wg.Wait()

	token, ok := store.Token(context.Background())
	assert.True(t, ok)
	assert.Contains(t, token, "token-")
}
