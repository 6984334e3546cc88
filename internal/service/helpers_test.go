package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/imagefeed/internal/domain"
	"github.com/joshdurbin/imagefeed/internal/events"
	"github.com/joshdurbin/imagefeed/internal/metrics"
)

func testPhotos(ids ...string) []domain.Photo {
	result := make([]domain.Photo, len(ids))
	for i, id := range ids {
		result[i] = domain.Photo{ID: id, Width: 300, Height: 200, ThumbImageURL: "thumb/" + id, LargeImageURL: "full/" + id}
	}
	return result
}

func photoIDs(list []domain.Photo) []string {
	result := make([]string, len(list))
	for i, p := range list {
		result[i] = p.ID
	}
	return result
}

func manyPhotos(prefix string, n int) []domain.Photo {
	result := make([]domain.Photo, n)
	for i := range result {
		result[i] = domain.Photo{ID: prefix + string(rune('a'+i%26)) + string(rune('a'+i/26))}
	}
	return result
}

// recorder collects the changes published on a notifier
type recorder[T any] struct {
	bus *events.Bus
	mu  sync.Mutex
	got []T
}

func record[T any](t *testing.T, bus *events.Bus, n *events.Notifier[T]) *recorder[T] {
	t.Helper()
	r := &recorder[T]{bus: bus}
	n.Subscribe(func(v T) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.got = append(r.got, v)
	})
	return r
}

// events waits for queued deliveries and returns what was received
func (r *recorder[T]) events(t *testing.T) []T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.bus.Sync(ctx))

	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.got...)
}

func newTestBus(t *testing.T) (*events.Bus, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	bus := events.NewBus(m, zerolog.Nop())
	t.Cleanup(bus.Close)
	return bus, m
}
