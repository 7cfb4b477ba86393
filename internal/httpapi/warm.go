package httpapi

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Warm builds the choropleth and treemap of every metric concurrently so the
// first request does not pay for geography matching. It stops waiting when
// ctx is done; builds already running finish in the background.
func (s *Server) Warm(ctx context.Context, metrics []string) error {
	log := s.Log.Component("httpapi.warm")
	start := time.Now()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, m := range metrics {
			wg.Add(1)
			go func(metric string) {
				defer wg.Done()
				s.choropleth(metric)
				s.treemap(metric)
			}(m)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		log.WithError(ctx.Err()).Warn("warm-up interrupted")
		return fmt.Errorf("warm views: %w", ctx.Err())
	case <-done:
		log.WithField("metrics", len(metrics)).WithField("duration_ms", time.Since(start).Milliseconds()).Info("views warmed")
		return nil
	}
}
