package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"enforcement-insights-go/internal/logger"
)

// retryBudget is how many attempt timeouts the retries may spend in total.
const retryBudget = 3

// Fetch downloads a remote table. Each attempt is bounded by timeout.
// Transport errors and 5xx responses are retried with exponential backoff
// for up to retryBudget timeouts; other statuses fail at once.
func Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	log := logger.New().Component("dataset.fetch").WithField("url", url)
	client := &http.Client{Timeout: timeout}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryBudget * timeout

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error: %s", resp.Status)
		}
		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("download failed: %s", resp.Status))
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithField("retry_in", wait.String()).Warn("fetch attempt failed")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	log.WithField("bytes", len(body)).Info("fetched")
	return body, nil
}
