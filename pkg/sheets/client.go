package sheets

// SPREADSHEET SINK CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"scrapbot/internal/bot"
)

// Client submits finished booking records to the external spreadsheet
// service. A submission either lands a row with HTTP 200 or fails; the caller
// decides what a failure means for the dialogue.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	maxElapsed time.Duration
	logger     *zap.Logger
}

func NewClient(endpoint, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxElapsed: timeout,
		logger:     logger,
	}
}

// Submit POSTs the record as JSON. Transient failures are retried with capped
// exponential backoff inside the turn's timeout budget; whatever survives the
// budget is reported to the caller.
func (c *Client) Submit(ctx context.Context, rec bot.BookingRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal booking record: %w", err)
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		return nil
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = c.maxElapsed
	retryPolicy.MaxInterval = 2 * time.Second

	err = backoff.RetryNotify(
		attempt,
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			c.logger.Warn("Spreadsheet submission failed, retrying...",
				zap.String("booking_id", rec.BookingID),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return fmt.Errorf("submit booking %s: %w", rec.BookingID, err)
	}

	c.logger.Info("Booking row written to spreadsheet",
		zap.String("booking_id", rec.BookingID))
	return nil
}
