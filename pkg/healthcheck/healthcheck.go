// Package healthcheck probes the application's liveness endpoint after a
// restart. A failed probe annotates the rollout report; it never blocks
// deployment completion.
package healthcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/mahasewa/ops/pkg/logger"
)

const (
	defaultAttempts = 3
	defaultInterval = 5 * time.Second
	defaultSettle   = 5 * time.Second
)

type CheckerConfig struct {
	URL string `validate:"required,url"`

	// Attempts bounds the probe count, fixed interval between them; no
	// exponential backoff.
	Attempts int
	Interval time.Duration

	// Settle is waited once before the first probe so the restarted process
	// can bind its port. Zero takes the default; negative disables the wait.
	Settle time.Duration
}

type Checker struct {
	config CheckerConfig
	client *resty.Client
}

type Result struct {
	Healthy    bool   `json:"healthy"`
	StatusCode int    `json:"status_code,omitempty"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
}

func NewChecker(conf CheckerConfig) (*Checker, error) {
	err := validator.New().Struct(conf)
	if err != nil {
		return nil, fmt.Errorf("health checker config invalid: %w", err)
	}

	if conf.Attempts <= 0 {
		conf.Attempts = defaultAttempts
	}
	if conf.Interval <= 0 {
		conf.Interval = defaultInterval
	}
	if conf.Settle == 0 {
		conf.Settle = defaultSettle
	} else if conf.Settle < 0 {
		conf.Settle = 0
	}

	return &Checker{
		config: conf,
		client: resty.New(),
	}, nil
}

// Check waits the settle delay, then probes up to Attempts times. The context
// is honored between waits so an operator abort does not hang mid-probe.
func (c *Checker) Check(ctx context.Context) Result {
	result := Result{}

	if err := sleepCtx(ctx, c.config.Settle); err != nil {
		result.Error = err.Error()
		return result
	}

	for attempt := 1; attempt <= c.config.Attempts; attempt++ {
		result.Attempts = attempt

		resp, err := c.client.R().SetContext(ctx).Get(c.config.URL)
		if err == nil && resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
			result.Healthy = true
			result.StatusCode = resp.StatusCode()
			result.Error = ""
			return result
		}

		if err != nil {
			result.Error = err.Error()
		} else {
			result.StatusCode = resp.StatusCode()
			result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode())
		}

		logger.Warn(ctx, "health probe attempt failed",
			logger.KV("url", c.config.URL),
			logger.KV("attempt", attempt),
			logger.KV("error", result.Error),
		)

		if attempt < c.config.Attempts {
			if err := sleepCtx(ctx, c.config.Interval); err != nil {
				result.Error = err.Error()
				return result
			}
		}
	}

	return result
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
