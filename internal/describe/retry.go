package describe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fentz26/dx/internal/gateway"
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/render"
)

// fetch calls the gateway until it succeeds, fails with a non-transient
// error, or runs out of attempts. Each call gets its own timeout.
func (d *Describer) fetch(ctx context.Context, id ident.ObjectID, trace *render.Trace) (*gateway.Response, error) {
	backoff := d.config.InitialBackoff
	for attempt := 1; ; attempt++ {
		trace.Attempts = attempt

		callCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
		resp, err := d.gateway.Fetch(callCtx, id)
		cancel()

		if err == nil {
			if resp.RequestID != "" {
				trace.RequestIDs = append(trace.RequestIDs, resp.RequestID)
			}
			return resp, nil
		}
		if gerr, ok := gateway.AsError(err); ok && gerr.RequestID != "" {
			trace.RequestIDs = append(trace.RequestIDs, gerr.RequestID)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		err = d.classify(id, err)

		if !gateway.IsRetryable(err) {
			return nil, err
		}
		if attempt >= d.config.MaxAttempts {
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		d.logger.Debug("retrying fetch",
			"id", id.String(),
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if err := d.sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
		if backoff > d.config.MaxBackoff {
			backoff = d.config.MaxBackoff
		}
	}
}

// classify makes sure err carries a gateway kind. A per-call deadline is
// transient; anything else unclassified is treated the same way.
func (d *Describer) classify(id ident.ObjectID, err error) error {
	if gateway.KindOf(err) != nil {
		return err
	}
	msg := ""
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("no response within %s", d.config.Timeout)
	}
	return &gateway.Error{Kind: gateway.ErrTransient, ID: id.String(), Message: msg, Err: err}
}

// sleepContext waits for dur or until ctx is done.
func sleepContext(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
