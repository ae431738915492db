// Package runner sequences one scheduled run through the pipeline:
// extract, normalize, hand off, load. It owns the run state machine and
// the per-stage retry policy, and reports the terminal status back to the
// external scheduler through the process exit code.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/meta-ads-loader/internal/domain"
	"github.com/ignite/meta-ads-loader/internal/handoff"
	"github.com/ignite/meta-ads-loader/internal/metaads"
	"github.com/ignite/meta-ads-loader/internal/normalize"
	"github.com/ignite/meta-ads-loader/internal/pkg/logger"
	"github.com/ignite/meta-ads-loader/internal/snowflake"
)

// Extractor retrieves every raw insight record for a window.
type Extractor interface {
	GetInsights(ctx context.Context, window domain.TimeWindow) ([]metaads.InsightRecord, error)
}

// Handoff carries a normalized batch across the stage boundary.
type Handoff interface {
	Persist(ctx context.Context, batch *domain.LoadBatch, runID string) (string, error)
	Retrieve(ctx context.Context, token string) (*domain.LoadBatch, error)
	Delete(ctx context.Context, token string) error
}

// Loader writes a batch into the warehouse. The connection behind it is
// scoped to one load attempt and closed on every exit path.
type Loader interface {
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	LoadBatch(ctx context.Context, batch *domain.LoadBatch) (int64, error)
	Close() error
}

// Result is the terminal report of one run.
type Result struct {
	RunID string
	State domain.RunState
	Stage domain.Stage // stage the failure originated in; empty on success
	Rows  int64
	Token string // handoff token, equal to the run ID; resolvable until the batch is loaded or the TTL lapses
	Err   error
}

// Controller drives the run state machine.
type Controller struct {
	extractor Extractor
	handoff   Handoff
	connect   func() (Loader, error)

	loadMaxRetries int
	loadRetryDelay time.Duration
	loadTimeout    time.Duration
}

// New creates a run controller. connect dials a fresh warehouse connection;
// it is re-invoked on each load retry so a dead connection never leaks into
// the next attempt. loadTimeout bounds each load attempt end to end, so a
// hung connect or commit fails the attempt instead of blocking the run
// until the scheduler kills it.
func New(extractor Extractor, handoff Handoff, connect func() (Loader, error), loadMaxRetries int, loadRetryDelay, loadTimeout time.Duration) *Controller {
	if loadMaxRetries <= 0 {
		loadMaxRetries = 3
	}
	if loadRetryDelay <= 0 {
		loadRetryDelay = 5 * time.Second
	}
	if loadTimeout <= 0 {
		loadTimeout = 2 * time.Minute
	}
	return &Controller{
		extractor:      extractor,
		handoff:        handoff,
		connect:        connect,
		loadMaxRetries: loadMaxRetries,
		loadRetryDelay: loadRetryDelay,
		loadTimeout:    loadTimeout,
	}
}

// Run executes the full pipeline for one window. Stages run strictly
// sequentially; a batch reaches the loader only after extraction and
// normalization both succeed for the entire window.
func (c *Controller) Run(ctx context.Context, window domain.TimeWindow) *Result {
	res := &Result{RunID: uuid.NewString(), State: domain.RunPending}

	if err := window.Validate(time.Now()); err != nil {
		return c.fail(res, domain.StageConfig, err)
	}

	res.State = domain.RunExtracting
	logger.Info("run started", "run_id", res.RunID, "window", window.Date())

	records, err := c.extractor.GetInsights(ctx, window)
	if err != nil {
		var apiErr *metaads.APIError
		if errors.As(err, &apiErr) && apiErr.Permanent() {
			return c.fail(res, domain.StageExtract, fmt.Errorf("permanent API error: %w", err))
		}
		return c.fail(res, domain.StageExtract, err)
	}

	batch, err := normalize.Normalize(window, records)
	if err != nil {
		return c.fail(res, domain.StageNormalize, err)
	}

	token, err := c.handoff.Persist(ctx, batch, res.RunID)
	if err != nil {
		return c.fail(res, domain.StageHandoff, err)
	}
	res.Token = token
	res.State = domain.RunExtracted
	logger.Info("batch staged", "run_id", res.RunID, "window", window.Date(), "rows", fmt.Sprintf("%d", len(batch.Rows)))

	return c.load(ctx, res, batch)
}

// ResumeLoad re-runs only the load stage in a fresh process, using the
// handoff token from a prior run whose load failed. An expired token means
// re-extraction is the only way forward.
func (c *Controller) ResumeLoad(ctx context.Context, token string) *Result {
	res := &Result{RunID: token, State: domain.RunExtracted, Token: token}

	batch, err := c.handoff.Retrieve(ctx, token)
	if err != nil {
		if errors.Is(err, handoff.ErrNotFound) {
			return c.fail(res, domain.StageHandoff, fmt.Errorf("token expired, re-extraction required: %w", err))
		}
		return c.fail(res, domain.StageHandoff, err)
	}

	logger.Info("resuming load from staged batch", "run_id", res.RunID, "window", batch.Window.Date(), "rows", fmt.Sprintf("%d", len(batch.Rows)))
	return c.load(ctx, res, batch)
}

// load drives EXTRACTED → LOADING → LOADED. Connection failures are
// retried with backoff against a fresh connection; statement failures are
// fatal immediately since they indicate bad data, not a transient
// condition.
func (c *Controller) load(ctx context.Context, res *Result, batch *domain.LoadBatch) *Result {
	res.State = domain.RunLoading

	var lastErr error
	for attempt := 0; attempt <= c.loadMaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.loadRetryDelay * time.Duration(1<<(attempt-1))
			logger.Warn("retrying warehouse connection",
				"run_id", res.RunID,
				"attempt", fmt.Sprintf("%d/%d", attempt, c.loadMaxRetries),
				"delay", delay.String(),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return c.fail(res, domain.StageLoad, ctx.Err())
			}
		}

		rows, err := c.loadOnce(ctx, batch)
		if err == nil {
			res.Rows = rows
			res.State = domain.RunLoaded
			if delErr := c.handoff.Delete(ctx, res.Token); delErr != nil {
				logger.Warn("failed to release handoff token", "run_id", res.RunID, "error", delErr.Error())
			}
			if rows != int64(len(batch.Rows)) {
				logger.Warn("committed row count differs from batch size",
					"run_id", res.RunID,
					"batch_rows", fmt.Sprintf("%d", len(batch.Rows)),
					"committed", fmt.Sprintf("%d", rows),
				)
			}
			logger.Info("run complete", "run_id", res.RunID, "window", batch.Window.Date(), "rows", fmt.Sprintf("%d", rows))
			return res
		}

		lastErr = err

		var connErr *snowflake.ConnectError
		if !errors.As(err, &connErr) || ctx.Err() != nil {
			// Statement failure or cancellation: fatal now.
			return c.fail(res, domain.StageLoad, err)
		}
	}

	return c.fail(res, domain.StageLoad, fmt.Errorf("warehouse connection retries exhausted: %w", lastErr))
}

// loadOnce performs one complete load attempt on a fresh connection. The
// attempt runs under its own deadline; hitting it surfaces as a statement
// cancellation on that attempt only, leaving the run's context intact for
// the retry loop.
func (c *Controller) loadOnce(ctx context.Context, batch *domain.LoadBatch) (rows int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	loader, err := c.connect()
	if err != nil {
		return 0, err
	}
	defer loader.Close()

	if err := loader.Ping(ctx); err != nil {
		return 0, err
	}
	if err := loader.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	return loader.LoadBatch(ctx, batch)
}

func (c *Controller) fail(res *Result, stage domain.Stage, err error) *Result {
	res.State = domain.RunFailed
	res.Stage = stage
	res.Err = err
	logger.Error("run failed", "run_id", res.RunID, "stage", string(stage), "error", err.Error())
	return res
}
