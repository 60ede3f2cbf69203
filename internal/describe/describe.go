// Package describe runs the describe pipeline for a batch of raw
// identifiers: parse, fetch, normalize and render. A failure on one
// identifier is captured in its Result and never stops the others.
package describe

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fentz26/dx/internal/gateway"
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/logging"
	"github.com/fentz26/dx/internal/models"
	"github.com/fentz26/dx/internal/normalize"
	"github.com/fentz26/dx/internal/render"
	"github.com/fentz26/dx/internal/scheduler"
)

// Config tunes concurrency and retries.
type Config struct {
	Scheduler      *scheduler.Config
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Required extends the per-class required-field contract.
	Required map[ident.ObjectClass][]string
}

// DefaultConfig returns the default pipeline settings.
func DefaultConfig() Config {
	return Config{
		Scheduler:      scheduler.DefaultConfig(),
		Timeout:        30 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
	}
}

// Recorder stores finished results, e.g. in the local history.
type Recorder interface {
	Record(ctx context.Context, r *Result) error
}

// Observer follows batch progress.
type Observer interface {
	Start(total int)
	Finished(r *Result)
	Stop()
}

// Result is the outcome for one input, in input order.
type Result struct {
	Input      string
	ID         ident.ObjectID
	Descriptor *models.Descriptor
	// Output is the rendered body; empty on failure.
	Output string
	Trace  *render.Trace
	Err    *Error
	// Skipped is set when the batch was cancelled before this input ran or
	// while it was in flight, and for every input after a session failure.
	Skipped bool

	fatal error
}

// OK reports whether the input was described successfully.
func (r *Result) OK() bool {
	return r.Err == nil && r.Descriptor != nil
}

// Status is a one-word outcome: ok, error, fatal or skipped.
func (r *Result) Status() string {
	switch {
	case r.fatal != nil:
		return "fatal"
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "error"
	case r.Descriptor != nil:
		return "ok"
	}
	return "skipped"
}

// Batch is the outcome of DescribeMany.
type Batch struct {
	Results []Result
	// Fatal is set when the session failed and the batch was aborted.
	Fatal error
}

// Exit statuses of a describe invocation.
const (
	ExitOK      = 0
	ExitPartial = 2
	ExitFailed  = 3
	ExitFatal   = 4
)

// ExitStatus maps the batch outcome to a process exit status.
func (b *Batch) ExitStatus() int {
	if b.Fatal != nil {
		return ExitFatal
	}
	ok := 0
	for i := range b.Results {
		if b.Results[i].OK() {
			ok++
		}
	}
	switch {
	case ok == len(b.Results):
		return ExitOK
	case ok == 0:
		return ExitFailed
	default:
		return ExitPartial
	}
}

// Describer runs the pipeline against one gateway.
type Describer struct {
	gateway    gateway.Gateway
	config     Config
	normalizer *normalize.Normalizer
	logger     *slog.Logger
	recorder   Recorder
	observer   Observer
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures a Describer.
type Option func(*Describer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Describer) { d.logger = logger }
}

// WithRecorder stores every finished result.
func WithRecorder(r Recorder) Option {
	return func(d *Describer) { d.recorder = r }
}

// WithObserver reports progress to o.
func WithObserver(o Observer) Option {
	return func(d *Describer) { d.observer = o }
}

// WithSleep replaces the backoff wait.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Describer) { d.sleep = fn }
}

// New creates a Describer. Zero config values take their defaults.
func New(gw gateway.Gateway, cfg Config, opts ...Option) *Describer {
	def := DefaultConfig()
	if cfg.Scheduler == nil {
		cfg.Scheduler = def.Scheduler
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}

	d := &Describer{
		gateway:    gw,
		config:     cfg,
		normalizer: normalize.New(cfg.Required),
		logger:     logging.Discard(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DescribeMany describes every raw identifier and returns one Result per
// input in input order. The returned error is non-nil only for a fatal
// session failure, in which case it equals batch.Fatal.
func (d *Describer) DescribeMany(ctx context.Context, raws []string, opts render.Options) (*Batch, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batch := &Batch{Results: make([]Result, len(raws))}
	if d.observer != nil {
		d.observer.Start(len(raws))
		defer d.observer.Stop()
	}

	var (
		tasks   []scheduler.Task
		indexes []int
		once    sync.Once
	)
	for i, raw := range raws {
		res := &batch.Results[i]
		res.Input = raw
		res.Trace = &render.Trace{Input: raw}

		id, err := ident.Parse(raw)
		if err != nil {
			res.Err = &Error{Input: raw, Category: CategoryParse, Err: err}
			d.finish(res)
			continue
		}
		res.ID = id
		res.Trace.ID = id.String()

		tasks = append(tasks, scheduler.Task{
			Class: id.Class().String(),
			Run: func(ctx context.Context) {
				d.describeOne(ctx, res, opts)
				if res.fatal != nil {
					once.Do(cancel)
				}
				d.finish(res)
			},
		})
		indexes = append(indexes, i)
	}

	sch := scheduler.New(d.config.Scheduler, d.logger)
	started := sch.Run(ctx, tasks)
	for t, ok := range started {
		if !ok {
			res := &batch.Results[indexes[t]]
			res.Skipped = true
			d.logger.Debug("skipped", "input", res.Input)
		}
	}
	d.skipAfterFatal(batch)

	d.record(batch)
	if batch.Fatal != nil {
		return batch, batch.Fatal
	}
	return batch, nil
}

// describeOne runs fetch, normalize and render for a parsed identifier.
func (d *Describer) describeOne(ctx context.Context, res *Result, opts render.Options) {
	start := time.Now()
	resp, err := d.fetch(ctx, res.ID, res.Trace)
	res.Trace.Elapsed = time.Since(start)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrUnauthorized):
			res.fatal = err
		case ctx.Err() != nil:
			res.Skipped = true
		default:
			res.Err = &Error{Input: res.Input, Category: CategoryGateway, Err: err}
		}
		d.logger.Debug("fetch failed", "input", res.Input, "attempts", res.Trace.Attempts, "error", err)
		return
	}

	res.Trace.PayloadBytes = len(resp.Payload)
	if shape, err := normalize.Shape(resp.Payload); err == nil {
		res.Trace.Shape = shape
	}

	desc, err := d.normalizer.Normalize(res.ID.Class(), res.ID, resp.Payload)
	if err != nil {
		res.Err = &Error{Input: res.Input, Category: CategoryNormalize, Err: err}
		d.logger.Debug("normalize failed", "input", res.Input, "kind", res.Err.Kind(), "error", err)
		return
	}
	res.Trace.References = desc.References.All()
	out, err := render.Render(desc, opts)
	if err != nil {
		res.Err = &Error{Input: res.Input, Category: CategoryRender, Err: err}
		return
	}
	res.Descriptor = desc
	res.Output = out
	d.logger.Debug("described",
		"input", res.Input,
		"attempts", res.Trace.Attempts,
		"elapsed", res.Trace.Elapsed,
		"properties", desc.Properties.Keys(),
	)
}

// skipAfterFatal sets batch.Fatal from the first input, in input order, that
// failed the session. Every input after it is reported as skipped, even if
// its fetch completed before the batch was cancelled.
func (d *Describer) skipAfterFatal(batch *Batch) {
	at := -1
	for i := range batch.Results {
		if batch.Results[i].fatal != nil {
			at = i
			break
		}
	}
	if at < 0 {
		return
	}
	batch.Fatal = &FatalError{Input: batch.Results[at].Input, Err: batch.Results[at].fatal}
	for i := at + 1; i < len(batch.Results); i++ {
		res := &batch.Results[i]
		if res.Skipped {
			continue
		}
		res.Skipped = true
		res.fatal = nil
		res.Err = nil
		res.Descriptor = nil
		res.Output = ""
		d.logger.Debug("skipped after session failure", "input", res.Input)
	}
}

func (d *Describer) finish(res *Result) {
	if d.observer != nil {
		d.observer.Finished(res)
	}
}

// record hands every result that ran to the recorder. Failures to record
// are logged and never change the outcome.
func (d *Describer) record(batch *Batch) {
	if d.recorder == nil {
		return
	}
	ctx := context.Background()
	for i := range batch.Results {
		res := &batch.Results[i]
		if res.Skipped {
			continue
		}
		if err := d.recorder.Record(ctx, res); err != nil {
			d.logger.Warn("recording history failed", "input", res.Input, "error", err)
		}
	}
}
