package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dhima/client-service/pkg/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of periodic work run by the Engine.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

var specParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Engine runs jobs on cron schedules. Overlapping runs of the same job are
// skipped and panics are recovered.
type Engine struct {
	cron   *cron.Cron
	logger *zap.Logger
	clock  clock.Clock

	mu      sync.Mutex
	ctx     context.Context
	lastRun map[string]JobRun
}

// JobRun records the outcome of the most recent run of a job.
type JobRun struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// NewEngine constructs an engine; call Run to start it.
func NewEngine(logger *zap.Logger) *Engine {
	return NewEngineWithClock(logger, clock.RealClock{})
}

// NewEngineWithClock is NewEngine with an explicit clock for run timestamps.
func NewEngineWithClock(logger *zap.Logger, clk clock.Clock) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "scheduler"))
	cronLog := cronLogger{logger.Sugar()}
	return &Engine{
		cron: cron.New(
			cron.WithParser(specParser),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
			cron.WithLogger(cronLog),
		),
		logger:  logger,
		clock:   clk,
		ctx:     context.Background(),
		lastRun: make(map[string]JobRun),
	}
}

// Schedule registers job to run on spec, e.g. "@every 1m" or "*/30 * * * * *".
func (e *Engine) Schedule(spec string, job Job) error {
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, job.Name(), err)
	}
	_, err := e.cron.AddFunc(spec, func() {
		e.mu.Lock()
		ctx := e.ctx
		e.mu.Unlock()
		_ = e.RunJob(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name(), err)
	}
	e.logger.Info("job scheduled", zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

// RunJob runs job once and records its outcome.
func (e *Engine) RunJob(ctx context.Context, job Job) error {
	started := e.clock.Now()
	err := job.Run(ctx)

	run := JobRun{StartedAt: started, Duration: e.clock.Now().Sub(started)}
	if err != nil {
		run.Error = err.Error()
		e.logger.Warn("job failed", zap.String("job", job.Name()), zap.Error(err))
	} else {
		e.logger.Debug("job completed", zap.String("job", job.Name()), zap.Duration("duration", run.Duration))
	}

	e.mu.Lock()
	e.lastRun[job.Name()] = run
	e.mu.Unlock()
	return err
}

// LastRun returns the most recent run of the named job.
func (e *Engine) LastRun(name string) (JobRun, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	run, ok := e.lastRun[name]
	return run, ok
}

// Run starts the schedule and blocks until ctx is done, then waits for
// running jobs to finish.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()

	e.cron.Start()
	e.logger.Info("scheduler started", zap.Int("jobs", len(e.cron.Entries())))

	<-ctx.Done()
	<-e.cron.Stop().Done()
	e.logger.Info("scheduler stopped")
	return ctx.Err()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
