package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aleister1102/changewatch/internal/common"
	"github.com/aleister1102/changewatch/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned by Run when the scheduler was already started.
var ErrAlreadyRunning = errors.New("scheduler is already running")

// CycleFunc runs one check cycle.
type CycleFunc func(ctx context.Context) error

// Scheduler triggers cycles on a cron spec. A trigger that fires while a cycle is still
// running is skipped.
type Scheduler struct {
	spec           string
	runImmediately bool
	cycle          CycleFunc
	logger         zerolog.Logger

	busy    atomic.Bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewScheduler validates the cron spec and creates a Scheduler.
func NewScheduler(cfg config.SchedulerConfig, cycle CycleFunc, logger zerolog.Logger) (*Scheduler, error) {
	if cycle == nil {
		return nil, errors.New("scheduler requires a cycle function")
	}
	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return nil, common.NewValidationError("cron", cfg.Cron, err.Error())
	}
	return &Scheduler{
		spec:           cfg.Cron,
		runImmediately: cfg.RunImmediately,
		cycle:          cycle,
		logger:         logger.With().Str("component", "Scheduler").Logger(),
	}, nil
}

// Run blocks until ctx is done. Cycles receive a context that is not cancelled with
// ctx, so a cycle in progress finishes and persists before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.started = true
	s.mu.Unlock()

	cycleCtx := context.WithoutCancel(ctx)
	c := cron.New(cron.WithLogger(cronLogger{logger: s.logger}))
	if _, err := c.AddFunc(s.spec, func() { s.Trigger(cycleCtx) }); err != nil {
		return common.WrapError(err, "failed to schedule cycle")
	}

	c.Start()
	s.logger.Info().Str("cron", s.spec).Time("next_run", c.Entries()[0].Next).Msg("Scheduler started")

	if s.runImmediately {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.Trigger(cycleCtx)
		}()
	}

	<-ctx.Done()
	s.logger.Info().Msg("Stopping scheduler, waiting for running cycle")
	<-c.Stop().Done()
	s.wg.Wait()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// Trigger runs one cycle unless another is in progress, and reports whether it ran.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("Previous cycle still running, skipping this trigger")
		return false
	}
	defer s.busy.Store(false)

	start := time.Now()
	if err := s.cycle(ctx); err != nil {
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Scheduled cycle failed")
	} else {
		s.logger.Info().Dur("duration", time.Since(start)).Msg("Scheduled cycle completed")
	}
	return true
}

// cronLogger routes cron's internal logging into zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
