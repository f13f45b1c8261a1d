// Package sweep runs the registry's idle-expiry pass on a timing wheel.
package sweep

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/RussellLuo/timingwheel"
	"go.uber.org/zap"
)

const (
	defaultTick      = 500 * time.Millisecond
	defaultWheelSize = 64
)

// every is a drift-free periodic schedule.
type every struct {
	interval time.Duration
	last     atomic.Value // time.Time
}

func (e *every) Next(t time.Time) time.Time {
	last, _ := e.last.Load().(time.Time)
	if last.IsZero() {
		last = t
	}
	next := last.Add(e.interval)
	for !next.After(t) {
		next = next.Add(e.interval)
	}
	e.last.Store(next)
	return next
}

// Sweeper calls a task every interval until stopped. Runs never overlap; a
// tick that fires while the previous run is still busy is skipped.
type Sweeper struct {
	interval time.Duration
	task     func()
	logger   *zap.Logger

	tw      *timingwheel.TimingWheel
	timer   *timingwheel.Timer
	running atomic.Bool
	stopped atomic.Bool
	wg      sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// New builds a sweeper; a nil logger disables logging.
func New(interval time.Duration, task func(), logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	tick := defaultTick
	if interval < tick {
		tick = interval
	}
	return &Sweeper{
		interval: interval,
		task:     task,
		logger:   logger,
		tw:       timingwheel.NewTimingWheel(tick, defaultWheelSize),
	}
}

// Start begins scheduling. It is a no-op after the first call.
func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		s.tw.Start()
		s.timer = s.tw.ScheduleFunc(&every{interval: s.interval}, s.run)
		s.logger.Info("sweeper started", zap.Duration("interval", s.interval))
	})
}

// Stop cancels future runs and waits for an in-flight run to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		if s.timer != nil {
			s.timer.Stop()
		}
		s.tw.Stop()
		s.wg.Wait()
		s.logger.Info("sweeper stopped")
	})
}

func (s *Sweeper) run() {
	if s.stopped.Load() {
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("sweep still running, tick skipped")
		return
	}
	s.wg.Add(1)
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("sweep panicked", zap.Any("panic", p), zap.Stack("stack"))
		}
		s.running.Store(false)
		s.wg.Done()
	}()
	s.task()
}
