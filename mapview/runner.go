package mapview

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/eringen/atlas/pin"
)

// Backend is the server side of a map session.
type Backend interface {
	AdminStatus(ctx context.Context) (bool, error)
	Login(ctx context.Context, password string) error
	Logout(ctx context.Context) error
	SavePins(ctx context.Context, pins []pin.Pin) error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithNavigate sets the callback invoked when the session leaves the map.
func WithNavigate(fn func(path string)) RunnerOption {
	return func(r *Runner) { r.navigate = fn }
}

// WithLogf replaces the logger used for backend failures.
func WithLogf(fn func(format string, args ...any)) RunnerOption {
	return func(r *Runner) { r.logf = fn }
}

// Runner owns a Session, serializes every event through one goroutine and
// carries out the effects the session returns.
type Runner struct {
	session  *Session
	backend  Backend
	events   chan func(*Session) []Effect
	done     chan struct{}
	navigate func(string)
	logf     func(string, ...any)

	wg      sync.WaitGroup
	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
}

// NewRunner returns a runner for s talking to backend.
func NewRunner(s *Session, backend Backend, opts ...RunnerOption) *Runner {
	r := &Runner{
		session:  s,
		backend:  backend,
		events:   make(chan func(*Session) []Effect, 64),
		done:     make(chan struct{}),
		navigate: func(string) {},
		logf:     log.Printf,
		timers:   make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run mounts the session and processes events until ctx is cancelled.
// In-flight backend calls are waited for before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		close(r.done)
		r.stopTimers()
		r.wg.Wait()
	}()
	r.apply(ctx, r.session.Mount())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-r.events:
			r.apply(ctx, fn(r.session))
		}
	}
}

// Do queues fn to run against the session on the runner goroutine. It
// returns false once the runner has stopped.
func (r *Runner) Do(fn func(*Session) []Effect) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.events <- fn:
		return true
	case <-r.done:
		return false
	}
}

// View runs fn against the session and waits for it to finish. fn must
// not retain the session.
func (r *Runner) View(fn func(*Session)) bool {
	finished := make(chan struct{})
	ok := r.Do(func(s *Session) []Effect {
		defer close(finished)
		fn(s)
		return nil
	})
	if !ok {
		return false
	}
	select {
	case <-finished:
		return true
	case <-r.done:
		return false
	}
}

func (r *Runner) apply(ctx context.Context, effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case CheckAdminStatus:
			r.async(func() func(*Session) []Effect {
				ok, err := r.backend.AdminStatus(ctx)
				if err != nil {
					r.logf("admin status check failed: %v", err)
				}
				return func(s *Session) []Effect { return s.AdminStatusResolved(e.Seq, ok, err) }
			})
		case SubmitLogin:
			r.async(func() func(*Session) []Effect {
				err := r.backend.Login(ctx, e.Password)
				return func(s *Session) []Effect { return s.LoginResolved(e.Seq, err) }
			})
		case SubmitLogout:
			r.async(func() func(*Session) []Effect {
				if err := r.backend.Logout(ctx); err != nil {
					r.logf("logout failed: %v", err)
				}
				return nil
			})
		case PersistPins:
			r.async(func() func(*Session) []Effect {
				err := r.backend.SavePins(ctx, e.Pins)
				if err != nil {
					r.logf("failed to save pins: %v", err)
				}
				return func(s *Session) []Effect { return s.PersistResolved(e.Seq, err) }
			})
		case StartTimer:
			r.startTimer(e)
		case Navigate:
			r.navigate(e.Path)
		}
	}
}

// async runs call off the event loop and posts the returned event, if any.
func (r *Runner) async(call func() func(*Session) []Effect) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if fn := call(); fn != nil {
			r.Do(fn)
		}
	}()
}

func (r *Runner) startTimer(e StartTimer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(e.Delay, func() {
		r.mu.Lock()
		delete(r.timers, t)
		r.mu.Unlock()
		r.Do(func(s *Session) []Effect { return s.TimerFired(e.Timer) })
	})
	r.timers[t] = struct{}{}
}

func (r *Runner) stopTimers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}
