// Package fade runs cancellable linear volume ramps.
//
// At most one ramp runs per target: starting a new one cancels the previous
// ramp before it reads the starting volume, so ramps never interleave.
package fade

import (
	"sync"
	"time"

	"github.com/anisan-cli/trackplayer/log"
	"github.com/anisan-cli/trackplayer/util"
	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"
)

const (
	DefaultDuration = 500 * time.Millisecond
	DefaultInterval = 20 * time.Millisecond
)

// Target is anything with a linear volume in [0, 1].
type Target interface {
	Volume() float64
	SetVolume(v float64) error
}

// Operation is one scheduled ramp.
type Operation struct {
	target     Target
	from, to   float64
	duration   time.Duration
	interval   time.Duration
	onComplete func()

	mu    sync.Mutex
	alive *atomic.Bool
	stop  chan struct{}
	done  chan struct{}
}

// Active reports whether the ramp may still apply volumes or complete.
func (op *Operation) Active() bool {
	return op.alive.Load()
}

// Done is closed when the ramp goroutine exits, whatever the reason.
func (op *Operation) Done() <-chan struct{} {
	return op.done
}

// Target returns the volume target the ramp drives.
func (op *Operation) Target() Target {
	return op.target
}

// Cancel stops the ramp. Once Cancel returns no further volume is applied
// and onComplete is never invoked, unless completion had already begun.
func (op *Operation) Cancel() {
	op.mu.Lock()
	defer op.mu.Unlock()

	if !op.alive.Load() {
		return
	}
	op.alive.Store(false)
	close(op.stop)
}

func (op *Operation) apply(v float64) bool {
	op.mu.Lock()
	defer op.mu.Unlock()

	if !op.alive.Load() {
		return false
	}
	if err := op.target.SetVolume(v); err != nil {
		log.Warnf("fade: set volume %.3f: %v", v, err)
	}
	return true
}

func (op *Operation) finish() {
	op.mu.Lock()
	if !op.alive.Load() {
		op.mu.Unlock()
		return
	}
	op.alive.Store(false)
	close(op.stop)
	op.mu.Unlock()

	if op.onComplete != nil {
		op.onComplete()
	}
}

// Fader schedules ramps and tracks the live one per target.
type Fader struct {
	mu  sync.Mutex
	ops map[Target]*Operation
	wg  conc.WaitGroup
}

func New() *Fader {
	return &Fader{ops: make(map[Target]*Operation)}
}

// Fade ramps target from its current volume to `to` over duration, updating
// every interval. onComplete runs once, on the fader's goroutine, when the
// ramp reaches its end. A non-positive duration applies `to` at once.
func (f *Fader) Fade(target Target, to float64, duration, interval time.Duration, onComplete func()) *Operation {
	if interval <= 0 {
		interval = DefaultInterval
	}

	f.mu.Lock()
	if prev, ok := f.ops[target]; ok {
		prev.Cancel()
	}

	op := &Operation{
		target:     target,
		from:       target.Volume(),
		to:         util.Clamp(to, 0, 1),
		duration:   duration,
		interval:   interval,
		onComplete: onComplete,
		alive:      atomic.NewBool(true),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	f.ops[target] = op
	f.mu.Unlock()

	log.Debugf("fade: %.3f -> %.3f over %s every %s", op.from, op.to, duration, interval)
	f.wg.Go(func() { f.run(op) })
	return op
}

// Cancel stops the ramp running on target, if any.
func (f *Fader) Cancel(target Target) {
	f.mu.Lock()
	op, ok := f.ops[target]
	delete(f.ops, target)
	f.mu.Unlock()

	if ok {
		op.Cancel()
	}
}

// Running returns the live ramp on target.
func (f *Fader) Running(target Target) (*Operation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	op, ok := f.ops[target]
	return op, ok && op.Active()
}

// Close cancels every ramp and waits for their goroutines to exit.
// It must not be called from an onComplete callback.
func (f *Fader) Close() {
	f.mu.Lock()
	ops := f.ops
	f.ops = make(map[Target]*Operation)
	f.mu.Unlock()

	for _, op := range ops {
		op.Cancel()
	}
	f.wg.Wait()
}

func (f *Fader) forget(op *Operation) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ops[op.target] == op {
		delete(f.ops, op.target)
	}
}

func (f *Fader) run(op *Operation) {
	defer close(op.done)
	defer f.forget(op)

	if op.duration <= 0 {
		if op.apply(op.to) {
			op.finish()
		}
		return
	}

	start := time.Now()
	ticker := time.NewTicker(op.interval)
	defer ticker.Stop()

	for {
		select {
		case <-op.stop:
			return
		case <-ticker.C:
		}

		progress := util.Min(1, float64(time.Since(start))/float64(op.duration))
		if !op.apply(op.from + (op.to-op.from)*progress) {
			return
		}

		if progress >= 1 {
			op.finish()
			return
		}
	}
}
