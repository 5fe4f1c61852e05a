package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// dropLogEvery throttles the backpressure warning: the first drop is logged,
// then one line per this many further drops.
const dropLogEvery = 1000

// Config controls dispatcher buffering behavior.
type Config struct {
	BufferSize int
	// DropIfFull makes Emit non-blocking. Events that do not fit are counted
	// and logged instead of stalling the lifecycle call.
	DropIfFull bool
	// Logger receives drop warnings and sink panics. Nil means slog.Default.
	Logger *slog.Logger
}

// Dispatcher hands lifecycle events to a sink on one background goroutine.
// A sink failure never reaches the engine call that produced the event.
type Dispatcher struct {
	cfg       Config
	sink      Sink
	log       *slog.Logger
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	panics    atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	d := &Dispatcher{
		cfg:  cfg,
		sink: sink,
		log:  log,
		ch:   make(chan Event, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// deliver isolates one sink call so a panicking sink loses only its event.
func (d *Dispatcher) deliver(event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.panics.Add(1)
			d.log.Error("gorotate: audit sink panicked",
				"event_id", event.ID,
				"event_type", event.EventType,
				"rsid", event.RSID,
				"panic", r,
			)
		}
	}()
	d.sink.Emit(context.Background(), event)
}

// Emit queues event for the sink. It is a no-op after Close.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.drop(event)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.drop(event)
	case <-d.done:
	}
}

func (d *Dispatcher) drop(event Event) {
	n := d.dropped.Add(1)
	if n == 1 || n%dropLogEvery == 0 {
		d.log.Warn("gorotate: audit buffer full, event dropped",
			"event_type", event.EventType,
			"rsid", event.RSID,
			"dropped_total", n,
		)
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped counts events lost to backpressure or caller cancellation.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// SinkPanics counts sink calls that panicked.
func (d *Dispatcher) SinkPanics() uint64 {
	if d == nil {
		return 0
	}
	return d.panics.Load()
}
