package gputex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrLoaderClosed is returned by Submit after Close.
var ErrLoaderClosed = errors.New("loader closed")

// Request is one decode job. ReaderHandle and TrackingHandle are opaque to
// the loader and returned unchanged with the outcome.
type Request struct {
	Name           string
	ReaderHandle   uint64
	TrackingHandle int32
}

// Outcome is the result of one Request: exactly one of Texture and Err is set.
type Outcome struct {
	Request Request
	Texture *Texture
	Err     error
}

// OK reports whether the request succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Reason returns the failure text, or "" on success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Sink receives outcomes. Deliver is called once per request, from worker
// goroutines, possibly concurrently.
type Sink interface {
	Deliver(o Outcome)
}

// Callbacks is a Sink split into success and failure functions, matching
// upload layers that expose one entry point per result. Nil fields are skipped.
type Callbacks struct {
	Loaded func(req Request, tex *Texture)
	Failed func(req Request, reason string)
}

// Deliver implements Sink.
func (c Callbacks) Deliver(o Outcome) {
	if o.Err != nil {
		if c.Failed != nil {
			c.Failed(o.Request, o.Reason())
		}
		return
	}
	if c.Loaded != nil {
		c.Loaded(o.Request, o.Texture)
	}
}

// ChanSink delivers outcomes on a channel. The channel must be drained or
// buffered; workers block on a full channel, and Close waits for them, so a
// consumer must not wait for Close before reading.
type ChanSink chan<- Outcome

// Deliver implements Sink.
func (c ChanSink) Deliver(o Outcome) {
	c <- o
}

// LoaderOptions configures a Loader. Nil uses defaults.
type LoaderOptions struct {
	// Workers is the number of decode goroutines; <= 0 uses runtime.NumCPU().
	Workers int
	// QueueSize is the pending request buffer; <= 0 uses Workers*2.
	QueueSize int
	// Logger receives one record per request; nil discards.
	Logger *slog.Logger
}

// Loader decodes requests on a fixed worker pool.
type Loader struct {
	src  Source
	dec  *Decoder
	sink Sink
	log  *slog.Logger

	mu      sync.RWMutex
	closed  bool
	quit    chan struct{}
	submits sync.WaitGroup
	jobs    chan Request
	wg      sync.WaitGroup

	handles atomic.Int32
}

// NewLoader starts a worker pool reading from src and reporting to sink.
// A nil dec uses NewDecoder(nil).
func NewLoader(src Source, dec *Decoder, sink Sink, opts *LoaderOptions) *Loader {
	if opts == nil {
		opts = &LoaderOptions{}
	}
	if dec == nil {
		dec = NewDecoder(nil)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	queue := opts.QueueSize
	if queue <= 0 {
		queue = workers * 2
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	l := &Loader{
		src:  src,
		dec:  dec,
		sink: sink,
		log:  logger,
		quit: make(chan struct{}),
		jobs: make(chan Request, queue),
	}

	l.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go l.worker()
	}

	return l
}

// NextTrackingHandle returns a new tracking handle, starting at 1.
func (l *Loader) NextTrackingHandle() int32 {
	return l.handles.Add(1)
}

// Submit queues req, blocking while the queue is full. It fails with
// ctx.Err() if ctx ends first, or ErrLoaderClosed once Close has been
// called. Once Submit returns nil the request is reported to the sink
// exactly once.
func (l *Loader) Submit(ctx context.Context, req Request) error {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrLoaderClosed
	}
	l.submits.Add(1)
	l.mu.RUnlock()
	defer l.submits.Done()

	select {
	case l.jobs <- req:
		return nil
	case <-l.quit:
		return ErrLoaderClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting requests, waits for queued ones to be delivered and
// stops the workers. Submit calls blocked on a full queue return
// ErrLoaderClosed. It is safe to call more than once.
func (l *Loader) Close() {
	l.mu.Lock()
	first := !l.closed
	if first {
		l.closed = true
		close(l.quit)
	}
	l.mu.Unlock()

	if first {
		// no sender is left once in-flight submits have returned
		l.submits.Wait()
		close(l.jobs)
	}

	l.wg.Wait()
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for req := range l.jobs {
		l.sink.Deliver(l.process(req))
	}
}

func (l *Loader) process(req Request) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := &Error{Kind: KindFormat, Source: req.Name, Reason: "decoder panicked", Err: fmt.Errorf("%v", r)}
			l.log.Error("texture decoder panicked",
				slog.String("name", req.Name),
				slog.Int("tracking", int(req.TrackingHandle)),
				slog.Any("panic", r),
			)
			out = Outcome{Request: req, Err: err}
		}
	}()

	tex, err := l.dec.Load(l.src, req.Name)
	if err != nil {
		l.log.Warn("texture load failed",
			slog.String("name", req.Name),
			slog.Int("tracking", int(req.TrackingHandle)),
			slog.String("kind", KindOf(err).String()),
			slog.Any("error", err),
		)
		return Outcome{Request: req, Err: err}
	}

	l.log.Debug("texture loaded",
		slog.String("name", req.Name),
		slog.Int("tracking", int(req.TrackingHandle)),
		slog.Uint64("width", uint64(tex.Width())),
		slog.Uint64("height", uint64(tex.Height())),
		slog.String("format", tex.Format().String()),
		slog.Int("bytes", tex.Len()),
	)
	return Outcome{Request: req, Texture: tex}
}
