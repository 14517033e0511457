// Package publisher emits audit events to a store, synchronously or through a
// bounded buffer drained by a background goroutine.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	audit "gamelib/pkg/platform/audit"
	"gamelib/pkg/requestcontext"
)

// ErrBufferFull is returned by Emit in async mode when the buffer is saturated.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher records audit events.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer chan queued
	wg     sync.WaitGroup
	once   sync.Once
}

type queued struct {
	ctx   context.Context
	event audit.Event
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan queued, n)
		}
	}
}

// WithLogger logs every event (log_type=audit) and every sink failure.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher writing to store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event, filling in timestamp and request ID from ctx when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if p.logger != nil {
		p.logger.InfoContext(ctx, string(event.Action),
			"event", string(event.Action),
			"log_type", "audit",
			"subject", event.Subject,
			"subject_type", string(event.Action.SubjectType()),
			"request_id", event.RequestID,
		)
	}

	if p.buffer == nil {
		return p.append(ctx, event)
	}

	select {
	case p.buffer <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events and drains the buffer.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for q := range p.buffer {
		_ = p.append(q.ctx, q.event)
	}
}

func (p *Publisher) append(ctx context.Context, event audit.Event) error {
	if p.store == nil {
		return nil
	}
	err := p.store.Append(ctx, event)
	if err != nil && p.logger != nil {
		p.logger.ErrorContext(ctx, "failed to record audit event",
			"event", string(event.Action),
			"request_id", event.RequestID,
			"error", err,
		)
	}
	return err
}
