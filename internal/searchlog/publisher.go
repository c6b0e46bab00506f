package searchlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	id "workcheck/pkg/domain"
	"workcheck/pkg/requestcontext"
)

const defaultInboxSize = 256

// Mirror receives every recorded entry in addition to the store. Used to
// fan the audit trail out to an event stream.
type Mirror interface {
	Publish(ctx context.Context, e *Entry)
}

// Publisher records searches without blocking the request path. Entries go
// through a buffered inbox drained by a single background goroutine; when
// the inbox is full the entry is dropped and counted in the log rather
// than stalling a search response.
type Publisher struct {
	store  Store
	logger *slog.Logger
	mirror Mirror

	inbox     chan *Entry
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// WithMirror fans recorded entries out to an event stream as well.
func WithMirror(m Mirror) PublisherOption {
	return func(p *Publisher) { p.mirror = m }
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		inbox:  make(chan *Entry, defaultInboxSize),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(1)
	go p.run()
	return p
}

// Record enqueues one search for persistence, capturing the client IP and
// User-Agent from the request context. Never blocks.
func (p *Publisher) Record(ctx context.Context, userID id.UserID, employeeID *id.EmployeeID, query string) {
	entry := &Entry{
		ID:         id.SearchLogID(uuid.New()),
		UserID:     userID,
		EmployeeID: employeeID,
		Query:      query,
		IPAddress:  requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		CreatedAt:  time.Now().UTC(),
	}
	select {
	case p.inbox <- entry:
	default:
		p.logger.Warn("search log inbox full, dropping entry",
			"user_id", userID.String(),
		)
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for entry := range p.inbox {
		// Request contexts are gone by the time an entry is drained.
		ctx := context.Background()
		if err := p.store.Append(ctx, entry); err != nil {
			p.logger.Error("failed to persist search log entry",
				"error", err.Error(),
			)
		}
		if p.mirror != nil {
			p.mirror.Publish(ctx, entry)
		}
	}
}

// Close drains the inbox and stops the background goroutine. Call on
// shutdown so queued entries reach the store.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.inbox)
	})
	p.wg.Wait()
}
