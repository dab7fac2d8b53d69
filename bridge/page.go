package bridge

import (
	"context"
	"sync"

	"github.com/jonwraymond/wxshell/observe"
)

// DefaultMailboxSize is the mailbox capacity used when none is configured.
const DefaultMailboxSize = 16

// Page is a page-context actor. Messages posted to it are queued in a
// bounded mailbox and handled one at a time by Run.
//
// Contract:
// - Concurrency: PostMessage, Watch and Close are safe for concurrent use.
// - Delivery: at-most-once; PostMessage never blocks and drops on a full mailbox.
type Page struct {
	id        string
	mailbox   chan Message
	persister *Persister
	logger    observe.Logger

	mu       sync.Mutex
	watchers map[chan Message]struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithMailboxSize sets the mailbox capacity.
func WithMailboxSize(n int) PageOption {
	return func(p *Page) {
		if n > 0 {
			p.mailbox = make(chan Message, n)
		}
	}
}

// WithPageLogger sets the logger used for dropped or failed messages.
func WithPageLogger(l observe.Logger) PageOption {
	return func(p *Page) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPage creates the page context id. A nil persister disables persistence.
func NewPage(id string, persister *Persister, opts ...PageOption) (*Page, error) {
	if id == "" {
		return nil, ErrInvalidClientID
	}
	p := &Page{
		id:        id,
		mailbox:   make(chan Message, DefaultMailboxSize),
		persister: persister,
		logger:    observe.NopLogger(),
		watchers:  make(map[chan Message]struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(observe.F("client_id", id))
	return p, nil
}

// ID returns the client id.
func (p *Page) ID() string { return p.id }

// PostMessage queues m without blocking.
func (p *Page) PostMessage(ctx context.Context, m Message) error {
	select {
	case <-p.done:
		return ErrPageClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.mailbox <- m:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Run handles queued messages until ctx ends or the page is closed.
func (p *Page) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case m := <-p.mailbox:
			p.handle(ctx, m)
		}
	}
}

func (p *Page) handle(ctx context.Context, m Message) {
	if p.persister != nil {
		if err := p.persister.Apply(ctx, m); err != nil {
			p.logger.Warn(ctx, "persist relayed message failed",
				observe.F("type", m.Type), observe.F("error", err))
		}
	}
	p.fanOut(ctx, m)
}

// fanOut delivers m to every watcher. A watcher that cannot keep up is
// detached and its channel closed.
func (p *Page) fanOut(ctx context.Context, m Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.watchers {
		select {
		case ch <- m:
		default:
			delete(p.watchers, ch)
			close(ch)
			p.logger.Debug(ctx, "slow watcher dropped")
		}
	}
}

// Watch attaches a watcher receiving every handled message. The returned
// func detaches it; the channel is closed on detach or when the page closes.
func (p *Page) Watch(buffer int) (<-chan Message, func()) {
	if buffer <= 0 {
		buffer = DefaultMailboxSize
	}
	ch := make(chan Message, buffer)

	p.mu.Lock()
	select {
	case <-p.done:
		close(ch)
	default:
		p.watchers[ch] = struct{}{}
	}
	p.mu.Unlock()

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.watchers[ch]; ok {
			delete(p.watchers, ch)
			close(ch)
		}
	}
}

// Watchers returns the number of attached watchers.
func (p *Page) Watchers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watchers)
}

// Close ends the page context. Queued messages are discarded. Idempotent.
func (p *Page) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		close(p.done)
		for ch := range p.watchers {
			delete(p.watchers, ch)
			close(ch)
		}
		p.mu.Unlock()
	})
}

// Done is closed when the page is closed.
func (p *Page) Done() <-chan struct{} { return p.done }

var _ Client = (*Page)(nil)
