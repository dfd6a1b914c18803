// Package alertfeed keeps a low-stock view fresh. A Feed fetches the items
// that need attention when it is mounted and again on every push signal; it
// never applies deltas.
package alertfeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"supplychain/internal/inventory"
	"supplychain/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrMounted is returned by Mount on a feed that is already mounted
	ErrMounted = errors.New("alert feed already mounted")
	// ErrNotMounted is returned by Refresh on a feed that is not mounted
	ErrNotMounted = errors.New("alert feed not mounted")
	// ErrSubscriptionClosed is recorded when the push channel ends while mounted
	ErrSubscriptionClosed = errors.New("push subscription closed")
)

// Phase is where the feed is in its lifecycle
type Phase int

const (
	Idle Phase = iota
	Loaded
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of the feed. Items is empty unless Phase is Loaded.
type State struct {
	Phase     Phase
	Items     []models.Item
	Err       error
	Live      bool
	UpdatedAt time.Time
}

// Fetcher loads the items to show. It may return every item; the feed keeps
// only those whose derived status needs attention.
type Fetcher func(ctx context.Context) ([]models.Item, error)

// Subscription is an open push channel. Events is closed when it ends.
type Subscription interface {
	Events() <-chan struct{}
	Close() error
}

// Subscriber opens the push channel
type Subscriber func(ctx context.Context) (Subscription, error)

// Feed is the fetch and subscribe lifecycle behind the low-stock alert view.
// Listeners are called one at a time, never after Unmount returns, and must
// not call Mount or Unmount themselves.
type Feed struct {
	fetch     Fetcher
	subscribe Subscriber
	logger    *zap.Logger
	now       func() time.Time

	lifeMu sync.Mutex // serializes Mount and Unmount
	emitMu sync.Mutex // held while a result is applied and announced

	mu         sync.Mutex
	state      State
	listeners  []func(State)
	mounted    bool
	generation uint64
	nextSeq    uint64
	appliedSeq uint64
	ctx        context.Context // fetches; Unmount does not cancel it
	cancel     context.CancelFunc
	sub        Subscription
	loopDone   chan struct{}
}

// New creates an idle feed
func New(fetch Fetcher, subscribe Subscriber, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		fetch:     fetch,
		subscribe: subscribe,
		logger:    logger,
		now:       time.Now,
		state:     State{Phase: Idle, Items: []models.Item{}},
	}
}

// OnChange registers fn to receive every new state
func (f *Feed) OnChange(fn func(State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// State returns the current snapshot
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *Feed) snapshot() State {
	s := f.state
	s.Items = append([]models.Item(nil), f.state.Items...)
	return s
}

// Mount subscribes to the push channel and starts the first fetch. When the
// subscription cannot be opened the feed moves to Error and stays unmounted.
func (f *Feed) Mount(ctx context.Context) error {
	f.lifeMu.Lock()
	defer f.lifeMu.Unlock()

	f.mu.Lock()
	mounted := f.mounted
	f.mu.Unlock()
	if mounted {
		return ErrMounted
	}

	sub, err := f.subscribe(ctx)
	if err != nil {
		err = fmt.Errorf("failed to subscribe: %w", err)
		f.emit(func() bool {
			f.state = State{Phase: Error, Items: []models.Item{}, Err: err, UpdatedAt: f.now()}
			return true
		})
		return err
	}

	mctx, cancel := context.WithCancel(ctx)
	fetchCtx := context.WithoutCancel(mctx)
	loopDone := make(chan struct{})

	f.mu.Lock()
	f.mounted = true
	f.generation++
	f.appliedSeq = f.nextSeq
	f.ctx = fetchCtx
	f.cancel = cancel
	f.sub = sub
	f.loopDone = loopDone
	f.state.Live = true
	gen := f.generation
	f.mu.Unlock()

	go f.listen(mctx, gen, sub, loopDone)
	f.startFetch()
	return nil
}

// Unmount closes the subscription. Fetches still in flight run to completion
// but their results are discarded; no listener is called after Unmount returns.
func (f *Feed) Unmount() {
	f.lifeMu.Lock()
	defer f.lifeMu.Unlock()

	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return
	}
	f.mounted = false
	f.cancel()
	sub, loopDone := f.sub, f.loopDone
	f.sub = nil
	f.mu.Unlock()

	if err := sub.Close(); err != nil {
		f.logger.Debug("failed to close push subscription", zap.Error(err))
	}
	<-loopDone

	// wait out a listener call that started before mounted was cleared
	f.emitMu.Lock()
	f.emitMu.Unlock()
}

// Refresh starts a fetch outside the push cycle, for a manual retry
func (f *Feed) Refresh() error {
	f.mu.Lock()
	mounted := f.mounted
	f.mu.Unlock()
	if !mounted {
		return ErrNotMounted
	}
	f.startFetch()
	return nil
}

func (f *Feed) listen(ctx context.Context, gen uint64, sub Subscription, done chan struct{}) {
	defer close(done)
	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				f.subscriptionLost(gen)
				return
			}
			f.startFetch()
		}
	}
}

func (f *Feed) startFetch() {
	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return
	}
	f.nextSeq++
	seq, gen, ctx := f.nextSeq, f.generation, f.ctx
	f.mu.Unlock()

	go func() {
		items, err := f.fetch(ctx)
		f.apply(gen, seq, items, err)
	}()
}

// apply records a fetch result unless the feed was unmounted since, or a
// later fetch has already been applied.
func (f *Feed) apply(gen, seq uint64, items []models.Item, err error) {
	f.emit(func() bool {
		if !f.mounted || gen != f.generation || seq <= f.appliedSeq {
			return false
		}
		f.appliedSeq = seq
		if err != nil {
			f.logger.Warn("failed to fetch low-stock items", zap.Error(err))
			f.state = State{Phase: Error, Items: []models.Item{}, Err: err, Live: f.state.Live, UpdatedAt: f.now()}
			return true
		}
		f.state = State{Phase: Loaded, Items: inventory.Alerts(items), Live: f.state.Live, UpdatedAt: f.now()}
		return true
	})
}

// subscriptionLost moves a mounted feed to Error. Results of fetches started
// before the loss are dropped; a later Refresh may load again.
func (f *Feed) subscriptionLost(gen uint64) {
	f.emit(func() bool {
		if !f.mounted || gen != f.generation {
			return false
		}
		f.logger.Warn("push subscription closed; alerts are no longer live")
		f.appliedSeq = f.nextSeq
		f.state = State{Phase: Error, Items: []models.Item{}, Err: ErrSubscriptionClosed, UpdatedAt: f.now()}
		return true
	})
}

// emit runs update under the state lock and, if it reports a change,
// announces the new state to every listener.
func (f *Feed) emit(update func() bool) {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	if !update() {
		f.mu.Unlock()
		return
	}
	s := f.snapshot()
	listeners := make([]func(State), len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}
