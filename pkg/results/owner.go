package results

import (
	"log/slog"
	"sync"

	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/fuzz"
)

// UpdateKind selects what an Update does to the store.
type UpdateKind int

const (
	// UpdateUpsert stores Result under Result.Index.
	UpdateUpsert UpdateKind = iota
	// UpdateClear empties the store.
	UpdateClear
)

// Update is a message to the owner loop.
type Update struct {
	Kind   UpdateKind
	Result Result

	applied chan struct{} // closed once applied; set by Sync
}

// Subscriber observes every applied update. It runs on the owner loop and
// must not call back into the Owner's Post or Sync.
type Subscriber func(u Update)

// OwnerOption configures an Owner.
type OwnerOption func(*Owner)

// WithLogger sets the owner's logger.
func WithLogger(l *slog.Logger) OwnerOption {
	return func(o *Owner) { o.logger = l }
}

// WithBuffer sets the update channel capacity.
func WithBuffer(n int) OwnerOption {
	return func(o *Owner) {
		if n >= 0 {
			o.buffer = n
		}
	}
}

// Owner is the single owner of a Store. All mutations travel through Post
// and are applied in order on one goroutine; reads take copies.
type Owner struct {
	updates chan Update
	done    chan struct{}
	buffer  int
	logger  *slog.Logger

	mu    sync.RWMutex // guards store against concurrent readers
	store *Store

	subMu sync.RWMutex
	subs  []Subscriber

	closeMu sync.RWMutex
	closed  bool
}

// NewOwner creates an owner with an empty store and starts its loop.
// Close stops it.
func NewOwner(opts ...OwnerOption) *Owner {
	o := &Owner{
		done:   make(chan struct{}),
		buffer: defaults.ChannelSmall,
		store:  NewStore(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.updates = make(chan Update, o.buffer)
	go o.loop()
	return o
}

func (o *Owner) loop() {
	defer close(o.done)
	for u := range o.updates {
		o.apply(u)
	}
}

func (o *Owner) apply(u Update) {
	if u.applied != nil {
		close(u.applied)
		return
	}

	o.mu.Lock()
	switch u.Kind {
	case UpdateClear:
		o.store.Clear()
	case UpdateUpsert:
		o.store.Upsert(u.Result.Index, u.Result)
	}
	o.mu.Unlock()

	o.logger.Debug("result update applied",
		slog.Int("kind", int(u.Kind)),
		slog.Int("index", u.Result.Index),
		slog.String("state", u.Result.State.String()),
	)

	o.subMu.RLock()
	subs := o.subs
	o.subMu.RUnlock()
	for _, fn := range subs {
		fn(u)
	}
}

// Post queues an update. It blocks while the buffer is full and fails with
// ErrClosed after Close.
func (o *Owner) Post(u Update) error {
	o.closeMu.RLock()
	defer o.closeMu.RUnlock()
	if o.closed {
		return ErrClosed
	}
	o.updates <- u
	return nil
}

// Sync blocks until every update posted before it has been applied.
func (o *Owner) Sync() error {
	applied := make(chan struct{})
	if err := o.Post(Update{applied: applied}); err != nil {
		return err
	}
	<-applied
	return nil
}

// Subscribe registers fn for every update applied from now on.
func (o *Owner) Subscribe(fn Subscriber) {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	o.subs = append(o.subs, fn)
}

// Reset posts a clear. It implements fuzz.Sink.
func (o *Owner) Reset() error {
	return o.Post(Update{Kind: UpdateClear})
}

// Ready posts the initial result for v. It implements fuzz.Sink.
func (o *Owner) Ready(v fuzz.Variant) error {
	return o.Post(Update{Kind: UpdateUpsert, Result: NewReady(v)})
}

// Snapshot returns copies of all applied results in order.
func (o *Owner) Snapshot() []Result {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.store.All()
}

// Get returns a copy of the applied result at index.
func (o *Owner) Get(index int) (Result, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.store.Get(index)
}

// Summary counts applied results per state.
func (o *Owner) Summary() Summary {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.store.Summary()
}

// Close stops accepting updates, drains the queue and waits for the loop.
// It is safe to call more than once.
func (o *Owner) Close() {
	o.closeMu.Lock()
	if !o.closed {
		o.closed = true
		close(o.updates)
	}
	o.closeMu.Unlock()
	<-o.done
}
