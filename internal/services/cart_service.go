package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/storage"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidSize     = errors.New("size not offered for product")
)

const (
	DefaultSessionIdleTTL = 30 * time.Minute
	DefaultMaxSessions    = 10000
)

// CartService owns one cart.Store per session id and gates every quantity
// change through the reconciler before it reaches the store. Stores are a
// cache over the cart blobs: idle ones are dropped and rehydrated on the
// session's next request.
type CartService struct {
	Catalog *catalog.Catalog
	Blobs   storage.BlobStore
	Metrics *metrics.CartMetrics

	// IdleTTL drops stores unused for this long; 0 keeps them.
	IdleTTL time.Duration
	// MaxSessions caps cached stores, dropping the least recently used
	// first; 0 means no cap.
	MaxSessions int
	Now         func() time.Time

	mu        sync.Mutex
	sessions  map[string]*session
	lastSweep time.Time
}

// session pairs a store with the lock that makes a reconciler check and the
// dispatch it gates one step.
type session struct {
	mu      sync.Mutex
	store   *cart.Store
	evicted bool // guarded by mu

	lastUsed time.Time // guarded by CartService.mu
}

func NewCartService(cat *catalog.Catalog, blobs storage.BlobStore, m *metrics.CartMetrics) *CartService {
	return &CartService{
		Catalog:     cat,
		Blobs:       blobs,
		Metrics:     m,
		IdleTTL:     DefaultSessionIdleTTL,
		MaxSessions: DefaultMaxSessions,
		Now:         time.Now,
		sessions:    map[string]*session{},
	}
}

func (s *CartService) cached(sid string, now time.Time) (*session, bool) {
	ss, ok := s.sessions[sid]
	if ok {
		ss.lastUsed = now
	}
	return ss, ok
}

// session returns the cached session, rehydrating its store outside s.mu
// on a miss. When two requests race, the first insert wins.
func (s *CartService) session(ctx context.Context, sid string) *session {
	s.mu.Lock()
	if ss, ok := s.cached(sid, s.Now()); ok {
		s.mu.Unlock()
		return ss
	}
	s.mu.Unlock()

	st := cart.NewStore(ctx, s.Blobs, storage.CartKey(sid))
	st.OnPersistError = func(string, error) { s.Metrics.IncWriteFailure() }

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	if ss, ok := s.cached(sid, now); ok {
		return ss
	}
	ss := &session{store: st, lastUsed: now}
	s.sessions[sid] = ss
	s.evictLocked(now)
	return ss
}

// evictLocked drops expired sessions once per IdleTTL, and the least
// recently used ones whenever the cache is over MaxSessions.
func (s *CartService) evictLocked(now time.Time) {
	over := s.MaxSessions > 0 && len(s.sessions) > s.MaxSessions
	due := s.IdleTTL > 0 && now.Sub(s.lastSweep) >= s.IdleTTL
	if !over && !due {
		return
	}
	if due {
		s.lastSweep = now
		for sid, ss := range s.sessions {
			if now.Sub(ss.lastUsed) >= s.IdleTTL {
				s.dropLocked(sid, ss)
			}
		}
	}
	if s.MaxSessions <= 0 || len(s.sessions) <= s.MaxSessions {
		return
	}
	ids := make([]string, 0, len(s.sessions))
	for sid := range s.sessions {
		ids = append(ids, sid)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.sessions[ids[i]].lastUsed.Before(s.sessions[ids[j]].lastUsed)
	})
	// Trim below the cap so the sort is not repeated on every insert.
	target := s.MaxSessions - s.MaxSessions/10
	for _, sid := range ids {
		if len(s.sessions) <= target {
			break
		}
		s.dropLocked(sid, s.sessions[sid])
	}
}

// dropLocked removes a session nobody holds. Busy sessions are skipped.
func (s *CartService) dropLocked(sid string, ss *session) {
	if !ss.mu.TryLock() {
		return
	}
	ss.evicted = true
	ss.mu.Unlock()
	delete(s.sessions, sid)
}

// CachedSessions reports how many stores are held in memory.
func (s *CartService) CachedSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// lock returns the session's store with its lock held. Callers must unlock.
// A session evicted between lookup and lock is looked up again.
func (s *CartService) lock(ctx context.Context, sid string) (*cart.Store, func()) {
	for {
		ss := s.session(ctx, sid)
		ss.mu.Lock()
		if !ss.evicted {
			return ss.store, ss.mu.Unlock
		}
		ss.mu.Unlock()
	}
}

// Store returns the session's store, rehydrating it on first use.
func (s *CartService) Store(ctx context.Context, sid string) *cart.Store {
	return s.session(ctx, sid).store
}

// WithCart runs fn with the session's store locked against other cart
// operations of the same session.
func (s *CartService) WithCart(ctx context.Context, sid string, fn func(*cart.Store) error) error {
	st, unlock := s.lock(ctx, sid)
	defer unlock()
	return fn(st)
}

func (s *CartService) Reconciler(ctx context.Context, sid string) *cart.Reconciler {
	return cart.NewReconciler(s.Catalog, s.Store(ctx, sid))
}

func (s *CartService) record(cmd cart.Command, res cart.Result) cart.Result {
	s.Metrics.IncMutation(cart.Kind(cmd), res.Outcome.String())
	return res
}

// resolveSize rejects sizes the product does not offer. Products without
// variants always use NoSize.
func resolveSize(p domain.Product, size string) (string, error) {
	size = domain.NormalizeSize(size)
	if !cart.HasVariations(p) {
		return domain.NoSize, nil
	}
	if size == domain.NoSize {
		return p.DefaultSize(), nil
	}
	for _, s := range p.Sizes {
		if domain.NormalizeSize(s) == size {
			return size, nil
		}
	}
	return "", ErrInvalidSize
}

// Add puts up to quantity units in the cart, clamped to the remaining stock.
// A fully clamped request is a NoOp.
func (s *CartService) Add(ctx context.Context, sid string, productID, quantity int, size string) (cart.Result, error) {
	p, ok := s.Catalog.Get(productID)
	if !ok {
		return cart.Result{}, ErrProductNotFound
	}
	size, err := resolveSize(p, size)
	if err != nil {
		return cart.Result{}, err
	}
	st, unlock := s.lock(ctx, sid)
	defer unlock()
	cmd := cart.AddLine{Product: p, Quantity: cart.NewReconciler(s.Catalog, st).ClampAdd(productID, quantity), Size: size}
	if cmd.Quantity <= 0 {
		return s.record(cmd, cart.Result{}), nil
	}
	return s.record(cmd, st.Dispatch(ctx, cmd)), nil
}

func findLine(lines []domain.CartLine, productID int, size string) (domain.CartLine, bool) {
	key := domain.LineKey{ProductID: productID, Size: domain.NormalizeSize(size)}
	for _, l := range lines {
		if l.Key() == key {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

// ChangeQuantity steps a line by delta. Steps that would drop the line to 0
// or push the product past its stock are rejected as NoOp.
func (s *CartService) ChangeQuantity(ctx context.Context, sid string, productID int, size string, delta int) cart.Result {
	st, unlock := s.lock(ctx, sid)
	defer unlock()
	cmd := cart.UpdateQuantity{ProductID: productID, Size: size}
	line, ok := findLine(st.Lines(), productID, size)
	if !ok {
		return s.record(cmd, cart.Result{})
	}
	next, ok := cart.NewReconciler(s.Catalog, st).ClampDelta(productID, line.Quantity, delta)
	if !ok {
		return s.record(cmd, cart.Result{})
	}
	cmd.Quantity = next
	return s.record(cmd, st.Dispatch(ctx, cmd))
}

// SetQuantity overwrites a line's quantity, clamped to the stock the other
// lines of the product leave free. quantity <= 0 removes the line.
func (s *CartService) SetQuantity(ctx context.Context, sid string, productID int, size string, quantity int) cart.Result {
	st, unlock := s.lock(ctx, sid)
	defer unlock()
	cmd := cart.UpdateQuantity{ProductID: productID, Size: size, Quantity: quantity}
	if quantity > 0 {
		line, ok := findLine(st.Lines(), productID, size)
		if !ok {
			return s.record(cmd, cart.Result{})
		}
		cmd.Quantity = min(quantity, cart.NewReconciler(s.Catalog, st).RemainingStockForLine(line))
		// A positive request never removes the line, even when no stock is left.
		if cmd.Quantity < 1 {
			return s.record(cmd, cart.Result{})
		}
	}
	return s.record(cmd, st.Dispatch(ctx, cmd))
}

func (s *CartService) Remove(ctx context.Context, sid string, productID int, size string) cart.Result {
	st, unlock := s.lock(ctx, sid)
	defer unlock()
	cmd := cart.RemoveLine{ProductID: productID, Size: size}
	return s.record(cmd, st.Dispatch(ctx, cmd))
}

func (s *CartService) Clear(ctx context.Context, sid string) cart.Result {
	st, unlock := s.lock(ctx, sid)
	defer unlock()
	cmd := cart.Clear{}
	return s.record(cmd, st.Dispatch(ctx, cmd))
}

type LineView struct {
	domain.CartLine
	Subtotal  string `json:"subtotal"`
	Remaining int    `json:"remaining"`
	AtLimit   bool   `json:"atLimit"`
}

type CartView struct {
	Lines  []LineView      `json:"lines"`
	Count  int             `json:"count"`
	Totals checkout.Totals `json:"totals"`
}

// View is the cart page projection. Totals use standard shipping, the
// default until checkout picks a method.
func (s *CartService) View(ctx context.Context, sid string) CartView {
	st, unlock := s.lock(ctx, sid)
	defer unlock()
	lines := st.Lines()
	r := cart.NewReconciler(s.Catalog, st)
	v := CartView{Lines: make([]LineView, 0, len(lines))}
	for _, l := range lines {
		v.Lines = append(v.Lines, LineView{
			CartLine:  l,
			Subtotal:  l.Subtotal().StringFixed(2),
			Remaining: r.RemainingStockForLine(l),
			AtLimit:   r.IsAtLimit(l),
		})
		v.Count += l.Quantity
	}
	v.Totals = checkout.ComputeTotals(lines, domain.ShippingStandard)
	return v
}

type StockView struct {
	Stock         int  `json:"stock"`
	InCart        int  `json:"inCart"`
	Remaining     int  `json:"remaining"`
	OutOfStock    bool `json:"outOfStock"`
	HasVariations bool `json:"hasVariations"`
}

// StockFor reports a product's stock as seen by one session's cart.
func (s *CartService) StockFor(ctx context.Context, sid string, p domain.Product) StockView {
	r := s.Reconciler(ctx, sid)
	return StockView{
		Stock:         p.Stock,
		InCart:        r.TotalQuantityInCart(p.ID),
		Remaining:     r.RemainingStock(p.ID),
		OutOfStock:    cart.IsOutOfStock(p),
		HasVariations: cart.HasVariations(p),
	}
}
