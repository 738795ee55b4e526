package cart

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	carterrors "go-storefront-checkout/internal/cart/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the single source of truth for cart contents. Every mutation
// runs as one normalize-then-persist-then-notify unit under a per-cart
// lock, so no observer ever sees a partially-updated list.
type Store struct {
	storage  Storage
	rdb      *redis.Client
	logger   *zap.Logger
	validate *validator.Validate
	origin   string

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	subs    map[string]map[int]func([]Item)
	nextSub int
}

type StoreDeps struct {
	Storage Storage
	// Redis carries the cross-instance "cart changed" signal. Optional;
	// without it notifications stay in-process.
	Redis  *redis.Client
	Logger *zap.Logger
}

const changeChannel = "cart.changed"

type changeSignal struct {
	Origin string `json:"origin"`
	CartID string `json:"cartId"`
}

func NewStore(deps StoreDeps) *Store {
	if deps.Storage == nil {
		panic("cart storage cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Store{
		storage:  deps.Storage,
		rdb:      deps.Redis,
		logger:   deps.Logger,
		validate: validator.New(),
		origin:   uuid.NewString(),
		locks:    make(map[string]*sync.Mutex),
		subs:     make(map[string]map[int]func([]Item)),
	}
}

// ========================
// helpers
// ========================

func parseCartID(cartID string) error {
	if _, err := uuid.Parse(cartID); err != nil {
		return carterrors.ErrInvalidCartID
	}
	return nil
}

func (s *Store) cartLock(cartID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[cartID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[cartID] = l
	}
	return l
}

// mutate applies fn to the normalized cart and persists the normalized
// result, then notifies subscribers outside the cart lock.
func (s *Store) mutate(ctx context.Context, cartID string, fn func(items []Item) ([]Item, error)) ([]Item, error) {
	if err := parseCartID(cartID); err != nil {
		return nil, err
	}

	lock := s.cartLock(cartID)
	lock.Lock()

	raw, err := s.storage.Load(ctx, cartID)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	next, err := fn(NormalizeList(raw))
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	next = NormalizeList(next)
	if err := s.storage.Save(ctx, cartID, next); err != nil {
		lock.Unlock()
		return nil, err
	}
	lock.Unlock()

	s.notify(cartID, next)
	s.publishChange(ctx, cartID)
	return next, nil
}

// ========================
// reads
// ========================

// Read loads and normalizes the stored cart. When normalization corrected
// the raw list, the corrected version is persisted back (self-healing on
// read) so storage converges on a well-formed cart.
func (s *Store) Read(ctx context.Context, cartID string) ([]Item, error) {
	if err := parseCartID(cartID); err != nil {
		return nil, err
	}

	lock := s.cartLock(cartID)
	lock.Lock()
	defer lock.Unlock()

	raw, err := s.storage.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	items := NormalizeList(raw)
	if !reflect.DeepEqual(raw, items) {
		if err := s.storage.Save(ctx, cartID, items); err != nil {
			s.logger.Warn("cart self-heal persist failed",
				zap.String("cart_id", cartID), zap.Error(err))
		}
	}
	return items, nil
}

// ========================
// mutations
// ========================

func (s *Store) Write(ctx context.Context, cartID string, items []Item) ([]Item, error) {
	return s.mutate(ctx, cartID, func([]Item) ([]Item, error) {
		return items, nil
	})
}

func (s *Store) AddItem(ctx context.Context, cartID string, req AddItemRequest) ([]Item, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, carterrors.MapValidationError(err)
	}

	return s.mutate(ctx, cartID, func(items []Item) ([]Item, error) {
		return append(items, Item{
			ID:         req.ID,
			Kind:       Kind(req.Kind),
			Title:      req.Title,
			Slug:       req.Slug,
			Price:      req.Price,
			Currency:   req.Currency,
			Brand:      req.Brand,
			CoverImage: req.CoverImage,
			Quantity:   req.Quantity,
		}), nil
	})
}

func (s *Store) UpdateQty(ctx context.Context, cartID, itemID string, req UpdateQtyRequest) ([]Item, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, carterrors.MapValidationError(err)
	}

	return s.mutate(ctx, cartID, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Quantity = req.Quantity
				return items, nil
			}
		}
		return nil, carterrors.ErrItemNotFound
	})
}

func (s *Store) Increment(ctx context.Context, cartID, itemID string) ([]Item, error) {
	return s.mutate(ctx, cartID, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Quantity++
				return items, nil
			}
		}
		return nil, carterrors.ErrItemNotFound
	})
}

// Decrement lowers the quantity by one; reaching zero removes the line.
func (s *Store) Decrement(ctx context.Context, cartID, itemID string) ([]Item, error) {
	return s.mutate(ctx, cartID, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID != itemID {
				continue
			}
			items[i].Quantity--
			if items[i].Quantity <= 0 {
				return append(items[:i], items[i+1:]...), nil
			}
			return items, nil
		}
		return nil, carterrors.ErrItemNotFound
	})
}

func (s *Store) RemoveItem(ctx context.Context, cartID, itemID string) ([]Item, error) {
	return s.mutate(ctx, cartID, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID == itemID {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, carterrors.ErrItemNotFound
	})
}

func (s *Store) Clear(ctx context.Context, cartID string) error {
	if err := parseCartID(cartID); err != nil {
		return err
	}

	lock := s.cartLock(cartID)
	lock.Lock()
	if err := s.storage.Delete(ctx, cartID); err != nil {
		lock.Unlock()
		return err
	}
	lock.Unlock()

	s.notify(cartID, []Item{})
	s.publishChange(ctx, cartID)
	return nil
}

// ========================
// derived helpers
// ========================

// Subtotal sums price×quantity across the list; pending prices count as 0.
func Subtotal(items []Item) float64 {
	total := decimal.Zero
	for _, it := range items {
		if it.Price == nil {
			continue
		}
		line := decimal.NewFromFloat(*it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}

// PhysicalSubtotal sums price×quantity for product and package lines only.
func PhysicalSubtotal(items []Item) float64 {
	physical := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Physical() {
			physical = append(physical, it)
		}
	}
	return Subtotal(physical)
}

func ItemCount(items []Item) int {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return count
}

func PhysicalItemCount(items []Item) int {
	count := 0
	for _, it := range items {
		if it.Physical() {
			count += it.Quantity
		}
	}
	return count
}

// ========================
// change notification
// ========================

// Subscribe registers fn for every mutation of cartID and returns the
// matching unsubscribe. Callbacks receive the full normalized list.
func (s *Store) Subscribe(cartID string, fn func(items []Item)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[cartID] == nil {
		s.subs[cartID] = make(map[int]func([]Item))
	}
	s.subs[cartID][id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[cartID], id)
	}
}

func (s *Store) notify(cartID string, items []Item) {
	s.mu.Lock()
	fns := make([]func([]Item), 0, len(s.subs[cartID]))
	for _, fn := range s.subs[cartID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		snapshot := make([]Item, len(items))
		copy(snapshot, items)
		fn(snapshot)
	}
}

func (s *Store) publishChange(ctx context.Context, cartID string) {
	if s.rdb == nil {
		return
	}
	payload, _ := json.Marshal(changeSignal{Origin: s.origin, CartID: cartID})
	if err := s.rdb.Publish(ctx, changeChannel, payload).Err(); err != nil {
		s.logger.Warn("publish cart change failed",
			zap.String("cart_id", cartID), zap.Error(err))
	}
}

// Listen re-broadcasts change signals from other instances to local
// subscribers. Best effort: a dropped signal only delays the next re-read.
func (s *Store) Listen(ctx context.Context) {
	if s.rdb == nil {
		return
	}

	sub := s.rdb.Subscribe(ctx, changeChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var sig changeSignal
			if err := json.Unmarshal([]byte(msg.Payload), &sig); err != nil {
				continue
			}
			if sig.Origin == s.origin {
				continue
			}

			s.mu.Lock()
			interested := len(s.subs[sig.CartID]) > 0
			s.mu.Unlock()
			if !interested {
				continue
			}

			items, err := s.Read(ctx, sig.CartID)
			if err != nil {
				s.logger.Warn("re-read after remote cart change failed",
					zap.String("cart_id", sig.CartID), zap.Error(err))
				continue
			}
			s.notify(sig.CartID, items)
		}
	}
}
