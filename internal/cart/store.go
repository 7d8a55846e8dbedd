// Package cart owns the shopping cart: one entry per product, insertion
// ordered, mirrored to durable storage after every mutation.
package cart

import (
	"context"
	"sync"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/observer"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const StorageKey = "cart"

type Store struct {
	mu        sync.Mutex
	entries   []models.CartEntry
	storage   storage.Storage
	listeners observer.Listeners[[]models.CartEntry]
}

// New restores the cart from storage. Unreadable state is logged and the
// cart starts empty.
func New(ctx context.Context, s storage.Storage) *Store {
	st := &Store{storage: s}
	st.load(ctx)
	return st
}

func (s *Store) AddToCart(ctx context.Context, product models.Product) {
	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		s.entries[i].Quantity++
	} else {
		s.entries = append(s.entries, models.CartEntry{Product: product, Quantity: 1})
	}
	s.commit(ctx)
}

// RemoveFromCart drops the whole entry for productID. Unknown ids are ignored.
func (s *Store) RemoveFromCart(ctx context.Context, productID int) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	s.commit(ctx)
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.entries = nil
	s.commit(ctx)
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []models.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Quantity reports how many units of productID are in the cart.
func (s *Store) Quantity(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		return s.entries[i].Quantity
	}
	return 0
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalItems(s.entries)
}

func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPrice(s.entries)
}

// SyncPrices copies current catalog prices onto the matching cart entries.
// Listeners are notified and the cart is saved only when a price changed.
func (s *Store) SyncPrices(ctx context.Context, products []models.Product) {
	prices := make(map[int]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	s.mu.Lock()
	changed := false
	for i := range s.entries {
		price, ok := prices[s.entries[i].Product.ID]
		if ok && price != s.entries[i].Product.Price {
			s.entries[i].Product.Price = price
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	s.commit(ctx)
}

// Subscribe registers fn to receive the cart contents after each mutation.
// Deliveries are serialized, so fn must not mutate the cart.
func (s *Store) Subscribe(fn func([]models.CartEntry)) func() {
	return s.listeners.Subscribe(fn)
}

func (s *Store) indexOf(productID int) int {
	for i := range s.entries {
		if s.entries[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// commit must be called with mu held. It persists the entries, releases mu
// and delivers the snapshot in mutation order.
func (s *Store) commit(ctx context.Context) {
	snapshot := s.snapshot()
	s.save(ctx, snapshot)
	ticket := s.listeners.Ticket()
	s.mu.Unlock()
	s.listeners.Deliver(ticket, snapshot)
}

func (s *Store) snapshot() []models.CartEntry {
	out := make([]models.CartEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) save(ctx context.Context, entries []models.CartEntry) {
	if err := storage.SaveJSON(ctx, s.storage, StorageKey, entries); err != nil {
		logging.FromContext(ctx).With("store", "cart").
			Error("cart_save_error", "reason", "cannot persist cart", "error", err)
	}
}

func (s *Store) load(ctx context.Context) {
	l := logging.FromContext(ctx).With("store", "cart")

	var entries []models.CartEntry
	found, err := storage.LoadJSON(ctx, s.storage, StorageKey, &entries)
	if err != nil {
		l.Error("cart_load_error", "reason", "cannot restore cart", "error", err)
		return
	}
	if !found {
		return
	}
	s.entries = entries
	l.Debug("cart_restored", "entries", len(entries))
}
