// Package session owns the signed-in user. The absence of the storage key is
// the logged-out signal.
package session

import (
	"context"
	"sync"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/observer"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const StorageKey = "user"

type Store struct {
	mu        sync.Mutex
	user      models.User
	storage   storage.Storage
	listeners observer.Listeners[models.User]
}

func New(ctx context.Context, s storage.Storage) *Store {
	st := &Store{storage: s, user: models.DefaultUser()}
	st.load(ctx)
	return st
}

// Login merges the supplied fields over the current record and marks the
// user authenticated.
func (s *Store) Login(ctx context.Context, patch models.UserPatch) {
	s.mu.Lock()
	u := patch.Apply(s.user)
	u.IsAuthenticated = true
	s.user = u
	if err := storage.SaveJSON(ctx, s.storage, StorageKey, u); err != nil {
		logging.FromContext(ctx).With("store", "session").
			Error("user_save_error", "reason", "cannot persist user", "error", err)
	}
	s.publish(u)
}

func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = models.DefaultUser()
	u := s.user
	if err := s.storage.RemoveItem(ctx, StorageKey); err != nil {
		logging.FromContext(ctx).With("store", "session").
			Error("user_remove_error", "reason", "cannot remove stored user", "error", err)
	}
	s.publish(u)
}

func (s *Store) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.IsAuthenticated
}

// Snapshot returns the user and its full name read under one lock.
func (s *Store) Snapshot() (models.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, fullName(s.user)
}

// FullName is "first last" when both parts are set, otherwise empty.
func (s *Store) FullName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fullName(s.user)
}

// Subscribe registers fn for the user after each login or logout. Deliveries
// are serialized, so fn must not call Login or Logout.
func (s *Store) Subscribe(fn func(models.User)) func() {
	return s.listeners.Subscribe(fn)
}

func fullName(u models.User) string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return ""
}

// publish must be called with mu held. It releases mu and delivers u in
// mutation order.
func (s *Store) publish(u models.User) {
	ticket := s.listeners.Ticket()
	s.mu.Unlock()
	s.listeners.Deliver(ticket, u)
}

func (s *Store) load(ctx context.Context) {
	l := logging.FromContext(ctx).With("store", "session")

	var u models.User
	found, err := storage.LoadJSON(ctx, s.storage, StorageKey, &u)
	if err != nil {
		l.Error("user_load_error", "reason", "cannot restore user", "error", err)
		return
	}
	if found {
		s.user = u
	}
}
