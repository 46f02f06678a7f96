// Package store is the development server's in-memory data layer. Every
// record is scoped to a company; lookups across companies report ErrNotFound.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kiwari-pos/stockroom/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("name already exists")
	ErrNegativeStock = errors.New("quantity would drop below zero")
)

// User is a stored account. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64
	CompanyID    int64
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

// Domain renders the user as the API reports it.
func (u User) Domain() domain.User {
	cid := u.CompanyID
	return domain.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CompanyID: &cid}
}

// Export is a recorded export request.
type Export struct {
	CompanyID int64
	UserID    int64
	Request   domain.ExportRequest
	CreatedAt time.Time
}

type scoped[T any] struct {
	companyID int64
	v         T
}

// Store is safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	users      map[int64]User
	categories map[int64]scoped[domain.Category]
	items      map[int64]scoped[domain.Item]
	labels     map[int64]scoped[domain.Label]
	fees       map[int64]scoped[domain.Fee]
	orders     map[string]scoped[domain.Order]
	exports    []Export
}

func New() *Store {
	return &Store{
		now:        time.Now,
		users:      make(map[int64]User),
		categories: make(map[int64]scoped[domain.Category]),
		items:      make(map[int64]scoped[domain.Item]),
		labels:     make(map[int64]scoped[domain.Label]),
		fees:       make(map[int64]scoped[domain.Fee]),
		orders:     make(map[string]scoped[domain.Order]),
	}
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// nextID hands out ids from one sequence shared by every table. Caller holds s.mu.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (s *Store) CreateUser(_ context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if sameName(existing.Email, u.Email) {
			return User{}, ErrDuplicate
		}
	}
	u.ID = s.nextID()
	u.Email = strings.TrimSpace(u.Email)
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// GetUserByEmail matches case-insensitively.
func (s *Store) GetUserByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if sameName(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *Store) RecordExport(_ context.Context, companyID, userID int64, req domain.ExportRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append(s.exports, Export{CompanyID: companyID, UserID: userID, Request: req, CreatedAt: s.now()})
	return nil
}

// Exports lists the company's recorded export requests, oldest first.
func (s *Store) Exports(companyID int64) []Export {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Export
	for _, e := range s.exports {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out
}
