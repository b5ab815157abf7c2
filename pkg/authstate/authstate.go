// Package authstate keeps the signed-in user's public profile on the client.
// The session token itself lives only in the HTTP cookie jar.
package authstate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Skotchmaster/storefront/pkg/localstore"
)

const StorageKey = "userInfo"

type Profile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type State struct {
	UserInfo *Profile `json:"userInfo"`
}

func (s State) IsAdmin() bool {
	return s.UserInfo != nil && s.UserInfo.Role == "admin"
}

func (s State) LoggedIn() bool { return s.UserInfo != nil }

type Action interface {
	apply(State) State
}

type SetCredentials struct{ Profile Profile }
type Logout struct{}

func (a SetCredentials) apply(State) State {
	p := a.Profile
	return State{UserInfo: &p}
}

func (Logout) apply(State) State { return State{} }

func Reduce(s State, a Action) State { return a.apply(s) }

type Store struct {
	mu      sync.Mutex
	storage localstore.Storage
	state   State
}

func NewStore(storage localstore.Storage) (*Store, error) {
	s := &Store{storage: storage}

	raw, ok, err := storage.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read user info: %w", err)
	}
	if ok && raw != "" && raw != "null" {
		var p Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode user info: %w", err)
		}
		s.state.UserInfo = &p
	}
	return s, nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.UserInfo == nil {
		return State{}
	}
	p := *s.state.UserInfo
	return State{UserInfo: &p}
}

func (s *Store) IsAdmin() bool { return s.State().IsAdmin() }

// SetCredentials records p as the signed-in user and persists it.
func (s *Store) SetCredentials(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode user info: %w", err)
	}
	if err := s.storage.SetItem(StorageKey, string(b)); err != nil {
		return fmt.Errorf("write user info: %w", err)
	}
	s.state = Reduce(s.state, SetCredentials{Profile: p})
	return nil
}

// Logout forgets the profile. It does not talk to the server.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.RemoveItem(StorageKey); err != nil {
		return fmt.Errorf("remove user info: %w", err)
	}
	s.state = Reduce(s.state, Logout{})
	return nil
}
