package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Skotchmaster/storefront/pkg/localstore"
)

// Store holds the current cart and writes the item list to storage after
// every dispatched action.
type Store struct {
	mu      sync.Mutex
	storage localstore.Storage
	state   State
}

// NewStore rehydrates the item list from storage. Totals start at zero until
// RecomputeTotals runs.
func NewStore(storage localstore.Storage) (*Store, error) {
	s := &Store{storage: storage, state: State{CartItems: []LineItem{}}}

	raw, ok, err := storage.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if ok && raw != "" {
		var items []LineItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("decode cart: %w", err)
		}
		if items != nil {
			s.state.CartItems = items
		}
	}
	return s, nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Reduce(s.state, noop{})
}

// Dispatch applies a and persists the resulting item list. The in-memory
// state is only replaced once the write succeeds.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.state, a)
	if err := s.persist(next.CartItems); err != nil {
		return s.state, err
	}
	s.state = next
	return Reduce(next, noop{}), nil
}

func (s *Store) Add(p Product) (State, error) { return s.Dispatch(Add{Product: p}) }
func (s *Store) Remove(id string) (State, error) { return s.Dispatch(Remove{ID: id}) }
func (s *Store) Decrease(id string) (State, error) { return s.Dispatch(Decrease{ID: id}) }
func (s *Store) Clear() (State, error) { return s.Dispatch(Clear{}) }
func (s *Store) RecomputeTotals() (State, error) { return s.Dispatch(GetTotals{}) }

func (s *Store) persist(items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.SetItem(StorageKey, string(b)); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

type noop struct{}

func (noop) apply(s State) State { return s }
