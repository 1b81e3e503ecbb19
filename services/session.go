package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ViewState is the per-login dashboard state: which forms are open, which
// category is selected and which food cards are in edit mode.
type ViewState struct {
	ID                  string        `json:"id"`
	Username            string        `json:"username"`
	LoggedIn            bool          `json:"logged_in"`
	ShowAddItemForm     bool          `json:"show_add_item_form"`
	ShowAddCategoryForm bool          `json:"show_add_category_form"`
	UseAddOns           bool          `json:"use_addons"`
	SelectedCategoryID  *uint         `json:"selected_category_id"`
	EditingFoods        map[uint]bool `json:"editing_foods"`
	ExpiresAt           time.Time     `json:"expires_at"`
}

// ViewPatch carries the optional fields of a view-state update.
type ViewPatch struct {
	ShowAddItemForm     *bool `json:"show_add_item_form"`
	ShowAddCategoryForm *bool `json:"show_add_category_form"`
	UseAddOns           *bool `json:"use_addons"`
	SelectedCategoryID  *uint `json:"selected_category_id"`
}

// SessionStore persists view states. Update applies fn to the stored state
// atomically with respect to other updates of the same session.
type SessionStore interface {
	Save(ctx context.Context, state *ViewState) error
	Get(ctx context.Context, id string) (*ViewState, error)
	Update(ctx context.Context, id string, fn func(*ViewState)) (*ViewState, error)
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps sessions in process; expired entries are dropped
// on access and by Cleanup.
type MemorySessionStore struct {
	sessions map[string]ViewState
	mutex    sync.RWMutex
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]ViewState)}
}

func copyState(s ViewState) ViewState {
	editing := make(map[uint]bool, len(s.EditingFoods))
	for k, v := range s.EditingFoods {
		editing[k] = v
	}
	s.EditingFoods = editing
	if s.SelectedCategoryID != nil {
		id := *s.SelectedCategoryID
		s.SelectedCategoryID = &id
	}
	return s
}

func (m *MemorySessionStore) Save(_ context.Context, state *ViewState) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[state.ID] = copyState(*state)
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*ViewState, error) {
	m.mutex.RLock()
	state, ok := m.sessions[id]
	m.mutex.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(state.ExpiresAt) {
		m.mutex.Lock()
		delete(m.sessions, id)
		m.mutex.Unlock()
		return nil, ErrSessionNotFound
	}
	out := copyState(state)
	return &out, nil
}

func (m *MemorySessionStore) Update(_ context.Context, id string, fn func(*ViewState)) (*ViewState, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(state.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	state = copyState(state)
	fn(&state)
	m.sessions[id] = copyState(state)
	return &state, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, id)
	return nil
}

// Cleanup removes expired sessions until ctx is done.
func (m *MemorySessionStore) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.mutex.Lock()
			for id, s := range m.sessions {
				if now.After(s.ExpiresAt) {
					delete(m.sessions, id)
				}
			}
			m.mutex.Unlock()
		}
	}
}

// RedisSessionStore stores each session as JSON with a TTL matching its
// expiry.
type RedisSessionStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisSessionStore(addr, password string, db int, prefix string) (*RedisSessionStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisSessionStore{rdb: rdb, prefix: prefix}, nil
}

func (r *RedisSessionStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisSessionStore) Save(ctx context.Context, state *ViewState) error {
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionNotFound
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(state.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func decodeState(data []byte) (*ViewState, error) {
	var state ViewState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if state.EditingFoods == nil {
		state.EditingFoods = make(map[uint]bool)
	}
	return &state, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*ViewState, error) {
	data, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeState(data)
}

const maxUpdateAttempts = 5

// Update runs fn inside WATCH/MULTI and retries when another writer touched
// the key in between.
func (r *RedisSessionStore) Update(ctx context.Context, id string, fn func(*ViewState)) (*ViewState, error) {
	key := r.key(id)
	var updated *ViewState

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		state, err := decodeState(data)
		if err != nil {
			return err
		}
		fn(state)

		ttl := time.Until(state.ExpiresAt)
		if ttl <= 0 {
			return ErrSessionNotFound
		}
		encoded, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = state
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update session: still contended after %d attempts", maxUpdateAttempts)
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}

func (r *RedisSessionStore) Close() error {
	return r.rdb.Close()
}

// SessionService applies the view-state transitions on top of a store.
type SessionService struct {
	store SessionStore
	ttl   time.Duration

	endMu sync.RWMutex
	onEnd []func(sessionID string)
}

func NewSessionService(store SessionStore, ttl time.Duration) *SessionService {
	return &SessionService{store: store, ttl: ttl}
}

// Start opens a fresh logged-in session.
func (s *SessionService) Start(ctx context.Context, username string) (*ViewState, error) {
	state := &ViewState{
		ID:           uuid.NewString(),
		Username:     username,
		LoggedIn:     true,
		EditingFoods: make(map[uint]bool),
		ExpiresAt:    time.Now().Add(s.ttl),
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*ViewState, error) {
	return s.store.Get(ctx, id)
}

// OnEnd registers fn to run after a session is ended by logout.
func (s *SessionService) OnEnd(fn func(sessionID string)) {
	s.endMu.Lock()
	defer s.endMu.Unlock()
	s.onEnd = append(s.onEnd, fn)
}

func (s *SessionService) End(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.endMu.RLock()
	hooks := s.onEnd
	s.endMu.RUnlock()
	for _, fn := range hooks {
		fn(id)
	}
	return nil
}

func (s *SessionService) update(ctx context.Context, id string, fn func(*ViewState)) (*ViewState, error) {
	return s.store.Update(ctx, id, fn)
}

func (s *SessionService) Patch(ctx context.Context, id string, p ViewPatch) (*ViewState, error) {
	return s.update(ctx, id, func(v *ViewState) {
		if p.ShowAddItemForm != nil {
			v.ShowAddItemForm = *p.ShowAddItemForm
		}
		if p.ShowAddCategoryForm != nil {
			v.ShowAddCategoryForm = *p.ShowAddCategoryForm
		}
		if p.UseAddOns != nil {
			v.UseAddOns = *p.UseAddOns
		}
		if p.SelectedCategoryID != nil {
			v.SelectedCategoryID = p.SelectedCategoryID
		}
	})
}

// SetEditing toggles edit mode for one food card.
func (s *SessionService) SetEditing(ctx context.Context, id string, foodID uint, editing bool) (*ViewState, error) {
	return s.update(ctx, id, func(v *ViewState) {
		if editing {
			v.EditingFoods[foodID] = true
		} else {
			delete(v.EditingFoods, foodID)
		}
	})
}

// FoodCreated hides the add-item form after a successful create.
func (s *SessionService) FoodCreated(ctx context.Context, id string) error {
	_, err := s.update(ctx, id, func(v *ViewState) { v.ShowAddItemForm = false })
	return err
}

// FoodSaved leaves edit mode for the food that was just updated.
func (s *SessionService) FoodSaved(ctx context.Context, id string, foodID uint) error {
	_, err := s.SetEditing(ctx, id, foodID, false)
	return err
}
