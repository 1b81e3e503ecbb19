package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestSessionService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(NewMemorySessionStore(), time.Hour)

	state, err := svc.Start(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, state.LoggedIn)
	assert.NotEmpty(t, state.ID)

	catID := uint(3)
	state, err = svc.Patch(ctx, state.ID, ViewPatch{ShowAddItemForm: boolPtr(true), UseAddOns: boolPtr(true), SelectedCategoryID: &catID})
	require.NoError(t, err)
	assert.True(t, state.ShowAddItemForm)
	assert.True(t, state.UseAddOns)
	assert.Equal(t, uint(3), *state.SelectedCategoryID)

	state, err = svc.SetEditing(ctx, state.ID, 7, true)
	require.NoError(t, err)
	assert.True(t, state.EditingFoods[7])

	require.NoError(t, svc.FoodSaved(ctx, state.ID, 7))
	require.NoError(t, svc.FoodCreated(ctx, state.ID))

	state, err = svc.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.False(t, state.EditingFoods[7])
	assert.False(t, state.ShowAddItemForm)
	assert.True(t, state.UseAddOns)

	require.NoError(t, svc.End(ctx, state.ID))
	_, err = svc.Get(ctx, state.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func assertNoLostUpdates(t *testing.T, svc *SessionService, id string, writers int) {
	t.Helper()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, writers+1)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(foodID uint) {
			defer wg.Done()
			_, err := svc.SetEditing(ctx, id, foodID, true)
			errs <- err
		}(uint(100 + i))
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Patch(ctx, id, ViewPatch{ShowAddCategoryForm: boolPtr(true)})
		errs <- err
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	state, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.ShowAddCategoryForm)
	for i := 0; i < writers; i++ {
		assert.True(t, state.EditingFoods[uint(100+i)], "edit flag for food %d lost", 100+i)
	}
}

func TestSessionService_ConcurrentUpdates(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), time.Hour)
	state, err := svc.Start(context.Background(), "admin")
	require.NoError(t, err)

	assertNoLostUpdates(t, svc, state.ID, 50)
}

func TestSessionService_EndRunsHooks(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(NewMemorySessionStore(), time.Hour)
	var ended []string
	svc.OnEnd(func(id string) { ended = append(ended, id) })

	state, err := svc.Start(ctx, "admin")
	require.NoError(t, err)
	require.NoError(t, svc.End(ctx, state.ID))
	assert.Equal(t, []string{state.ID}, ended)

	_, err = svc.Patch(ctx, state.ID, ViewPatch{UseAddOns: boolPtr(true)})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Save(ctx, &ViewState{ID: "old", ExpiresAt: time.Now().Add(-time.Second)}))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Save(ctx, &ViewState{ID: "s", EditingFoods: map[uint]bool{}, ExpiresAt: time.Now().Add(time.Hour)}))

	got, err := store.Get(ctx, "s")
	require.NoError(t, err)
	got.EditingFoods[1] = true

	again, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, again.EditingFoods)
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisSessionStore(addr, "", 0, "test:session:")
	require.NoError(t, err)
	defer store.Close()

	svc := NewSessionService(store, time.Minute)
	state, err := svc.Start(ctx, "admin")
	require.NoError(t, err)

	_, err = svc.SetEditing(ctx, state.ID, 5, true)
	require.NoError(t, err)
	got, err := svc.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.True(t, got.EditingFoods[5])

	// a WATCH conflict means another writer committed, so this many writers
	// plus the patch always fit in the retry budget
	assertNoLostUpdates(t, svc, state.ID, maxUpdateAttempts-1)

	require.NoError(t, svc.End(ctx, state.ID))
	_, err = svc.Get(ctx, state.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
