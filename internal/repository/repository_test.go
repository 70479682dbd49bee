package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"advisory-service/internal/models"
	"advisory-service/internal/viewstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// VIEW REPOSITORY
// ============================================================================

func TestMemoryViewRepository_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryViewRepository[string, int](time.Minute)

	view := viewstate.New[string, int]("soil-health", "v1", time.Now())
	require.NoError(t, repo.Create(ctx, view))

	got, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseIdle, got.Phase)

	updated, err := repo.Update(ctx, "v1", func(v viewstate.View[string, int]) (viewstate.View[string, int], error) {
		return v.Submit("form", time.Now())
	})
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseSubmitting, updated.Phase)

	_, err = repo.Update(ctx, "v1", func(v viewstate.View[string, int]) (viewstate.View[string, int], error) {
		return v.Submit("again", time.Now())
	})
	assert.ErrorIs(t, err, viewstate.ErrAlreadySubmitting)

	stored, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "form", *stored.Input, "a failed update leaves the view unchanged")
}

func TestMemoryViewRepository_NotFoundAndExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryViewRepository[string, int](time.Minute).(*memoryViewRepository[string, int])

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	require.NoError(t, repo.Create(ctx, viewstate.New[string, int]("chatbot", "v1", clock)))

	clock = clock.Add(2 * time.Minute)
	_, err = repo.Get(ctx, "v1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryViewRepository_ConcurrentSubmitsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryViewRepository[int, int](time.Minute)
	require.NoError(t, repo.Create(ctx, viewstate.New[int, int]("crop-suggestion", "v1", time.Now())))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "v1", func(v viewstate.View[int, int]) (viewstate.View[int, int], error) {
				return v.Submit(i, time.Now())
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, viewstate.ErrAlreadySubmitting))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

// ============================================================================
// CONVERSATION REPOSITORY
// ============================================================================

func TestMemoryConversationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryConversationRepository(time.Minute)

	conversation := &models.Conversation{
		ID:       "c1",
		Language: "english",
		Messages: []models.Message{{ID: "m1", Text: "hello", IsBot: true}},
	}
	require.NoError(t, repo.Create(ctx, conversation))

	require.NoError(t, repo.AppendMessages(ctx, "c1",
		models.Message{ID: "m2", Text: "crop advice?"},
		models.Message{ID: "m3", Text: "Rice", IsBot: true},
	))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "m3", got.Messages[2].ID)

	got.Messages[0].Text = "mutated"
	again, _ := repo.Get(ctx, "c1")
	assert.Equal(t, "hello", again.Messages[0].Text, "callers get a copy")

	assert.ErrorIs(t, repo.AppendMessages(ctx, "nope", models.Message{}), models.ErrNotFound)
	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// ============================================================================
// CONTENT REPOSITORY
// ============================================================================

func TestStaticContentRepository(t *testing.T) {
	repo := NewStaticContentRepository()

	alerts, err := repo.GetAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, "high", alerts[0].Priority)

	alerts[0].Priority = "low"
	fresh, _ := repo.GetAlerts(context.Background())
	assert.Equal(t, "high", fresh[0].Priority)

	tasks, err := repo.GetTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
	assert.Equal(t, "Apply nitrogen fertilizer", tasks[0].Task)
}
