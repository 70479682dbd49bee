package repository

import (
	"context"
	"testing"
	"time"

	"advisory-service/internal/models"
	"advisory-service/internal/viewstate"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var redisEpoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// ============================================================================
// REDIS VIEW REPOSITORY
// ============================================================================

func TestRedisViewRepository_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)
	repo := NewRedisViewRepository[string, int](client, time.Minute)

	require.NoError(t, repo.Create(ctx, viewstate.New[string, int]("soil-health", "v1", redisEpoch)))

	got, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseIdle, got.Phase)
	assert.Equal(t, "soil-health", got.Page)

	updated, err := repo.Update(ctx, "v1", func(v viewstate.View[string, int]) (viewstate.View[string, int], error) {
		return v.Submit("form", redisEpoch)
	})
	require.NoError(t, err)
	assert.Equal(t, viewstate.PhaseSubmitting, updated.Phase)

	_, err = repo.Update(ctx, "v1", func(v viewstate.View[string, int]) (viewstate.View[string, int], error) {
		return v.Submit("again", redisEpoch)
	})
	assert.ErrorIs(t, err, viewstate.ErrAlreadySubmitting)

	stored, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "form", *stored.Input)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repo.Update(ctx, "missing", func(v viewstate.View[string, int]) (viewstate.View[string, int], error) {
		return v, nil
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRedisViewRepository_ConcurrentWriteForcesRetry(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)
	repo := NewRedisViewRepository[string, int](client, time.Minute)
	require.NoError(t, repo.Create(ctx, viewstate.New[string, int]("soil-health", "v1", redisEpoch)))

	attempts := 0
	_, err := repo.Update(ctx, "v1", func(v viewstate.View[string, int]) (viewstate.View[string, int], error) {
		attempts++
		if attempts == 1 {
			// another request submits between our read and our write
			other, err := v.Submit("other", redisEpoch)
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, other))
		}
		return v.Submit("mine", redisEpoch)
	})

	assert.ErrorIs(t, err, viewstate.ErrAlreadySubmitting, "the retry sees the other submission")
	assert.Equal(t, 2, attempts)

	stored, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "other", *stored.Input)
}

func TestRedisViewRepository_GivesUpUnderContention(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)
	repo := NewRedisViewRepository[string, int](client, time.Minute)
	require.NoError(t, repo.Create(ctx, viewstate.New[string, int]("chatbot", "v1", redisEpoch)))

	attempts := 0
	_, err := repo.Update(ctx, "v1", func(v viewstate.View[string, int]) (viewstate.View[string, int], error) {
		attempts++
		require.NoError(t, repo.Create(ctx, v))
		return v, nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too much contention")
	assert.Equal(t, maxUpdateAttempts, attempts)
}

func TestRedisViewRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	repo := NewRedisViewRepository[string, int](client, time.Minute)
	require.NoError(t, repo.Create(ctx, viewstate.New[string, int]("crop-suggestion", "v1", redisEpoch)))

	assert.Equal(t, time.Minute, mr.TTL("advisory:view:v1"))

	_, err := repo.Update(ctx, "v1", func(v viewstate.View[string, int]) (viewstate.View[string, int], error) {
		return v.Submit("form", redisEpoch)
	})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("advisory:view:v1"), "updates refresh the TTL")

	mr.FastForward(time.Minute + time.Second)
	_, err = repo.Get(ctx, "v1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// ============================================================================
// REDIS CONVERSATION REPOSITORY
// ============================================================================

func TestRedisConversationRepository_CreateAppendGet(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	repo := NewRedisConversationRepository(client, time.Hour)

	require.NoError(t, repo.Create(ctx, &models.Conversation{
		ID:        "c1",
		Language:  "hi",
		CreatedAt: redisEpoch,
		Messages:  []models.Message{{ID: "m1", Text: "Namaste", IsBot: true, Timestamp: redisEpoch}},
	}))
	assert.Equal(t, time.Hour, mr.TTL("advisory:chat:c1"))
	assert.Equal(t, time.Hour, mr.TTL("advisory:chat:c1:messages"))

	require.NoError(t, repo.AppendMessages(ctx, "c1",
		models.Message{ID: "m2", Text: "Which crop?", Timestamp: redisEpoch},
		models.Message{ID: "m3", Text: "Rice", IsBot: true, Intent: models.IntentCrops, Timestamp: redisEpoch},
	))

	conversation, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hi", conversation.Language)
	require.Len(t, conversation.Messages, 3)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{
		conversation.Messages[0].ID, conversation.Messages[1].ID, conversation.Messages[2].ID,
	})
	assert.Equal(t, models.IntentCrops, conversation.Messages[2].Intent)
}

func TestRedisConversationRepository_MissingAndExpired(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	repo := NewRedisConversationRepository(client, time.Minute)

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.AppendMessages(ctx, "missing", models.Message{ID: "m1"}), models.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &models.Conversation{ID: "c1", CreatedAt: redisEpoch}))
	mr.FastForward(30 * time.Second)
	require.NoError(t, repo.AppendMessages(ctx, "c1", models.Message{ID: "m1", Timestamp: redisEpoch}))
	assert.Equal(t, time.Minute, mr.TTL("advisory:chat:c1"), "appending keeps the conversation alive")

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, "c1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRedisConversationRepository_OutageIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	repo := NewRedisConversationRepository(client, time.Minute)

	mr.SetError("ERR backend unavailable")
	_, err := repo.Get(ctx, "c1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}
