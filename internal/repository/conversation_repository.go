package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"advisory-service/internal/models"
	"advisory-service/internal/utils"

	"github.com/redis/go-redis/v9"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	Get(ctx context.Context, id string) (*models.Conversation, error)
	AppendMessages(ctx context.Context, id string, messages ...models.Message) error
}

type memoryConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]memoryEntry[models.Conversation]
	ttl           time.Duration
	now           func() time.Time
}

func NewMemoryConversationRepository(ttl time.Duration) ConversationRepository {
	return &memoryConversationRepository{
		conversations: make(map[string]memoryEntry[models.Conversation]),
		ttl:           ttl,
		now:           time.Now,
	}
}

func (r *memoryConversationRepository) Create(_ context.Context, conversation *models.Conversation) error {
	if conversation.ID == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *conversation
	stored.Messages = append([]models.Message(nil), conversation.Messages...)
	r.conversations[conversation.ID] = memoryEntry[models.Conversation]{value: stored, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *memoryConversationRepository) Get(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.conversations[id]
	if !ok || !r.now().Before(entry.expiresAt) {
		return nil, fmt.Errorf("conversation %s: %w", id, models.ErrNotFound)
	}
	conversation := entry.value
	conversation.Messages = append([]models.Message(nil), entry.value.Messages...)
	return &conversation, nil
}

func (r *memoryConversationRepository) AppendMessages(_ context.Context, id string, messages ...models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.conversations[id]
	if !ok || !r.now().Before(entry.expiresAt) {
		delete(r.conversations, id)
		return fmt.Errorf("conversation %s: %w", id, models.ErrNotFound)
	}
	entry.value.Messages = append(entry.value.Messages, messages...)
	entry.expiresAt = r.now().Add(r.ttl)
	r.conversations[id] = entry
	return nil
}

// redisConversationRepository keeps the header under one key and the messages in a list.
type redisConversationRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisConversationRepository(client *redis.Client, ttl time.Duration) ConversationRepository {
	return &redisConversationRepository{client: client, ttl: ttl}
}

func (r *redisConversationRepository) getConversationKey(id string) string {
	return fmt.Sprintf("advisory:chat:%s", id)
}

func (r *redisConversationRepository) getMessagesKey(id string) string {
	return fmt.Sprintf("advisory:chat:%s:messages", id)
}

func (r *redisConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	if conversation.ID == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	header := *conversation
	header.Messages = nil
	headerData, err := utils.SerializeModel(header)
	if err != nil {
		return fmt.Errorf("failed to serialize conversation: %w", err)
	}

	messageValues, err := serializeMessages(conversation.Messages)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.getConversationKey(conversation.ID), headerData, r.ttl)
		if len(messageValues) > 0 {
			pipe.RPush(ctx, r.getMessagesKey(conversation.ID), messageValues...)
			pipe.Expire(ctx, r.getMessagesKey(conversation.ID), r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store conversation: %w", err)
	}
	return nil
}

func (r *redisConversationRepository) Get(ctx context.Context, id string) (*models.Conversation, error) {
	headerData, err := r.client.Get(ctx, r.getConversationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("conversation %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	var conversation models.Conversation
	if err := utils.DeserializeModel(headerData, &conversation); err != nil {
		return nil, fmt.Errorf("failed to deserialize conversation: %w", err)
	}

	raw, err := r.client.LRange(ctx, r.getMessagesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	conversation.Messages = make([]models.Message, 0, len(raw))
	for _, item := range raw {
		var message models.Message
		if err := utils.DeserializeModel([]byte(item), &message); err != nil {
			return nil, fmt.Errorf("failed to deserialize message: %w", err)
		}
		conversation.Messages = append(conversation.Messages, message)
	}
	return &conversation, nil
}

func (r *redisConversationRepository) AppendMessages(ctx context.Context, id string, messages ...models.Message) error {
	exists, err := r.client.Exists(ctx, r.getConversationKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("conversation %s: %w", id, models.ErrNotFound)
	}

	values, err := serializeMessages(messages)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.getMessagesKey(id), values...)
		pipe.Expire(ctx, r.getMessagesKey(id), r.ttl)
		pipe.Expire(ctx, r.getConversationKey(id), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}
	return nil
}

func serializeMessages(messages []models.Message) ([]any, error) {
	values := make([]any, 0, len(messages))
	for _, message := range messages {
		data, err := utils.SerializeModel(message)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize message: %w", err)
		}
		values = append(values, data)
	}
	return values, nil
}
