package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/data/redisStore"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

var ErrUnknownChat = errors.New("unknown chat id")

// RedisSessionStore keeps per chat state under three keys:
// chat:{id} marks the chat, chat:{id}:history is the turn ring and
// chat:{id}:document holds the uploaded text.
type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisSessionStore returns nil when redis is unavailable.
func GetRedisSessionStore(ctx context.Context, opts redisStore.Options) *RedisSessionStore {
	s := redisStore.GetRedisStore(ctx, opts, config.RedisSessionStore)
	if s == nil {
		return nil
	}
	return newRedisSessionStore(s)
}

func newRedisSessionStore(s *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  s,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func TestSessionStore(s *redisStore.Store) *RedisSessionStore {
	return newRedisSessionStore(s)
}

func chatKey(id string) string     { return "chat:" + id }
func historyKey(id string) string  { return "chat:" + id + ":history" }
func documentKey(id string) string { return "chat:" + id + ":document" }

func (s *RedisSessionStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.FromContext(ctx).With("chat Id", chatId)
	log.Debug("validating chatId")
	isFound, err := s.store.Exists(ctx, chatKey(chatId))
	if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisSessionStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.FromContext(ctx).With("chat Id", id)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, historyKey(id), documentKey(id)); err != nil {
		log.Error("Error clearing chat", "error", err)
		return err
	}
	return s.store.Set(ctx, chatKey(id), "1", config.RedisSessionStoreTTL)
}

func (s *RedisSessionStore) AppendTurns(ctx context.Context, chatId string, turns ...commonModels.ChatTurn) error {
	log := s.logger.FromContext(ctx).With("chat Id", chatId)
	if !s.ValidateChatId(ctx, chatId) {
		log.Error("Failed Validation before saving", "err", ErrUnknownChat)
		return ErrUnknownChat
	}

	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, data)
	}
	err := s.store.ListAppendBounded(ctx, historyKey(chatId), config.SessionHistoryLimit, config.RedisSessionStoreTTL, values...)
	if err != nil {
		log.Error("error saving chat", "error", err)
		return err
	}
	if err := s.store.Expire(ctx, chatKey(chatId), config.RedisSessionStoreTTL); err != nil {
		log.Warn("could not refresh chat expiry", "error", err)
	}
	log.Debug("Saved chat turns", "count", len(turns))
	return nil
}

// GetHistory returns up to window of the newest turns, oldest first.
func (s *RedisSessionStore) GetHistory(ctx context.Context, chatId string, window int) ([]commonModels.ChatTurn, error) {
	log := s.logger.FromContext(ctx).With("chat Id", chatId)
	log.Debug("Getting message history")

	raw, err := s.store.ListGetLast(ctx, historyKey(chatId), int64(window))
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	history := make([]commonModels.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var t commonModels.ChatTurn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			log.Warn("skipping unreadable turn", "error", err)
			continue
		}
		history = append(history, t)
	}
	return history, nil
}

func (s *RedisSessionStore) SaveDocument(ctx context.Context, chatId string, doc commonModels.Document) error {
	log := s.logger.FromContext(ctx).With("chat Id", chatId, "document", doc.Name)
	if !s.ValidateChatId(ctx, chatId) {
		return ErrUnknownChat
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, documentKey(chatId), data, config.RedisSessionStoreTTL); err != nil {
		log.Error("error saving document", "error", err)
		return err
	}
	log.Debug("Saved document")
	return nil
}

func (s *RedisSessionStore) GetDocument(ctx context.Context, chatId string) (commonModels.Document, bool, error) {
	var doc commonModels.Document
	val, err := s.store.Get(ctx, documentKey(chatId))
	if s.store.IsNil(err) {
		return doc, false, nil
	} else if err != nil {
		return doc, false, err
	}
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return doc, false, err
	}
	return doc, true, nil
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
