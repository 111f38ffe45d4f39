package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("SessionStore").With("backend", "memory")

type session struct {
	history  []commonModels.ChatTurn
	document *commonModels.Document
}

type InMemorySessionStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string]*session
	limit    int
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string]*session),
		limit:    config.SessionHistoryLimit,
	}
}

func (store *InMemorySessionStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemorySessionStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = &session{}
	return nil
}

func (store *InMemorySessionStore) AppendTurns(ctx context.Context, chatId string, turns ...commonModels.ChatTurn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	s, ok := store.chatMap[chatId]
	if !ok {
		return ErrUnknownChat
	}
	s.history = append(s.history, turns...)
	if over := len(s.history) - store.limit; over > 0 {
		s.history = append([]commonModels.ChatTurn(nil), s.history[over:]...)
	}
	inMemLogger.FromContext(ctx).Debug("Saved convo to chat message store", "chatId", chatId)
	return nil
}

func (store *InMemorySessionStore) GetHistory(ctx context.Context, chatId string, window int) ([]commonModels.ChatTurn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	s, ok := store.chatMap[chatId]
	if !ok {
		return []commonModels.ChatTurn{}, nil
	}
	if last := commonModels.LastTurns(s.history, window); last != nil {
		return last, nil
	}
	return []commonModels.ChatTurn{}, nil
}

func (store *InMemorySessionStore) SaveDocument(ctx context.Context, chatId string, doc commonModels.Document) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	s, ok := store.chatMap[chatId]
	if !ok {
		return ErrUnknownChat
	}
	s.document = &doc
	return nil
}

func (store *InMemorySessionStore) GetDocument(ctx context.Context, chatId string) (commonModels.Document, bool, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	s, ok := store.chatMap[chatId]
	if !ok || s.document == nil {
		return commonModels.Document{}, false, nil
	}
	return *s.document, true, nil
}
