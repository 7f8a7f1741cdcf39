package network

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// InboxSize - размер личного канала подписчика.
const InboxSize = 64

// Broadcaster занимается только рассылкой сообщений игрокам.
// Медленный подписчик теряет сообщения, а не блокирует матч.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ID игрока -> личный канал
	subscribers map[types.EntityID]chan api.ServerResponse
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[types.EntityID]chan api.ServerResponse),
	}
}

// Register создает личный канал игрока (человека или бота).
// Старый канал того же игрока закрывается.
func (b *Broadcaster) Register(playerID types.EntityID) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[playerID]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, InboxSize)
	b.subscribers[playerID] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(playerID types.EntityID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[playerID]; ok {
		close(ch)
		delete(b.subscribers, playerID)
	}
}

// SendTo отправляет сообщение одному игроку.
func (b *Broadcaster) SendTo(playerID types.EntityID, msg api.ServerResponse) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ch, ok := b.subscribers[playerID]
	if !ok {
		return false
	}
	select {
	case ch <- msg:
		return true
	default:
		logger.Log.WithFields(logrus.Fields{
			"component": "hub",
			"player":    playerID.String(),
			"type":      msg.Type,
		}).Warn("Subscriber channel full, message dropped")
		return false
	}
}

// Broadcast отправляет всем подписчикам.
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (b *Broadcaster) HasSubscriber(playerID types.EntityID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[playerID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
