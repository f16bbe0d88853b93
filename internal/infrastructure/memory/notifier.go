package memory

import (
	"context"
	"sync"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

// Notifier はプロセス内の上映回変更通知
// Redis を介さない構成やテストで FeedNotifier の代わりに使用する。
// ハンドラは Publish の呼び出し元と同じゴルーチンで順に呼ばれる。
type Notifier struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(show.ID)
}

func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[int]func(show.ID))}
}

func (n *Notifier) Publish(ctx context.Context, showID show.ID) error {
	n.mu.Lock()
	handlers := make([]func(show.ID), 0, len(n.handlers))
	for _, h := range n.handlers {
		handlers = append(handlers, h)
	}
	n.mu.Unlock()

	for _, h := range handlers {
		h(showID)
	}
	return nil
}

func (n *Notifier) Subscribe(ctx context.Context, handler func(show.ID)) (func(), error) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.handlers[id] = handler
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.handlers, id)
		n.mu.Unlock()
	}, nil
}
