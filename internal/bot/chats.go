package bot

import "sync"

// chats remembers the current round of every chat.
type chats struct {
	mu     sync.RWMutex
	rounds map[int64]string
}

func newChats() *chats {
	return &chats{rounds: make(map[int64]string)}
}

func (c *chats) Get(chatID int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.rounds[chatID]
	return id, ok
}

func (c *chats) Set(chatID int64, roundID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rounds[chatID] = roundID
}
