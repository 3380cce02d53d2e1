package chat

import (
	"container/list"
	"encoding/json"
	"sync"

	"github.com/tetrlabs/professor-server/api"
)

// HistoryCache is a byte-bounded LRU cache of conversation histories, kept in
// front of the relational store so a multi-turn chat does not reread its whole
// history every turn.
type HistoryCache struct {
	mu       sync.Mutex
	maxBytes int
	curBytes int
	cache    map[int64]*list.Element
	lru      *list.List
}

type cacheEntry struct {
	id       int64
	userID   int64
	messages []*api.Message
	bytes    int
}

// NewHistoryCache creates a new history cache bounded to maxBytes
func NewHistoryCache(maxBytes int) *HistoryCache {
	return &HistoryCache{
		maxBytes: maxBytes,
		cache:    make(map[int64]*list.Element),
		lru:      list.New(),
	}
}

func estimateBytes(messages []*api.Message) int {
	data, _ := json.Marshal(messages)
	return len(data)
}

// Get returns the cached history for a conversation, or nil if not cached.
// An entry cached for a different user is treated as a miss: the cache must
// never hand one user another user's conversation.
func (c *HistoryCache) Get(userID, id int64) []*api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[id]; ok {
		entry := elem.Value.(*cacheEntry)
		if entry.userID != userID {
			return nil
		}
		c.lru.MoveToFront(elem)
		return entry.messages
	}
	return nil
}

// Put replaces the cached history for a conversation owned by the given user
func (c *HistoryCache) Put(userID, id int64, messages []*api.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bytes := estimateBytes(messages)

	if elem, ok := c.cache[id]; ok {
		entry := elem.Value.(*cacheEntry)
		c.curBytes += bytes - entry.bytes
		entry.userID = userID
		entry.messages = messages
		entry.bytes = bytes
		c.lru.MoveToFront(elem)
		c.evictIfNeeded(0)
		return
	}

	c.evictIfNeeded(bytes)

	entry := &cacheEntry{id: id, userID: userID, messages: messages, bytes: bytes}
	elem := c.lru.PushFront(entry)
	c.cache[id] = elem
	c.curBytes += bytes
}

// Append adds messages to a cached conversation if present
func (c *HistoryCache) Append(id int64, messages ...*api.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[id]
	if !ok {
		return
	}

	entry := elem.Value.(*cacheEntry)
	oldBytes := entry.bytes

	entry.messages = append(entry.messages, messages...)

	newBytes := estimateBytes(entry.messages)
	entry.bytes = newBytes
	c.curBytes += newBytes - oldBytes

	c.lru.MoveToFront(elem)
	c.evictIfNeeded(0)
}

// Drop removes a conversation from the cache (e.g. after deletion)
func (c *HistoryCache) Drop(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[id]; ok {
		entry := elem.Value.(*cacheEntry)
		c.lru.Remove(elem)
		delete(c.cache, entry.id)
		c.curBytes -= entry.bytes
	}
}

func (c *HistoryCache) evictIfNeeded(additionalBytes int) {
	for c.curBytes+additionalBytes > c.maxBytes && c.lru.Len() > 0 {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*cacheEntry)
		c.lru.Remove(oldest)
		delete(c.cache, entry.id)
		c.curBytes -= entry.bytes
	}
}
