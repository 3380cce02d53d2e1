package chat_test

import (
	"strings"
	"testing"

	"github.com/tetrlabs/professor-server/api"
	"github.com/tetrlabs/professor-server/chat"
)

func history(content string) []*api.Message {
	return []*api.Message{
		{ID: 1, Role: api.RoleUser, Content: content},
		{ID: 2, Role: api.RoleAssistant, Content: content},
	}
}

func TestHistoryCachePutGet(t *testing.T) {
	cache := chat.NewHistoryCache(1 << 20)

	if got := cache.Get(1, 1); got != nil {
		t.Errorf("Get on empty cache = %v; want nil", got)
	}

	cache.Put(1, 1, history("hello"))

	got := cache.Get(1, 1)
	if len(got) != 2 || got[0].Content != "hello" {
		t.Errorf("Get = %+v; want the cached history", got)
	}
}

// an entry cached for one user must be a miss for every other user
func TestHistoryCacheOwnerMismatch(t *testing.T) {
	cache := chat.NewHistoryCache(1 << 20)
	cache.Put(1, 7, history("user one's private question"))

	if got := cache.Get(2, 7); got != nil {
		t.Errorf("Get by another user = %+v; want nil", got)
	}

	// the rightful owner still hits
	if got := cache.Get(1, 7); got == nil {
		t.Error("Get by the owner missed")
	}
}

func TestHistoryCacheAppend(t *testing.T) {
	cache := chat.NewHistoryCache(1 << 20)
	cache.Put(1, 7, history("first"))

	cache.Append(7, &api.Message{ID: 3, Role: api.RoleUser, Content: "second"})

	got := cache.Get(1, 7)
	if len(got) != 3 || got[2].Content != "second" {
		t.Errorf("Get after Append = %+v; want 3 messages", got)
	}

	// appending to an uncached conversation is a no-op
	cache.Append(99, &api.Message{ID: 4, Content: "orphan"})
	if got := cache.Get(1, 99); got != nil {
		t.Errorf("Get(99) = %v; want nil", got)
	}
}

func TestHistoryCacheDrop(t *testing.T) {
	cache := chat.NewHistoryCache(1 << 20)
	cache.Put(1, 1, history("hello"))
	cache.Drop(1)

	if got := cache.Get(1, 1); got != nil {
		t.Errorf("Get after Drop = %v; want nil", got)
	}
}

func TestHistoryCacheEvictsOldest(t *testing.T) {
	big := strings.Repeat("x", 400)

	// each entry marshals to roughly 1000 bytes; cap at about two entries
	cache := chat.NewHistoryCache(2400)

	cache.Put(1, 1, history(big))
	cache.Put(1, 2, history(big))

	// keep 1 warm so 2 is the eviction candidate
	cache.Get(1, 1)

	cache.Put(1, 3, history(big))

	if cache.Get(1, 2) != nil {
		t.Error("least recently used entry survived eviction")
	}
	if cache.Get(1, 1) == nil {
		t.Error("recently used entry was evicted")
	}
	if cache.Get(1, 3) == nil {
		t.Error("new entry was evicted")
	}
}
