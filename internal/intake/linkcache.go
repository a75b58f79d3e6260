package intake

import (
	"sync"
	"time"

	"ticketbot/internal/metrics"
)

type linkEntry struct {
	link    string
	created time.Time
}

// LinkCache holds the deep link to a triggering message between form display
// and form submission, keyed by conversation id. One slot per conversation:
// showing a second form before the first resolves overwrites the slot, and a
// TTL bounds how long an abandoned form's link can linger. Concurrent turns
// on the same conversation race as last-write-wins, which is accepted.
type LinkCache struct {
	mu      sync.Mutex
	ttl     time.Duration // 0 = no expiry
	entries map[string]linkEntry
	now     func() time.Time
}

// NewLinkCache creates a cache with the given entry TTL (0 disables expiry).
func NewLinkCache(ttl time.Duration) *LinkCache {
	return &LinkCache{
		ttl:     ttl,
		entries: make(map[string]linkEntry),
		now:     time.Now,
	}
}

// Put stores (or overwrites) the pending link for a conversation.
func (c *LinkCache) Put(conversationID, link string) {
	if conversationID == "" || link == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[conversationID] = linkEntry{link: link, created: c.now()}
	metrics.PendingLinks.Set(int64(len(c.entries)))
}

// Take returns the pending link for a conversation and evicts it. Expired or
// absent entries yield an empty string.
func (c *LinkCache) Take(conversationID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[conversationID]
	if !ok {
		return ""
	}
	delete(c.entries, conversationID)
	metrics.PendingLinks.Set(int64(len(c.entries)))
	if c.ttl > 0 && c.now().Sub(entry.created) > c.ttl {
		return ""
	}
	return entry.link
}

// Len reports the number of pending entries.
func (c *LinkCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
