package intake

import (
	"testing"
	"time"
)

func TestLinkCache_PutTake(t *testing.T) {
	c := NewLinkCache(0)
	c.Put("C1", "https://chat/p1")

	if got := c.Take("C1"); got != "https://chat/p1" {
		t.Errorf("Take = %q", got)
	}
	// Take evicts: a second read is empty.
	if got := c.Take("C1"); got != "" {
		t.Errorf("second Take = %q, want empty", got)
	}
}

func TestLinkCache_OverwriteSlot(t *testing.T) {
	c := NewLinkCache(0)
	c.Put("C1", "https://chat/old")
	c.Put("C1", "https://chat/new")

	if got := c.Take("C1"); got != "https://chat/new" {
		t.Errorf("Take = %q, want the later link", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after take", c.Len())
	}
}

func TestLinkCache_PerConversation(t *testing.T) {
	c := NewLinkCache(0)
	c.Put("C1", "https://chat/one")
	c.Put("C2", "https://chat/two")

	if got := c.Take("C2"); got != "https://chat/two" {
		t.Errorf("Take(C2) = %q", got)
	}
	if got := c.Take("C1"); got != "https://chat/one" {
		t.Errorf("Take(C1) = %q", got)
	}
}

func TestLinkCache_IgnoresEmptyKeys(t *testing.T) {
	c := NewLinkCache(0)
	c.Put("", "https://chat/p1")
	c.Put("C1", "")
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestLinkCache_TTLExpiry(t *testing.T) {
	c := NewLinkCache(time.Minute)

	base := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Put("C1", "https://chat/p1")

	// Within the TTL the link survives.
	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if got := c.Take("C1"); got != "https://chat/p1" {
		t.Errorf("fresh Take = %q", got)
	}

	// Past the TTL the entry is still evicted but yields nothing.
	c.now = func() time.Time { return base }
	c.Put("C1", "https://chat/p2")
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if got := c.Take("C1"); got != "" {
		t.Errorf("expired Take = %q, want empty", got)
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted, Len = %d", c.Len())
	}
}

func TestLinkCache_ZeroTTLNeverExpires(t *testing.T) {
	c := NewLinkCache(0)
	base := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Put("C1", "https://chat/p1")

	c.now = func() time.Time { return base.Add(1000 * time.Hour) }
	if got := c.Take("C1"); got != "https://chat/p1" {
		t.Errorf("Take = %q, want link with expiry disabled", got)
	}
}
