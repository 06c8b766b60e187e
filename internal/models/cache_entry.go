package models

import "time"

// CacheEntry is the unit stored in every cache tier.
// ExpiresAt is zero for entries that never expire (durable tier).
type CacheEntry struct {
	Data      []byte `json:"data"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// NewCacheEntry builds an entry created at now. A zero ttl means no expiry.
func NewCacheEntry(data []byte, now time.Time, ttl time.Duration) *CacheEntry {
	entry := &CacheEntry{
		Data:      data,
		CreatedAt: now.UnixNano(),
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl).UnixNano()
	}
	return entry
}

// IsExpiredAt reports whether the entry is past its expiry at the given time
func (e *CacheEntry) IsExpiredAt(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixNano() >= e.ExpiresAt
}

// IsExpired reports whether the entry is past its expiry
func (e *CacheEntry) IsExpired() bool {
	return e.IsExpiredAt(time.Now())
}
