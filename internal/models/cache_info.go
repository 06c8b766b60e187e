package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind identifies a category of fetchable entity
type Kind string

const (
	KindCourses       Kind = "courses"
	KindCourse        Kind = "course"
	KindAnnouncements Kind = "announcements"
	KindAssignments   Kind = "assignments"
	KindSubmissions   Kind = "submissions"
	KindMaterials     Kind = "materials"
	KindTopics        Kind = "topics"
	KindFileContent   Kind = "file_content"
)

// AllKinds lists every kind the cache understands, in a stable order
var AllKinds = []Kind{
	KindCourses,
	KindCourse,
	KindAnnouncements,
	KindAssignments,
	KindSubmissions,
	KindMaterials,
	KindTopics,
	KindFileContent,
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// UnmarshalYAML implements custom YAML unmarshaling for Kind
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	if !Kind(str).Valid() {
		return fmt.Errorf("invalid entity kind '%s'", str)
	}
	*k = Kind(str)
	return nil
}

// Tier represents where entries of a kind are cached
type Tier string

const (
	// TierMemory caches in the expiring memory tier only
	TierMemory Tier = "memory"
	// TierDurable caches in memory and in the permanent durable tier
	TierDurable Tier = "durable"
)

// UnmarshalYAML implements custom YAML unmarshaling for Tier
func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	switch str {
	case "memory", "durable":
		*t = Tier(str)
		return nil
	default:
		return fmt.Errorf("invalid cache tier '%s': must be one of 'memory', 'durable'", str)
	}
}

// Pool selects which memory cache instance holds a kind
type Pool string

const (
	PoolGeneral Pool = "general"
	PoolFiles   Pool = "files"
)

// TierPolicy contains the caching policy for a kind
type TierPolicy struct {
	Tier Tier `json:"tier"`
	Pool Pool `json:"pool"`
}

// Durable reports whether the policy persists entries to the durable tier
func (p TierPolicy) Durable() bool {
	return p.Tier == TierDurable
}

// CacheLevel reports which tier answered a read
type CacheLevel string

const (
	CacheLevelL1     CacheLevel = "L1"
	CacheLevelL2     CacheLevel = "L2"
	CacheLevelRemote CacheLevel = "REMOTE"
	CacheLevelMiss   CacheLevel = "MISS"
)

// MemoryTTL is the default time-to-live for memory entries
const MemoryTTL = 5 * time.Minute
