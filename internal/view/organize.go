package view

import (
	"sort"
	"strings"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// Bucket keys that are not stage values.
const (
	BucketAll           = "All"
	BucketUncategorized = "Uncategorized"
)

// Buckets partitions leads by lead stage.
type Buckets struct {
	all    []model.Lead
	stages map[string][]model.Lead
	keys   []string
}

// BucketCount is a bucket key with its size.
type BucketCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Organize groups leads by their exact stage string. Blank stages go to
// Uncategorized; the All bucket holds every lead once.
func Organize(leads []model.Lead) *Buckets {
	b := &Buckets{
		all:    make([]model.Lead, len(leads)),
		stages: make(map[string][]model.Lead),
	}
	copy(b.all, leads)
	for _, l := range leads {
		key := l.LeadStage
		if strings.TrimSpace(key) == "" {
			key = BucketUncategorized
		}
		b.stages[key] = append(b.stages[key], l)
	}

	stageKeys := make([]string, 0, len(b.stages))
	for k := range b.stages {
		stageKeys = append(stageKeys, k)
	}
	sort.Strings(stageKeys)
	b.keys = append([]string{BucketAll}, stageKeys...)
	return b
}

// Keys returns All followed by the sorted stage keys.
func (b *Buckets) Keys() []string {
	return append([]string(nil), b.keys...)
}

// Get returns the leads in bucket key, or nil for an unknown key.
func (b *Buckets) Get(key string) []model.Lead {
	if key == BucketAll {
		return b.all
	}
	return b.stages[key]
}

// Count returns the size of bucket key.
func (b *Buckets) Count(key string) int {
	return len(b.Get(key))
}

// Counts returns every key with its size, in Keys order.
func (b *Buckets) Counts() []BucketCount {
	out := make([]BucketCount, len(b.keys))
	for i, k := range b.keys {
		out[i] = BucketCount{Key: k, Count: b.Count(k)}
	}
	return out
}
