package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// ProbeDeduplicator tracks candidate URLs that failed a probe during a batch
// run, so companies that normalize to overlapping hosts do not re-probe known
// dead URLs.
// A Bloom filter front-ends an exact set: the filter answers the common
// "definitely new" case cheaply, the set resolves its false positives.
type ProbeDeduplicator struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
	count  int
}

// NewProbeDeduplicator creates a deduplicator sized for estimatedItems URLs.
func NewProbeDeduplicator(estimatedItems int) *ProbeDeduplicator {
	if estimatedItems < 100 {
		estimatedItems = 100
	}

	return &ProbeDeduplicator{
		filter: bloom.NewWithEstimates(uint(estimatedItems), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Add records a URL.
func (d *ProbeDeduplicator) Add(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.exact[url]; !exists {
		d.filter.AddString(url)
		d.exact[url] = struct{}{}
		d.count++
	}
}

// HasSeen reports whether a URL was recorded.
func (d *ProbeDeduplicator) HasSeen(url string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.filter.TestString(url) {
		return false
	}

	_, exists := d.exact[url]
	return exists
}

// Count returns the number of unique URLs recorded.
func (d *ProbeDeduplicator) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}

// Reset clears the deduplicator.
func (d *ProbeDeduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.filter.ClearAll()
	d.exact = make(map[string]struct{})
	d.count = 0
}
