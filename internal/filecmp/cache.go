package filecmp

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codalotl/panediff/internal/q/cas"
	"github.com/codalotl/panediff/internal/simplelogger"
)

// StoreNamespace is the cas namespace persistent verdicts are written under.
const StoreNamespace = "verdict-v1"

type cacheKey struct {
	paths        string // NUL-joined
	needContents bool
	filters      string // filters.Identity of the applied filters
	ignoreBlank  bool
}

func newCacheKey(paths []string, needContents bool, filterIdentity string, ignoreBlank bool) cacheKey {
	return cacheKey{
		paths:        strings.Join(paths, "\x00"),
		needContents: needContents,
		filters:      filterIdentity,
		ignoreBlank:  ignoreBlank,
	}
}

func (k cacheKey) hasher() cas.Hasher {
	return cas.NewKeyHasher(k.paths, strconv.FormatBool(k.needContents), k.filters, strconv.FormatBool(k.ignoreBlank))
}

type cacheEntry struct {
	fingerprints []Fingerprint
	verdict      Verdict
}

type storedFingerprint struct {
	Kind    uint32 `json:"kind"`
	Size    int64  `json:"size"`
	MTimeNS int64  `json:"mtime_ns"`
}

type storedEntry struct {
	Verdict      Verdict             `json:"verdict"`
	Fingerprints []storedFingerprint `json:"fingerprints"`
}

// Cache holds verdicts. It is safe for concurrent use. The zero value is not usable; call NewCache.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	store   *cas.DB
}

// NewCache returns an empty in-memory cache.
func NewCache() *Cache {
	return &Cache{entries: map[cacheKey]cacheEntry{}}
}

// WithStore attaches db as a persistent backing store and returns c. In-memory misses fall through to db, and new verdicts are written to it.
func (c *Cache) WithStore(db *cas.DB) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = db
	return c
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every in-memory entry and purges the persistent store, if any.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	if c.store != nil {
		if err := c.store.Purge(StoreNamespace); err != nil {
			simplelogger.Log("filecmp: purge verdict store: %v", err)
		}
	}
}

func (c *Cache) lookup(k cacheKey, fps []Fingerprint) (Verdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok && fingerprintsIdentical(e.fingerprints, fps) {
		return e.verdict, true
	}
	if c.store == nil {
		return 0, false
	}

	var se storedEntry
	found, err := c.store.Retrieve(k.hasher(), StoreNamespace, &se)
	if err != nil {
		simplelogger.Log("filecmp: read verdict store: %v", err)
		return 0, false
	}
	if !found {
		return 0, false
	}
	stored := make([]Fingerprint, len(se.Fingerprints))
	for i, sf := range se.Fingerprints {
		stored[i] = Fingerprint{Kind: fsMode(sf.Kind), Size: sf.Size, MTime: time.Unix(0, sf.MTimeNS)}
	}
	if !fingerprintsIdentical(stored, fps) {
		return 0, false
	}
	c.entries[k] = cacheEntry{fingerprints: fps, verdict: se.Verdict}
	return se.Verdict, true
}

func (c *Cache) put(k cacheKey, fps []Fingerprint, v Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = cacheEntry{fingerprints: fps, verdict: v}
	if c.store == nil {
		return
	}
	se := storedEntry{Verdict: v, Fingerprints: make([]storedFingerprint, len(fps))}
	for i, fp := range fps {
		se.Fingerprints[i] = storedFingerprint{Kind: uint32(fp.Kind), Size: fp.Size, MTimeNS: fp.MTime.UnixNano()}
	}
	if err := c.store.Store(k.hasher(), StoreNamespace, se); err != nil {
		simplelogger.Log("filecmp: write verdict store: %v", err)
	}
}
