package xsdedit

import (
	"hash/fnv"
	"sync"

	"github.com/golang/groupcache/lru"
)

// CacheState describes the relation between the cached tree and the
// text it was parsed from.
type CacheState int

const (
	// CacheClean means the cached tree matches its source text.
	CacheClean CacheState = iota
	// CacheDirty means the tree has been edited since the last parse,
	// or no parse has happened yet.
	CacheDirty
	// CacheError means the most recent parse failed; the last good
	// tree, if any, is retained.
	CacheError
)

func (s CacheState) String() string {
	switch s {
	case CacheClean:
		return "clean"
	case CacheDirty:
		return "dirty"
	case CacheError:
		return "error"
	}
	return "unknown"
}

// maxRetainedTrees bounds the LRU of previously parsed trees.
const maxRetainedTrees = 16

// DocumentCache avoids reparsing schema text that has not changed. It
// fingerprints the source text and hands back the identical tree
// instance while the fingerprint matches and no edits have been made,
// so callers keep stable node identities across repeated loads. A
// small LRU retains trees for recently seen texts, so flipping between
// a handful of documents stays parse-free.
type DocumentCache struct {
	mu             sync.Mutex
	state          CacheState
	fingerprint    uint64
	hasFingerprint bool
	tree           *Node
	trees          *lru.Cache
	// byTree maps each retained tree to the fingerprints bound to it.
	// Refresh can bind one tree to several texts, so an edit must evict
	// every binding of the edited tree, not just the current one.
	byTree map[*Node]map[uint64]struct{}
}

// NewDocumentCache returns an empty cache in the dirty state.
func NewDocumentCache() *DocumentCache {
	c := &DocumentCache{
		state:  CacheDirty,
		trees:  lru.New(maxRetainedTrees),
		byTree: make(map[*Node]map[uint64]struct{}),
	}
	c.trees.OnEvicted = func(key lru.Key, value interface{}) {
		tree := value.(*Node)
		if fps, ok := c.byTree[tree]; ok {
			delete(fps, key.(uint64))
			if len(fps) == 0 {
				delete(c.byTree, tree)
			}
		}
	}
	return c
}

func fingerprint(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}

// GetOrReparse returns the tree for text. When the cache is clean and
// the text matches the cached fingerprint, the cached instance is
// returned without parsing; the LRU of retained trees serves texts
// seen earlier. Otherwise the text is parsed; on success the cache
// turns clean, on failure it turns to CacheError and the previous tree
// is kept as the last good state.
func (c *DocumentCache) GetOrReparse(text string) (*Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fp := fingerprint(text)
	if c.state == CacheClean && c.hasFingerprint && c.fingerprint == fp {
		return c.tree, nil
	}
	if v, ok := c.trees.Get(lru.Key(fp)); ok {
		c.adopt(fp, v.(*Node))
		return c.tree, nil
	}

	tree, err := Parse(text)
	if err != nil {
		c.state = CacheError
		return nil, err
	}

	c.retain(fp, tree)
	c.adopt(fp, tree)
	return tree, nil
}

// retain records a fingerprint-to-tree binding in the LRU and the
// reverse index the eviction hook keeps pruned.
func (c *DocumentCache) retain(fp uint64, tree *Node) {
	c.trees.Add(lru.Key(fp), tree)
	fps := c.byTree[tree]
	if fps == nil {
		fps = make(map[uint64]struct{})
		c.byTree[tree] = fps
	}
	fps[fp] = struct{}{}
}

func (c *DocumentCache) adopt(fp uint64, tree *Node) {
	c.tree = tree
	c.fingerprint = fp
	c.hasFingerprint = true
	c.state = CacheClean
}

// MarkDirty records that the tree no longer matches its source text.
// The next GetOrReparse will parse regardless of the fingerprint. The
// edited tree is dropped from the retained set since it no longer
// reflects the text it was parsed from.
func (c *DocumentCache) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree == nil {
		return
	}
	c.state = CacheDirty
	for fp := range c.byTree[c.tree] {
		c.trees.Remove(lru.Key(fp))
	}
}

// Refresh records that text is a faithful serialization of tree,
// returning the cache to the clean state. A later GetOrReparse with
// the same text then returns tree itself instead of reparsing.
func (c *DocumentCache) Refresh(text string, tree *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fp := fingerprint(text)
	c.retain(fp, tree)
	c.adopt(fp, tree)
}

// State returns the current cache state.
func (c *DocumentCache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastGood returns the most recently parsed tree, which survives a
// failed reparse. It is nil before the first successful parse.
func (c *DocumentCache) LastGood() *Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}
