package xsdedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReturnsIdenticalInstance(t *testing.T) {
	cache := NewDocumentCache()

	first, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)
	assert.Equal(t, CacheClean, cache.State())

	second, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)
	// Same text, clean cache: the very same tree, not an equal copy.
	assert.Same(t, first, second)
}

func TestCacheReparsesOnChangedText(t *testing.T) {
	cache := NewDocumentCache()

	first, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)

	changed := personSchema + "\n"
	second, err := cache.GetOrReparse(changed)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.True(t, StructurallyEqual(first, second))
}

func TestCacheMarkDirtyForcesReparse(t *testing.T) {
	cache := NewDocumentCache()

	first, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)

	cache.MarkDirty()
	assert.Equal(t, CacheDirty, cache.State())

	second, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, CacheClean, cache.State())
}

func TestCacheKeepsLastGoodOnParseFailure(t *testing.T) {
	cache := NewDocumentCache()

	good, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)

	_, err = cache.GetOrReparse("<not a schema")
	require.Error(t, err)
	assert.Equal(t, CacheError, cache.State())
	assert.Same(t, good, cache.LastGood())

	// Recovery: valid text parses again.
	again, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)
	assert.Equal(t, CacheClean, cache.State())
	assert.NotNil(t, again)
}

func TestCacheRefresh(t *testing.T) {
	cache := NewDocumentCache()

	tree, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)
	cache.MarkDirty()

	out, err := Serialize(tree, DefaultSerializeOptions())
	require.NoError(t, err)
	cache.Refresh(out, tree)
	assert.Equal(t, CacheClean, cache.State())

	// Loading the refreshed text is a hit on the same instance.
	same, err := cache.GetOrReparse(out)
	require.NoError(t, err)
	assert.Same(t, tree, same)
}

// Refresh binds the tree to a second text. MarkDirty must evict both
// bindings, or a later load of the original text would serve the edited
// tree as clean.
func TestCacheMarkDirtyEvictsAllBindings(t *testing.T) {
	cache := NewDocumentCache()

	tree, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)

	out, err := Serialize(tree, DefaultSerializeOptions())
	require.NoError(t, err)
	cache.Refresh(out, tree)

	cache.MarkDirty()

	again, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)
	assert.NotSame(t, tree, again)

	fromOut, err := cache.GetOrReparse(out)
	require.NoError(t, err)
	assert.NotSame(t, tree, fromOut)
}

// Flipping between recently seen texts is served from the retained
// tree set without reparsing.
func TestCacheRetainsRecentTexts(t *testing.T) {
	cache := NewDocumentCache()
	other := `<xs:schema xmlns:xs="` + XSDNamespace + `">
  <xs:element name="other" type="xs:string"/>
</xs:schema>`

	first, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)
	second, err := cache.GetOrReparse(other)
	require.NoError(t, err)

	again, err := cache.GetOrReparse(personSchema)
	require.NoError(t, err)
	assert.Same(t, first, again)

	back, err := cache.GetOrReparse(other)
	require.NoError(t, err)
	assert.Same(t, second, back)
}

func TestCacheEmptyStartsDirty(t *testing.T) {
	cache := NewDocumentCache()
	assert.Equal(t, CacheDirty, cache.State())
	assert.Nil(t, cache.LastGood())
}
