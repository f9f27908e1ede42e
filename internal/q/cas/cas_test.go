package cas

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBytesHasher(t *testing.T) {
	h1 := NewBytesHasher([]byte("hello"))
	h2 := NewBytesHasher([]byte("hello"))
	h3 := NewBytesHasher([]byte("hello!"))

	require.Equal(t, h1.Hash(), h2.Hash())
	require.NotEqual(t, h1.Hash(), h3.Hash())
	require.Len(t, h1.Hash(), 64)
}

func TestNewKeyHasher(t *testing.T) {
	assert.Equal(t, NewKeyHasher("a", "b").Hash(), NewKeyHasher("a", "b").Hash())
	assert.NotEqual(t, NewKeyHasher("ab", "c").Hash(), NewKeyHasher("a", "bc").Hash())
	assert.NotEqual(t, NewKeyHasher("a", "b").Hash(), NewKeyHasher("b", "a").Hash())
	assert.NotEqual(t, NewKeyHasher("a").Hash(), NewKeyHasher("a", "").Hash())
}

func TestDB_StoreRetrieve(t *testing.T) {
	dbRoot := t.TempDir()
	db := &DB{AbsRoot: dbRoot}

	type payload struct {
		Verdict string `json:"verdict"`
		Size    int64  `json:"size"`
	}

	ns := "verdict-v1"
	h := NewKeyHasher("left.txt", "right.txt")

	found, err := db.Retrieve(h, ns, new(payload))
	require.NoError(t, err)
	require.False(t, found)

	in := payload{Verdict: "same", Size: 12}
	require.NoError(t, db.Store(h, ns, in))

	var out payload
	found, err = db.Retrieve(h, ns, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, in, out)

	hash := h.Hash()
	_, err = os.Stat(filepath.Join(dbRoot, ns, hash[:2], hash[2:]))
	require.NoError(t, err)
}

func TestDB_StoreIdenticalPayloadKeepsFile(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}
	h := NewBytesHasher([]byte("x"))

	orig := now
	t.Cleanup(func() { now = orig })
	now = func() time.Time { return time.Unix(100, 0) }
	require.NoError(t, db.Store(h, "ns", map[string]int{"a": 1}))

	p := db.recordPath("ns", h.Hash())
	before, err := os.ReadFile(p)
	require.NoError(t, err)

	now = func() time.Time { return time.Unix(200, 0) }
	require.NoError(t, db.Store(h, "ns", map[string]int{"a": 1}))
	after, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	require.NoError(t, db.Store(h, "ns", map[string]int{"a": 2}))
	var out map[string]int
	found, err := db.Retrieve(h, "ns", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, out["a"])
}

func TestDB_DeletePurgeCount(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}

	n, err := db.Count("verdict-v1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Store(NewKeyHasher(k), "verdict-v1", k))
	}
	require.NoError(t, db.Store(NewKeyHasher("a"), "other", "a"))

	n, err = db.Count("verdict-v1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, db.Delete(NewKeyHasher("b"), "verdict-v1"))
	require.NoError(t, db.Delete(NewKeyHasher("missing"), "verdict-v1"))
	n, err = db.Count("verdict-v1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, db.Purge("verdict-v1"))
	n, err = db.Count("verdict-v1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var s string
	found, err := db.Retrieve(NewKeyHasher("a"), "other", &s)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", s)
}

func TestDB_RetrieveRejectsForeignRecords(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}
	h := NewBytesHasher([]byte("x"))
	p := db.recordPath("ns", h.Hash())
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(`{"kind":"something-else","payload":1}`), 0o644))

	var out int
	found, err := db.Retrieve(h, "ns", &out)
	require.Error(t, err)
	assert.False(t, found)
}

func TestDB_ValidatesNamespaceAndHash(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}

	require.Error(t, db.Store(stringHasher("a/b"), "ok", 1))
	require.Error(t, db.Store(stringHasher("ab"), "ok", 1))
	require.Error(t, db.Store(NewBytesHasher([]byte("x")), "a/b", 1))
	require.Error(t, db.Store(NewBytesHasher([]byte("x")), "..", 1))
	require.Error(t, db.Store(nil, "ok", 1))
	require.Error(t, db.Purge(""))

	empty := &DB{}
	_, err := empty.Retrieve(NewBytesHasher([]byte("x")), "ok", new(int))
	require.Error(t, err)
}
