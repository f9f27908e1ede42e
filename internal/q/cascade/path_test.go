package cascade

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "x", "y.json"), ExpandPath("~/x/y.json"))
	assert.Equal(t, filepath.Join(home, ".tool", "config.json"), HomePath(filepath.Join(".tool", "config.json")))

	abs, _ := filepath.Abs("rel")
	assert.Equal(t, abs, ExpandPath("rel"))
	assert.True(t, filepath.IsAbs(ExpandPath("~other/x")))
}
