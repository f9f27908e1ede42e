package cascade

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rule struct {
	Name    string `json:"name"`
	Active  bool   `json:"active"`
	Pattern string `json:"pattern"`
}

type prefs struct {
	Shallow   bool   `json:"shallowcomparison"`
	Depth     int    `json:"maxdepth"`
	CacheDir  string `json:"cachedir"`
	Rules     []rule `json:"rules"`
	Tags      []string
	Ratio     float64
	Nested    struct{ Level int }
	Ignored   string `json:"-"`
	unexposed int
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLayersInOrder(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "config.json"), `{
		"maxdepth": 3,
		"CacheDir": "/from/file",
		"rules": [{"name": "a", "active": true, "pattern": "*.o"}],
		"nested": {"level": 2},
		"ratio": 0.5
	}`)
	t.Setenv("APP_MAXDEPTH", "7")
	t.Setenv("APP_SHALLOWCOMPARISON", "")
	t.Setenv("APP_TAGS", "x, y,,z")

	var p prefs
	report, err := New().
		Defaults(map[string]any{"maxdepth": 0, "shallowcomparison": true, "cachedir": ""}).
		File(file).
		Env("app", "maxdepth", "shallowcomparison", "tags").
		Overrides("flag", map[string]any{"cachedir": "/from/flag"}).
		Load(&p)
	require.NoError(t, err)

	assert.True(t, p.Shallow)
	assert.Equal(t, 7, p.Depth)
	assert.Equal(t, "/from/flag", p.CacheDir)
	assert.Equal(t, []rule{{Name: "a", Active: true, Pattern: "*.o"}}, p.Rules)
	assert.Equal(t, []string{"x", "y", "z"}, p.Tags)
	assert.Equal(t, 0.5, p.Ratio)
	assert.Equal(t, 2, p.Nested.Level)

	assert.Equal(t, Origin{Kind: "default"}, report.Origin("shallowcomparison"))
	assert.Equal(t, Origin{Kind: "env", Where: "APP_MAXDEPTH"}, report.Origin("maxdepth"))
	assert.Equal(t, Origin{Kind: "flag"}, report.Origin("cachedir"))
	assert.Equal(t, Origin{Kind: "file", Where: file}, report.Origin("rules"))
	assert.Equal(t, Origin{Kind: "file", Where: file}, report.Origin("nested.level"))
	assert.NotContains(t, report.Origins, "rules[0].name")
	assert.Empty(t, report.Unknown)
}

func TestLoadDirectlyAssignableValues(t *testing.T) {
	var p prefs
	_, err := New().Defaults(map[string]any{"rules": []rule{{Name: "d"}}}).Load(&p)
	require.NoError(t, err)
	assert.Equal(t, []rule{{Name: "d"}}, p.Rules)
}

func TestLoadDottedKeys(t *testing.T) {
	var p prefs
	_, err := New().Defaults(map[string]any{"Nested.Level": 4}).Load(&p)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Nested.Level)

	_, err = New().Defaults(map[string]any{"nested": 1, "nested.level": 2}).Load(&p)
	assert.Error(t, err)
}

func TestLoadReportsUnknownKeys(t *testing.T) {
	var p prefs
	report, err := New().Overrides("flag", map[string]any{"bogus": 1, "ignored": "x", "nested.what": 2}).Load(&p)
	require.NoError(t, err)
	assert.Equal(t, []string{"bogus (flag)", "ignored (flag)", "nested.what (flag)"}, report.Unknown)
	assert.Empty(t, p.Ignored)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		loader *Loader
		want   string
	}{
		{"bad json", New().File(writeFile(t, filepath.Join(dir, "bad.json"), "{")), "parse json"},
		{"bad int", New().Defaults(map[string]any{"maxdepth": "deep"}), `maxdepth: not an integer: "deep"`},
		{"fractional int", New().File(writeFile(t, filepath.Join(dir, "f.json"), `{"maxdepth": 1.5}`)), "not an integer"},
		{"bool", New().Defaults(map[string]any{"shallowcomparison": "maybe"}), "not a bool"},
		{"object shape", New().Defaults(map[string]any{"rules": []any{"x"}}), "rules[0]: expected an object"},
		{"list shape", New().Defaults(map[string]any{"rules": 3}), "expected a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p prefs
			_, err := tt.loader.Load(&p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	var p prefs
	_, err := New().Load(p)
	assert.Error(t, err)
	_, err = New().Load((*prefs)(nil))
	assert.Error(t, err)
}

func TestLoadSkipsMissingAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, filepath.Join(dir, "empty.json"), " \n")
	var p prefs
	report, err := New().
		Defaults(map[string]any{"maxdepth": 1}).
		File(filepath.Join(dir, "missing.json")).
		File(empty).
		Load(&p)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Depth)
	assert.Equal(t, "default", report.Origin("maxdepth").Kind)
}

func TestLoadNullResetsValue(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "c.json"), `{"tags": null}`)
	var p prefs
	_, err := New().Defaults(map[string]any{"tags": []string{"a"}}).File(file).Load(&p)
	require.NoError(t, err)
	assert.Nil(t, p.Tags)
}

func TestNearestFile(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	writeFile(t, filepath.Join(root, ".tool", "config.json"), `{"maxdepth": 9}`)
	writeFile(t, filepath.Join(root, "a", ".tool", "config.json"), "")
	near := writeFile(t, filepath.Join(root, "a", "b", ".tool", "config.json"), `{"maxdepth": 5}`)

	var p prefs
	report, err := New().NearestFile(filepath.Join(".tool", "config.json"), deep).Load(&p)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Depth)
	assert.Equal(t, near, report.Origin("maxdepth").Where)

	require.NoError(t, os.Remove(near))
	p = prefs{}
	_, err = New().NearestFile(filepath.Join(".tool", "config.json"), filepath.Join(deep, "file.txt")).Load(&p)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Depth, "empty files are skipped while searching")

	assert.Panics(t, func() { New().NearestFile(filepath.Join(root, "x.json"), "") })
}
