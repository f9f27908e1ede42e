package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/codalotl/panediff/internal/dirwalk"
	"github.com/codalotl/panediff/internal/filecmp"
	"github.com/codalotl/panediff/internal/filters"
	"github.com/codalotl/panediff/internal/matchers"
	"github.com/codalotl/panediff/internal/q/cas"
	"github.com/codalotl/panediff/internal/q/cascade"
	"github.com/codalotl/panediff/internal/simplelogger"
)

// Prefs are panediff's preferences, loaded from a cascade of sources.
type Prefs struct {
	ShallowComparison  bool             `json:"shallowcomparison"`
	IgnoreBlankLines   bool             `json:"ignoreblanklines"`
	TimeResolutionNS   int64            `json:"timeresolutionns"`
	ApplyTextFilters   bool             `json:"applytextfilters"`
	IgnoreSymlinks     bool             `json:"ignoresymlinks"`
	FollowSymlinks     bool             `json:"followsymlinks"`
	IgnoreFilenameCase bool             `json:"ignorefilenamecase"`
	MaxDepth           int              `json:"maxdepth"`
	CacheDir           string           `json:"cachedir"`
	MinMatchLines      int              `json:"minmatchlines"`
	MinMatchChars      int              `json:"minmatchchars"`
	NameFilters        []filters.Source `json:"namefilters"`
	TextFilters        []filters.Source `json:"textfilters"`
}

const envPrefix = "PANEDIFF"

// scalarKeys can be set from PANEDIFF_<KEY>.
var scalarKeys = []string{
	"shallowcomparison", "ignoreblanklines", "timeresolutionns", "applytextfilters", "ignoresymlinks",
	"followsymlinks", "ignorefilenamecase", "maxdepth", "cachedir", "minmatchlines", "minmatchchars",
}

func defaultPrefs() map[string]any {
	return map[string]any{
		"shallowcomparison":  false,
		"ignoreblanklines":   false,
		"timeresolutionns":   filecmp.DefaultTimeResolutionNS,
		"applytextfilters":   true,
		"ignoresymlinks":     false,
		"followsymlinks":     false,
		"ignorefilenamecase": false,
		"maxdepth":           0,
		"cachedir":           "",
		"minmatchlines":      matchers.DefaultMinMatch,
		"minmatchchars":      matchers.DefaultMinMatch,
		"namefilters":        filters.DefaultNameSources(),
		"textfilters":        filters.DefaultTextSources(),
	}
}

func globalConfigPath() string {
	return cascade.HomePath(filepath.Join(".panediff", "config.json"))
}

// loadPrefs applies defaults, the global config, the nearest project config, the environment and finally overrides (from flags).
func loadPrefs(overrides map[string]any) (Prefs, cascade.Report, error) {
	var p Prefs
	report, err := cascade.New().
		Defaults(defaultPrefs()).
		File(globalConfigPath()).
		NearestFile(filepath.Join(".panediff", "config.json"), "").
		Env(envPrefix, scalarKeys...).
		Overrides("flag", overrides).
		Load(&p)
	if err != nil {
		return Prefs{}, report, fmt.Errorf("load preferences: %w", err)
	}
	for _, u := range report.Unknown {
		simplelogger.Log("preferences: unknown key %s", u)
	}
	if err := p.validate(); err != nil {
		return Prefs{}, report, err
	}
	return p, report, nil
}

func (p Prefs) validate() error {
	var errs []error
	if p.TimeResolutionNS < 1 {
		errs = append(errs, fmt.Errorf("timeresolutionns must be >= 1 (got %d)", p.TimeResolutionNS))
	}
	if p.FollowSymlinks && p.IgnoreSymlinks {
		errs = append(errs, errors.New("followsymlinks and ignoresymlinks are mutually exclusive"))
	}
	if p.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("maxdepth must be >= 0 (got %d)", p.MaxDepth))
	}
	if p.MinMatchLines < 1 {
		errs = append(errs, fmt.Errorf("minmatchlines must be >= 1 (got %d)", p.MinMatchLines))
	}
	if p.MinMatchChars < 1 {
		errs = append(errs, fmt.Errorf("minmatchchars must be >= 1 (got %d)", p.MinMatchChars))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return nil
}

func (p Prefs) compareOptions() filecmp.Options {
	return filecmp.Options{
		Shallow:          p.ShallowComparison,
		IgnoreBlankLines: p.IgnoreBlankLines,
		ApplyTextFilters: p.ApplyTextFilters,
		TimeResolutionNS: p.TimeResolutionNS,
	}
}

func (p Prefs) lineMatcher() matchers.Options   { return matchers.Options{MinMatch: p.MinMatchLines} }
func (p Prefs) inlineMatcher() matchers.Options { return matchers.Options{MinMatch: p.MinMatchChars} }

// compileFilters compiles both filter lists, logging the ones that fail to compile.
func (p Prefs) compileFilters() (names, texts []*filters.Filter) {
	names = filters.FromSources(filters.Shell, p.NameFilters)
	texts = filters.FromSources(filters.Regex, p.TextFilters)
	for _, fs := range [][]*filters.Filter{names, texts} {
		errs := filters.Errors(fs)
		for _, label := range filters.Labels(errs) {
			simplelogger.Log("filter %q: %v", label, errs[label])
		}
	}
	return names, texts
}

// comparer returns a file comparer whose cache is backed by the store in CacheDir, if set.
func (p Prefs) comparer() *filecmp.Comparer {
	cache := filecmp.NewCache()
	if p.CacheDir != "" {
		cache = cache.WithStore(&cas.DB{AbsRoot: cascade.ExpandPath(p.CacheDir)})
	}
	return &filecmp.Comparer{Cache: cache}
}

func (p Prefs) canonicalizer() func(string) string {
	if p.IgnoreFilenameCase {
		return dirwalk.FoldCase
	}
	return nil
}

func writePrefsJSON(w io.Writer, p Prefs) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(p)
}
