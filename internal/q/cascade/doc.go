// Package cascade fills a Go struct from layered configuration sources.
//
// Layers are registered lowest priority first: Go maps of defaults, JSON files (a fixed path or the nearest one found walking
// upward from a directory), environment variables, and Go maps of overrides such as parsed command-line flags. Load applies them in
// order, so a later layer replaces the values an earlier one set. The Report returned by Load records which layer supplied each key.
//
// Keys are case-insensitive. A struct field answers to its json tag name, or to its lowercased Go name. Dotted keys ("a.b") address
// nested structs. Unknown keys are reported, not rejected. Scalar strings are coerced to the field's type, so environment variables
// can set ints and bools; a string assigned to a []string field is split on commas.
//
//	var prefs Prefs
//	report, err := cascade.New().
//	    Defaults(map[string]any{"maxdepth": 0}).
//	    File("~/.tool/config.json").
//	    NearestFile(".tool/config.json", "").
//	    Env("TOOL", "maxdepth").
//	    Load(&prefs)
package cascade
