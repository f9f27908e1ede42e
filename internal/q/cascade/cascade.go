package cascade

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Origin identifies the layer that supplied a value.
type Origin struct {
	Kind  string // "default", "file", "env", or the name given to Overrides
	Where string // file path or env variable; empty for map layers
}

func (o Origin) String() string {
	if o.Where == "" {
		return o.Kind
	}
	return o.Kind + " " + o.Where
}

// Report describes a completed Load.
type Report struct {
	Origins map[string]Origin // lowercased dotted key -> layer that set it last
	Unknown []string          // keys no field answered to, as "key (origin)"
}

// Origin returns the layer that set key, or the zero Origin if no layer did.
func (r Report) Origin(key string) Origin {
	return r.Origins[strings.ToLower(key)]
}

type layer struct {
	origin Origin
	read   func() (map[string]any, error)
}

// Loader is an ordered list of layers. The zero value is usable.
type Loader struct {
	layers []layer
}

func New() *Loader {
	return &Loader{}
}

// Defaults adds m as a layer of kind "default".
func (l *Loader) Defaults(m map[string]any) *Loader {
	return l.Overrides("default", m)
}

// Overrides adds m as a layer whose Origin.Kind is kind. Values may be any type directly assignable to the destination field, in
// addition to the forms JSON decoding produces.
func (l *Loader) Overrides(kind string, m map[string]any) *Loader {
	l.layers = append(l.layers, layer{
		origin: Origin{Kind: kind},
		read:   func() (map[string]any, error) { return expandKeys(m) },
	})
	return l
}

// File adds the JSON object in path as a layer. path may start with "~". The file is read by Load; a missing or unreadable file
// contributes nothing, and an empty one likewise.
func (l *Loader) File(path string) *Loader {
	path = ExpandPath(path)
	l.layers = append(l.layers, layer{
		origin: Origin{Kind: "file", Where: path},
		read:   func() (map[string]any, error) { return readJSON(path) },
	})
	return l
}

// NearestFile looks for name in start and each of its ancestors and adds the first non-empty match as a File layer. start defaults to
// the working directory. name must be relative.
func (l *Loader) NearestFile(name, start string) *Loader {
	if filepath.IsAbs(name) {
		panic("cascade: NearestFile name must be relative")
	}
	if path := findUpward(name, start); path != "" {
		l.File(path)
	}
	return l
}

// Env adds one layer per key, read from the variable PREFIX_KEY (dots in key become underscores, letters upper-cased). Unset or empty
// variables contribute nothing.
func (l *Loader) Env(prefix string, keys ...string) *Loader {
	for _, key := range keys {
		name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if prefix != "" {
			name = strings.ToUpper(prefix) + "_" + name
		}
		l.layers = append(l.layers, layer{
			origin: Origin{Kind: "env", Where: name},
			read: func() (map[string]any, error) {
				v := os.Getenv(name)
				if v == "" {
					return nil, nil
				}
				return expandKeys(map[string]any{key: v})
			},
		})
	}
	return l
}

// Load applies every layer to dest, which must be a non-nil pointer to a struct. It stops at the first layer that cannot be parsed
// or that holds a value its field cannot take.
func (l *Loader) Load(dest any) (Report, error) {
	report := Report{Origins: map[string]Origin{}}
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return report, fmt.Errorf("cascade: dest must be a non-nil pointer to a struct, got %T", dest)
	}

	for _, ly := range l.layers {
		m, err := ly.read()
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			continue
		}
		if err != nil {
			return report, fmt.Errorf("%s: %w", ly.origin, err)
		}
		a := applier{origin: ly.origin, report: &report}
		if err := a.object(rv.Elem(), m, ""); err != nil {
			return report, fmt.Errorf("%s: %w", ly.origin, err)
		}
	}
	return report, nil
}

func findUpward(name, start string) string {
	if start == "" {
		start, _ = os.Getwd()
	}
	if start == "" {
		return ""
	}
	start = ExpandPath(start)
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}
	for dir := start; ; {
		candidate := filepath.Join(dir, name)
		if data, err := os.ReadFile(candidate); err == nil && len(bytes.TrimSpace(data)) > 0 {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func readJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return expandKeys(m)
}

// expandKeys lowercases keys and turns "a.b": v into "a": {"b": v}, merging objects that share a prefix.
func expandKeys(m map[string]any) (map[string]any, error) {
	out := map[string]any{}
	for key, v := range m {
		if err := insert(out, strings.Split(strings.ToLower(key), "."), v, key); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func insert(obj map[string]any, parts []string, v any, full string) error {
	head := parts[0]
	if head == "" {
		return fmt.Errorf("invalid key %q", full)
	}
	if len(parts) > 1 {
		child, ok := obj[head]
		if !ok {
			child = map[string]any{}
			obj[head] = child
		}
		cm, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q conflicts with a non-object value", full)
		}
		return insert(cm, parts[1:], v, full)
	}

	if sub, ok := v.(map[string]any); ok {
		expanded, err := expandKeys(sub)
		if err != nil {
			return err
		}
		existing, ok := obj[head]
		if !ok {
			obj[head] = expanded
			return nil
		}
		em, ok := existing.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q set twice", full)
		}
		for k, sv := range expanded {
			if err := insert(em, []string{k}, sv, full+"."+k); err != nil {
				return err
			}
		}
		return nil
	}
	if _, dup := obj[head]; dup {
		return fmt.Errorf("key %q set twice", full)
	}
	obj[head] = v
	return nil
}

type applier struct {
	origin Origin
	report *Report
}

// fieldKey is the json tag name, or the lowercased field name. "-" skips the field.
func fieldKey(f reflect.StructField) string {
	if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" {
		return strings.ToLower(tag)
	}
	return strings.ToLower(f.Name)
}

func (a applier) object(sv reflect.Value, m map[string]any, base string) error {
	st := sv.Type()
	fields := map[string]int{}
	for i := range st.NumField() {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		if key := fieldKey(f); key != "-" {
			fields[key] = i
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		path := k
		if base != "" {
			path = base + "." + k
		}
		i, ok := fields[k]
		if !ok {
			a.report.Unknown = append(a.report.Unknown, fmt.Sprintf("%s (%s)", path, a.origin))
			continue
		}
		if err := a.value(sv.Field(i), m[k], path); err != nil {
			return err
		}
	}
	return nil
}

func (a applier) value(v reflect.Value, raw any, path string) error {
	if raw == nil {
		v.SetZero()
		a.report.Origins[path] = a.origin
		return nil
	}
	if rt := reflect.TypeOf(raw); rt.AssignableTo(v.Type()) {
		v.Set(reflect.ValueOf(raw))
		a.report.Origins[path] = a.origin
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return a.value(v.Elem(), raw, path)

	case reflect.Struct:
		m, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected an object, got %T", path, raw)
		}
		return a.object(v, m, path)

	case reflect.Slice:
		items, err := sliceItems(raw, v.Type().Elem().Kind(), path)
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(v.Type(), len(items), len(items))
		for i, item := range items {
			if err := a.value(out.Index(i), item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		v.Set(out)
		// Element origins are noise; the slice is replaced as a whole.
		for k := range a.report.Origins {
			if strings.HasPrefix(k, path+"[") {
				delete(a.report.Origins, k)
			}
		}
		a.report.Origins[path] = a.origin
		return nil

	default:
		if err := setScalar(v, raw); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		a.report.Origins[path] = a.origin
		return nil
	}
}

func sliceItems(raw any, elem reflect.Kind, path string) ([]any, error) {
	if s, ok := raw.(string); ok && elem == reflect.String {
		var items []any
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s: expected a list, got %T", path, raw)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func setScalar(v reflect.Value, raw any) error {
	var text string
	switch r := raw.(type) {
	case string:
		text = strings.TrimSpace(r)
		if v.Kind() == reflect.String {
			text = r
		}
	case json.Number:
		text = r.String()
	case bool:
		text = strconv.FormatBool(r)
	case int:
		text = strconv.Itoa(r)
	case int64:
		text = strconv.FormatInt(r, 10)
	case float64:
		text = strconv.FormatFloat(r, 'f', -1, 64)
	default:
		return fmt.Errorf("cannot use %T as %s", raw, v.Type())
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(text)
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return fmt.Errorf("not a bool: %q", text)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("not an integer: %q", text)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("not an unsigned integer: %q", text)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("not a number: %q", text)
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", v.Type())
	}
	return nil
}
