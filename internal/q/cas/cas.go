package cas

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const recordKind = "panediff-record-v1"

// Hasher identifies a record by hash.
type Hasher interface {
	// Hash must be filesystem-safe with no path separators.
	Hash() string
}

type stringHasher string

func (h stringHasher) Hash() string { return string(h) }

// NewBytesHasher returns a Hasher for b.
func NewBytesHasher(b []byte) Hasher {
	sum := sha256.Sum256(b)
	return stringHasher(hex.EncodeToString(sum[:]))
}

// NewKeyHasher returns a Hasher over an ordered list of key parts. Parts are length-prefixed, so ("ab", "c") and ("a", "bc") hash differently.
// Unlike a file set, order matters.
func NewKeyHasher(parts ...string) Hasher {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(parts)))
	_, _ = h.Write(buf[:])
	for _, p := range parts {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(p)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(p))
	}
	return stringHasher(hex.EncodeToString(h.Sum(nil)))
}

// DB is a filesystem-backed record store rooted at AbsRoot.
type DB struct {
	AbsRoot string
}

type record struct {
	Kind     string          `json:"kind"`
	StoredAt int64           `json:"stored_at,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// now is replaced in tests.
var now = time.Now

// Store serializes v as JSON and writes it for (namespace, hasher.Hash()). Writing an identical payload again leaves the existing file alone.
// The write is atomic: readers see either the old record or the new one.
func (db *DB) Store(hasher Hasher, namespace string, v any) error {
	hash, err := db.check(hasher, namespace)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	finalPath := db.recordPath(namespace, hash)
	if existing, err := os.ReadFile(finalPath); err == nil {
		var rec record
		if json.Unmarshal(existing, &rec) == nil && rec.Kind == recordKind && bytes.Equal(rec.Payload, payload) {
			return nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	out, err := json.Marshal(record{Kind: recordKind, StoredAt: now().Unix(), Payload: payload})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(finalPath), "cas-tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if _, err := tmp.Write(out); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, finalPath)
}

// Retrieve loads the record for (namespace, hasher.Hash()) into target, which must be a pointer accepted by json.Unmarshal. A missing record
// is reported as (false, nil).
func (db *DB) Retrieve(hasher Hasher, namespace string, target any) (bool, error) {
	hash, err := db.check(hasher, namespace)
	if err != nil {
		return false, err
	}

	b, err := os.ReadFile(db.recordPath(namespace, hash))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return false, err
	}
	if rec.Kind != recordKind {
		return false, fmt.Errorf("unknown record kind %q", rec.Kind)
	}
	if err := json.Unmarshal(rec.Payload, target); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the record for (namespace, hasher.Hash()). Deleting a missing record is not an error.
func (db *DB) Delete(hasher Hasher, namespace string) error {
	hash, err := db.check(hasher, namespace)
	if err != nil {
		return err
	}
	err = os.Remove(db.recordPath(namespace, hash))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Purge removes every record in namespace.
func (db *DB) Purge(namespace string) error {
	if db.AbsRoot == "" {
		return errors.New("DB.AbsRoot is empty")
	}
	if err := validatePathSegment("namespace", namespace); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(db.AbsRoot, namespace))
}

// Count returns the number of records stored in namespace.
func (db *DB) Count(namespace string) (int, error) {
	if db.AbsRoot == "" {
		return 0, errors.New("DB.AbsRoot is empty")
	}
	if err := validatePathSegment("namespace", namespace); err != nil {
		return 0, err
	}
	root := filepath.Join(db.AbsRoot, namespace)
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() && !strings.HasPrefix(d.Name(), "cas-tmp-") {
			n++
		}
		return nil
	})
	return n, err
}

func (db *DB) check(hasher Hasher, namespace string) (string, error) {
	if db.AbsRoot == "" {
		return "", errors.New("DB.AbsRoot is empty")
	}
	if hasher == nil {
		return "", errors.New("hasher is nil")
	}
	if err := validatePathSegment("namespace", namespace); err != nil {
		return "", err
	}
	hash := hasher.Hash()
	if err := validatePathSegment("hash", hash); err != nil {
		return "", err
	}
	if len(hash) < 3 {
		return "", fmt.Errorf("hash %q is too short", hash)
	}
	return hash, nil
}

func (db *DB) recordPath(namespace, hash string) string {
	return filepath.Join(db.AbsRoot, namespace, hash[:2], hash[2:])
}

func validatePathSegment(name, s string) error {
	if s == "" {
		return fmt.Errorf("%s is empty", name)
	}
	if strings.Contains(s, "/") || strings.Contains(s, `\`) {
		return fmt.Errorf("%s %q must not contain path separators", name, s)
	}
	if s == "." || s == ".." {
		return fmt.Errorf("%s %q is not a valid segment", name, s)
	}
	return nil
}
