package sync

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"ctxsync/internal/config"
)

// Directory key prefixes of the output tree. Existing trees depend on them,
// so they must never change.
const (
	TypePrefix     = "type="
	DatabasePrefix = "database="
	SchemaPrefix   = "schema="
	TablePrefix    = "table="
)

// DatabaseRoot is <outputRoot>/type=<type>/database=<identifier>.
func DatabaseRoot(outputRoot string, db config.Database) string {
	return filepath.Join(outputRoot, TypePrefix+db.Type, DatabasePrefix+db.Identifier())
}

func SchemaDir(root, schema string) string {
	return filepath.Join(root, SchemaPrefix+schema)
}

func TableDir(root, schema, table string) string {
	return filepath.Join(SchemaDir(root, schema), TablePrefix+table)
}

// safeName reports whether name can be used as a single path segment.
func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// writeArtifact replaces path with content through a temp file and rename.
// It reports whether the file changed; identical content is left untouched.
func writeArtifact(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".ctxsync-tmp-*")
	if err != nil {
		return false, err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		return false, err
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return false, err
	}
	if err := tmpFile.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return false, err
	}
	return true, nil
}
