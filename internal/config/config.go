package config

import (
	"path/filepath"
	"strings"
)

// AccessorKind names one markdown artifact generated per table.
type AccessorKind string

const (
	AccessorColumns     AccessorKind = "columns"
	AccessorDescription AccessorKind = "description"
	AccessorPreview     AccessorKind = "preview"
	AccessorProfiling   AccessorKind = "profiling"
)

// AllAccessorKinds lists every known kind in canonical output order.
var AllAccessorKinds = []AccessorKind{
	AccessorColumns,
	AccessorDescription,
	AccessorPreview,
	AccessorProfiling,
}

// DefaultAccessorKinds is used when a database does not list any accessors.
// Profiling issues several queries per column, so it is opt-in.
var DefaultAccessorKinds = []AccessorKind{
	AccessorColumns,
	AccessorDescription,
	AccessorPreview,
}

const (
	DefaultDatabasesDir = "databases"
	DefaultReposDir     = "repos"
	DefaultPreviewRows  = 10
	DefaultParallelism  = 1
)

// Project is the whole ctxsync.yaml document.
type Project struct {
	ProjectName string     `mapstructure:"project_name" yaml:"project_name"`
	Databases   []Database `mapstructure:"databases" yaml:"databases"`
	Repos       []Repo     `mapstructure:"repos" yaml:"repos"`
	Output      Output     `mapstructure:"output" yaml:"output"`
	Sync        Settings   `mapstructure:"sync" yaml:"sync"`
}

// Output overrides provider output directories. Keys are the provider
// default directory names ("databases", "repos").
type Output struct {
	Databases string `mapstructure:"databases" yaml:"databases,omitempty"`
	Repos     string `mapstructure:"repos" yaml:"repos,omitempty"`
}

// Settings tunes the sync run itself.
type Settings struct {
	Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
	PreviewRows int `mapstructure:"preview_rows" yaml:"preview_rows"`
}

// Database describes one database connection to materialize.
type Database struct {
	Type     string            `mapstructure:"type" yaml:"type"`
	Name     string            `mapstructure:"name" yaml:"name"`
	Host     string            `mapstructure:"host" yaml:"host,omitempty"`
	Port     int               `mapstructure:"port" yaml:"port,omitempty"`
	Database string            `mapstructure:"database" yaml:"database,omitempty"`
	User     string            `mapstructure:"user" yaml:"user,omitempty"`
	Password string            `mapstructure:"password" yaml:"password,omitempty"`
	Path     string            `mapstructure:"path" yaml:"path,omitempty"`
	DSN      string            `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Params   map[string]string `mapstructure:"params" yaml:"params,omitempty"`

	// Schema pins the sync to a single schema instead of enumerating them.
	Schema string `mapstructure:"schema" yaml:"schema,omitempty"`

	// Warehouse-specific names; they only select the database= folder.
	Catalog    string `mapstructure:"catalog" yaml:"catalog,omitempty"`         // databricks
	SchemaName string `mapstructure:"schema_name" yaml:"schema_name,omitempty"` // athena
	ProjectID  string `mapstructure:"project_id" yaml:"project_id,omitempty"`   // bigquery

	Include   []string       `mapstructure:"include" yaml:"include,omitempty"`
	Exclude   []string       `mapstructure:"exclude" yaml:"exclude,omitempty"`
	Accessors []AccessorKind `mapstructure:"accessors" yaml:"accessors,omitempty"`
}

// Repo describes one git repository to clone or update.
type Repo struct {
	Name   string `mapstructure:"name" yaml:"name"`
	URL    string `mapstructure:"url" yaml:"url"`
	Branch string `mapstructure:"branch" yaml:"branch,omitempty"`
}

// Identifier returns the name used for the database= folder.
func (d Database) Identifier() string {
	switch d.Type {
	case "sqlite", "duckdb":
		if d.Path == "" || d.Path == ":memory:" {
			return "memory"
		}
		base := filepath.Base(d.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case "databricks":
		return firstNonEmpty(d.Catalog, "main")
	case "athena":
		return firstNonEmpty(d.SchemaName, d.Schema, "default")
	case "bigquery":
		return firstNonEmpty(d.ProjectID, d.Name)
	default:
		if d.Database != "" {
			return d.Database
		}
		return d.Name
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// AccessorKinds returns the configured accessor kinds, or the defaults.
func (d Database) AccessorKinds() []AccessorKind {
	if len(d.Accessors) == 0 {
		return DefaultAccessorKinds
	}
	return d.Accessors
}

// OutputDir returns the configured directory for a provider, falling back
// to its default directory name.
func (p *Project) OutputDir(defaultDir string) string {
	switch defaultDir {
	case DefaultDatabasesDir:
		if p.Output.Databases != "" {
			return p.Output.Databases
		}
	case DefaultReposDir:
		if p.Output.Repos != "" {
			return p.Output.Repos
		}
	}
	return defaultDir
}

// Masked returns a copy with secrets replaced, for display.
func (p *Project) Masked() *Project {
	out := *p
	out.Databases = make([]Database, len(p.Databases))
	for i, db := range p.Databases {
		if db.Password != "" {
			db.Password = "********"
		}
		if db.DSN != "" {
			db.DSN = "********"
		}
		out.Databases[i] = db
	}
	return &out
}

// IsKnownAccessor reports whether k is one of AllAccessorKinds.
func IsKnownAccessor(k AccessorKind) bool {
	for _, known := range AllAccessorKinds {
		if k == known {
			return true
		}
	}
	return false
}
