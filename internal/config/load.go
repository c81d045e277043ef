package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the config file base name searched for in the project dir.
const FileName = "ctxsync"

// ErrNotFound is returned when no config file could be located.
var ErrNotFound = errors.New("no ctxsync.yaml found")

// Load reads the project configuration through v.
//
// A .env file in projectDir is loaded into the process environment first so
// that ${VAR} references in the YAML can point at credentials kept out of
// version control. cfgFile, when set, wins over the search path.
func Load(v *viper.Viper, projectDir, cfgFile string) (*Project, error) {
	_ = godotenv.Load(filepath.Join(projectDir, ".env"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(projectDir)
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CTXSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("sync.parallelism", DefaultParallelism)
	v.SetDefault("sync.preview_rows", DefaultPreviewRows)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var p Project
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	p.expandEnv()
	p.applyDefaults()

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &p, nil
}

// expandEnv expands environment variables in every string field
func (p *Project) expandEnv() {
	p.Output.Databases = os.ExpandEnv(p.Output.Databases)
	p.Output.Repos = os.ExpandEnv(p.Output.Repos)

	for i := range p.Databases {
		db := &p.Databases[i]
		db.Host = os.ExpandEnv(db.Host)
		db.Database = os.ExpandEnv(db.Database)
		db.User = os.ExpandEnv(db.User)
		db.Password = os.ExpandEnv(db.Password)
		db.Path = os.ExpandEnv(db.Path)
		db.DSN = os.ExpandEnv(db.DSN)
		db.Schema = os.ExpandEnv(db.Schema)
		db.Catalog = os.ExpandEnv(db.Catalog)
		db.SchemaName = os.ExpandEnv(db.SchemaName)
		db.ProjectID = os.ExpandEnv(db.ProjectID)
		for k, val := range db.Params {
			db.Params[k] = os.ExpandEnv(val)
		}
	}
	for i := range p.Repos {
		p.Repos[i].URL = os.ExpandEnv(p.Repos[i].URL)
		p.Repos[i].Branch = os.ExpandEnv(p.Repos[i].Branch)
	}
}

func (p *Project) applyDefaults() {
	if p.Sync.Parallelism < 1 {
		p.Sync.Parallelism = DefaultParallelism
	}
	if p.Sync.PreviewRows < 1 {
		p.Sync.PreviewRows = DefaultPreviewRows
	}
	for i := range p.Databases {
		p.Databases[i].Type = strings.ToLower(strings.TrimSpace(p.Databases[i].Type))
	}
}

// Validate checks the configuration for errors
func (p *Project) Validate() error {
	seenDB := make(map[string]bool)
	for i, db := range p.Databases {
		if db.Type == "" {
			return fmt.Errorf("databases[%d].type is required", i)
		}
		if db.Name == "" {
			return fmt.Errorf("databases[%d].name is required", i)
		}
		key := db.Type + "/" + db.Name
		if seenDB[key] {
			return fmt.Errorf("duplicate database %q of type %s", db.Name, db.Type)
		}
		seenDB[key] = true

		for _, k := range db.Accessors {
			if !IsKnownAccessor(k) {
				return fmt.Errorf("database %q: unknown accessor %q", db.Name, k)
			}
		}
	}

	seenRepo := make(map[string]bool)
	for i, r := range p.Repos {
		if r.Name == "" {
			return fmt.Errorf("repos[%d].name is required", i)
		}
		if r.URL == "" {
			return fmt.Errorf("repo %q: url is required", r.Name)
		}
		if r.Name == "." || r.Name == ".." || strings.ContainsAny(r.Name, `/\`) {
			return fmt.Errorf("repo %q: name must be a single path segment", r.Name)
		}
		if seenRepo[r.Name] {
			return fmt.Errorf("duplicate repo %q", r.Name)
		}
		seenRepo[r.Name] = true
	}
	return nil
}
