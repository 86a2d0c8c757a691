// Package config loads the runtime configuration from an optional YAML file
// and applies PROTANNOT_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"protannot/internal/extdata"
)

// Config is the full runtime configuration.
type Config struct {
	// Species selects the species from the registry.
	Species string `yaml:"species"`
	// Output is the report file path.
	Output string `yaml:"output"`
	// DataDir holds the downloaded reference datasets.
	DataDir string `yaml:"data_dir"`

	Cache    Cache    `yaml:"cache"`
	Archive  Archive  `yaml:"archive"`
	Families Families `yaml:"families"`
	Datasets Datasets `yaml:"datasets"`

	// KEGGBaseURL overrides the pathway lookup endpoint.
	KEGGBaseURL string `yaml:"kegg_base_url"`
}

// Cache selects the annotation cache blob store.
type Cache struct {
	// Driver is one of fs, s3, memory. S3 credentials and bucket come from
	// the PROTANNOT_CACHE_S3_* environment.
	Driver string `yaml:"driver"`
	// Root is the filesystem driver's directory.
	Root string `yaml:"root"`
}

// Archive selects the report archive backend. An empty driver disables
// archiving.
type Archive struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Families toggles the optional cross-reference families.
type Families struct {
	Diseases bool `yaml:"diseases"`
	Drugs    bool `yaml:"drugs"`
}

// Datasets overrides the dataset endpoints; zero fields keep the defaults.
// DedupFASTA enables the duplicate-sequence pruning pass over the fetched
// FASTA file.
type Datasets struct {
	UniProtBaseURL string `yaml:"uniprot_base_url"`
	CORUMURL       string `yaml:"corum_url"`
	PANTHERBaseURL string `yaml:"panther_base_url"`
	DedupFASTA     bool   `yaml:"dedup_fasta"`
}

// Default returns the configuration used when no file or override applies.
func Default() Config {
	return Config{
		Species: "human",
		Output:  "report.tsv",
		DataDir: "data",
		Cache:   Cache{Driver: "fs", Root: "cached"},
	}
}

// Load reads the YAML file at path (skipped when path is empty) over the
// defaults, applies environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrideString(&c.Species, "PROTANNOT_SPECIES")
	overrideString(&c.Output, "PROTANNOT_OUTPUT")
	overrideString(&c.DataDir, "PROTANNOT_DATA_DIR")
	overrideString(&c.Cache.Driver, "PROTANNOT_CACHE_DRIVER")
	overrideString(&c.Cache.Root, "PROTANNOT_CACHE_FS_ROOT")
	overrideString(&c.Archive.Driver, "PROTANNOT_ARCHIVE_DRIVER")
	overrideString(&c.Archive.SQLitePath, "PROTANNOT_ARCHIVE_SQLITE_PATH")
	overrideString(&c.Archive.PostgresDSN, "PROTANNOT_ARCHIVE_POSTGRES_DSN")
	overrideString(&c.KEGGBaseURL, "PROTANNOT_KEGG_BASE_URL")
	if err := overrideBool(&c.Datasets.DedupFASTA, "PROTANNOT_DEDUP_FASTA"); err != nil {
		return err
	}
	if err := overrideBool(&c.Families.Diseases, "PROTANNOT_FAMILY_DISEASES"); err != nil {
		return err
	}
	return overrideBool(&c.Families.Drugs, "PROTANNOT_FAMILY_DRUGS")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if _, err := extdata.LookupSpecies(c.Species); err != nil {
		return err
	}
	if c.Output == "" {
		return errors.New("output path must not be empty")
	}
	switch c.Cache.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	switch c.Archive.Driver {
	case "", "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown archive driver %q", c.Archive.Driver)
	}
	return nil
}

// SpeciesInfo resolves the configured species from the registry. Validate
// must have accepted the config first.
func (c Config) SpeciesInfo() extdata.Species {
	sp, _ := extdata.LookupSpecies(c.Species)
	return sp
}
