// Package config loads and validates the architecture file that declares
// kinds, their members and constraints, and the instances placed in the
// project.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileNames are the architecture file names Find looks for, in order.
var FileNames = []string{"archcheck.yaml", "archcheck.yml", "archcheck.toml"}

// ErrNoConfig is returned by Find when no architecture file exists.
var ErrNoConfig = errors.New("no architecture file found")

// Config is a parsed architecture file.
type Config struct {
	// Root is the project root relative to the file's directory.
	Root      string          `yaml:"root,omitempty" toml:"root" json:"root,omitempty" validate:"omitempty,relpath"`
	Languages []string        `yaml:"languages,omitempty" toml:"languages" json:"languages,omitempty" validate:"dive,oneof=typescript tsx javascript"`
	Exclude   []string        `yaml:"exclude,omitempty" toml:"exclude" json:"exclude,omitempty" jsonschema:"description=gitignore-style patterns excluded from discovery"`
	Kinds     map[string]Kind `yaml:"kinds" toml:"kinds" json:"kinds" jsonschema:"required" validate:"required,min=1,dive"`
	Instances []Instance      `yaml:"instances" toml:"instances" json:"instances" jsonschema:"required" validate:"required,min=1,dive"`

	path string
}

// Kind is a reusable architectural shape.
type Kind struct {
	Scope   string   `yaml:"scope,omitempty" toml:"scope" json:"scope,omitempty" jsonschema:"enum=folder,enum=file" validate:"omitempty,oneof=folder file"`
	Members []Member `yaml:"members,omitempty" toml:"members" json:"members,omitempty" validate:"dive"`
	// Constraints maps constraint names to values. Nested maps group
	// constraints by namespace, e.g. filesystem.mirrors.
	Constraints map[string]any `yaml:"constraints,omitempty" toml:"constraints" json:"constraints,omitempty"`
}

// Member is a named part of a kind. Path is relative to the enclosing
// location and defaults to the member name.
type Member struct {
	Name    string   `yaml:"name" toml:"name" json:"name" jsonschema:"required" validate:"required,excludesall=./"`
	Path    string   `yaml:"path,omitempty" toml:"path" json:"path,omitempty" validate:"omitempty,relpath"`
	Kind    string   `yaml:"kind,omitempty" toml:"kind" json:"kind,omitempty"`
	Pure    bool     `yaml:"pure,omitempty" toml:"pure" json:"pure,omitempty"`
	Members []Member `yaml:"members,omitempty" toml:"members" json:"members,omitempty" validate:"dive"`
}

// Instance places a kind at a project location.
type Instance struct {
	Name string `yaml:"name" toml:"name" json:"name" jsonschema:"required" validate:"required,excludesall=./"`
	Kind string `yaml:"kind" toml:"kind" json:"kind" jsonschema:"required" validate:"required"`
	Path string `yaml:"path" toml:"path" json:"path" jsonschema:"required" validate:"required,relpath"`
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string { return c.path }

// Dir returns the directory of the config file, or "." when parsed from bytes.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// ProjectRoot returns the absolute-or-relative project root: Root joined to
// the config file's directory.
func (c *Config) ProjectRoot() string {
	if c.Root == "" {
		return c.Dir()
	}
	return filepath.Join(c.Dir(), filepath.FromSlash(c.Root))
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("relpath", validateRelPath)
}

// validateRelPath accepts slash paths that stay inside the project.
func validateRelPath(fl validator.FieldLevel) bool {
	p := strings.ReplaceAll(fl.Field().String(), "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// Find looks for an architecture file in dir and then in each parent.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for {
		for _, name := range FileNames {
			p := filepath.Join(abs, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w in %s or its parents", ErrNoConfig, dir)
		}
		abs = parent
	}
}

// Load reads, decodes and validates the architecture file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data, Format(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Format returns "toml" for .toml files and "yaml" otherwise.
func Format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// Parse decodes data in the given format ("yaml" or "toml") and validates it.
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		for _, k := range md.Undecoded() {
			// Constraint values decode as free-form data; nested tables below
			// them may still be listed as undecoded.
			if len(k) > 3 && k[0] == "kinds" && k[2] == "constraints" {
				continue
			}
			return nil, fmt.Errorf("decode toml: unknown field %q", k.String())
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field rules and cross references.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	var errs []error
	seen := make(map[string]bool, len(c.Instances))
	for _, inst := range c.Instances {
		if seen[inst.Name] {
			errs = append(errs, fmt.Errorf("duplicate instance %q", inst.Name))
		}
		seen[inst.Name] = true
		if _, ok := c.Kinds[inst.Kind]; !ok {
			errs = append(errs, fmt.Errorf("instance %q: unknown kind %q", inst.Name, inst.Kind))
		}
	}
	for name, k := range c.Kinds {
		errs = append(errs, c.checkMembers("kind "+name, k.Members)...)
	}
	return errors.Join(errs...)
}

func (c *Config) checkMembers(where string, members []Member) []error {
	var errs []error
	names := make(map[string]bool, len(members))
	for _, m := range members {
		if names[m.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate member %q", where, m.Name))
		}
		names[m.Name] = true
		if m.Kind != "" {
			if _, ok := c.Kinds[m.Kind]; !ok {
				errs = append(errs, fmt.Errorf("%s: member %q has unknown kind %q", where, m.Name, m.Kind))
			}
		}
		errs = append(errs, c.checkMembers(where+"."+m.Name, m.Members)...)
	}
	return errs
}
