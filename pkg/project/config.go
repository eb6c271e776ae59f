// Package project loads the per-project configuration written by the form
// designer: the validation rules in json/project_config.json and the page
// layouts in json/1.json, json/2.json, and so on.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"formzone-hq/indexer/pkg/pathutil"
)

const (
	// JSONFolder is the sub-folder of a project holding its JSON files.
	JSONFolder = "json"

	// ConfigFileName is the project configuration file inside JSONFolder.
	ConfigFileName = "project_config.json"
)

// FieldTypes lists the keywords accepted in field_types.
var FieldTypes = []string{"text", "integer", "decimal", "date", "email", "irish_mobile", "eircode"}

// Config is the contents of project_config.json.
type Config struct {
	// Validations are the declared rules, evaluated in order.
	Validations []Rule `json:"validations" validate:"dive"`

	// LookupList is the path of the lookup CSV. Relative paths are resolved
	// against the project folder.
	LookupList string `json:"lookup_list,omitempty"`

	// LookupPrimeIndex is the lookup CSV column used as the key.
	LookupPrimeIndex int `json:"lookup_prime_index" validate:"gte=0"`

	// BatchFolder is the default folder offered when importing a batch.
	BatchFolder string `json:"batch_folder,omitempty"`

	// FieldTypes maps field names to a type keyword checked by pkg/fieldtype.
	FieldTypes map[string]string `json:"field_types,omitempty" validate:"dive,keys,required,endkeys,oneof=text integer decimal date email irish_mobile eircode"`

	// Path is the file the config was loaded from.
	Path string `json:"-"`
}

// Rule is one declared validation.
type Rule struct {
	Strategy   string         `json:"strategy"`
	FieldNames []string       `json:"field_names" validate:"dive,required"`
	Params     map[string]any `json:"params,omitempty"`
}

var validate = validator.New()

// Load reads and validates a project config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse project config %s: %w", path, err)
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find locates json/project_config.json inside configFolder, ignoring case.
// It returns ErrNotFound when the project has no config file.
func Find(configFolder string) (string, error) {
	folder, ok := pathutil.Resolve(configFolder)
	if !ok {
		return "", fmt.Errorf("%w: project folder %s", ErrNotFound, configFolder)
	}
	jsonDir, ok := pathutil.Resolve(filepath.Join(folder, JSONFolder))
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(folder, JSONFolder))
	}
	path, ok := pathutil.FindFile(jsonDir, ConfigFileName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(jsonDir, ConfigFileName))
	}
	return path, nil
}

// LoadFromFolder finds and loads the config of the project in configFolder.
func LoadFromFolder(configFolder string) (*Config, error) {
	path, err := Find(configFolder)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Validate checks the structure of the config. Unknown strategy names are
// not an error here.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fmt.Sprint(fe.Value()),
		})
	}
	return out
}

// HasLookup reports whether a lookup list is configured.
func (c *Config) HasLookup() bool { return c.LookupList != "" }

// Save writes the config as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode project config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}
	return nil
}
