package definition

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-diagnostic/pkg/model"
	"github.com/goliatone/go-diagnostic/pkg/session"
)

// DefaultID identifies the embedded Session 0 diagnostic.
const DefaultID = "session0"

// Option configures the loader.
type Option func(*loaderConfig)

type loaderConfig struct {
	decorators []model.Decorator
}

// WithDecorators registers decorators applied to every loaded form after
// normalisation.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(cfg *loaderConfig) {
		cfg.decorators = append(cfg.decorators, decorators...)
	}
}

// Store holds loaded definitions keyed by form id.
type Store struct {
	forms map[string]model.FormModel
}

// LoadFS walks the provided filesystem and parses JSON/YAML definition files.
// When fsys is nil or no definition files are present, the returned store is
// empty.
func LoadFS(fsys fs.FS, options ...Option) (*Store, error) {
	cfg := &loaderConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	store := &Store{forms: make(map[string]model.FormModel)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}

		form, err := Parse(data, path)
		if err != nil {
			return err
		}
		if _, exists := store.forms[form.ID]; exists {
			return fmt.Errorf("definition: duplicate form %q (file %s)", form.ID, path)
		}
		if err := model.Apply(&form, cfg.decorators...); err != nil {
			return fmt.Errorf("definition: decorate %q: %w", form.ID, err)
		}
		store.forms[form.ID] = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Default loads the embedded Session 0 diagnostic.
func Default(options ...Option) (model.FormModel, error) {
	store, err := LoadFS(EmbeddedFS(), options...)
	if err != nil {
		return model.FormModel{}, err
	}
	form, ok := store.Form(DefaultID)
	if !ok {
		return model.FormModel{}, fmt.Errorf("definition: embedded form %q missing", DefaultID)
	}
	return form, nil
}

// LoadFile parses a single definition file from disk.
func LoadFile(fsys fs.FS, path string, options ...Option) (model.FormModel, error) {
	cfg := &loaderConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	form, err := Parse(data, path)
	if err != nil {
		return model.FormModel{}, err
	}
	if err := model.Apply(&form, cfg.decorators...); err != nil {
		return model.FormModel{}, fmt.Errorf("definition: decorate %q: %w", form.ID, err)
	}
	return form, nil
}

// Form returns the definition with the supplied id.
func (s *Store) Form(id string) (model.FormModel, bool) {
	if s == nil {
		return model.FormModel{}, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// IDs lists the loaded form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any definitions.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

// Parse decodes a JSON or YAML definition and normalises it.
func Parse(data []byte, source string) (model.FormModel, error) {
	var form model.FormModel
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.FormModel{}, fmt.Errorf("definition: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &form); err != nil {
		form = model.FormModel{}
		if err := yaml.Unmarshal(data, &form); err != nil {
			return model.FormModel{}, fmt.Errorf("definition: parse %s: invalid JSON or YAML", source)
		}
	}

	if err := normalise(&form, source); err != nil {
		return model.FormModel{}, err
	}
	return form, nil
}

func normalise(form *model.FormModel, source string) error {
	form.ID = strings.TrimSpace(form.ID)
	if form.ID == "" {
		return fmt.Errorf("definition: file %s defines an empty form id", source)
	}
	if strings.TrimSpace(form.FormName) == "" {
		form.FormName = form.ID
	}
	form.Method = strings.ToUpper(strings.TrimSpace(form.Method))
	if form.Method == "" {
		form.Method = "POST"
	}
	if len(form.Steps) == 0 {
		return fmt.Errorf("definition: form %q (file %s) has no steps", form.ID, source)
	}

	fieldNames := make(map[string]int)
	for i := range form.Steps {
		step := &form.Steps[i]
		step.Number = i + 1
		step.ID = strings.TrimSpace(step.ID)
		if step.ID == "" {
			step.ID = "step" + strconv.Itoa(step.Number)
		}
		if !session.Section(step.Section).Valid() {
			return fmt.Errorf("definition: form %q step %d has unknown section %q", form.ID, step.Number, step.Section)
		}
		if len(step.Fields) == 0 {
			return fmt.Errorf("definition: form %q step %d has no fields", form.ID, step.Number)
		}
		for j := range step.Fields {
			field := &step.Fields[j]
			if err := normaliseField(field); err != nil {
				return fmt.Errorf("definition: form %q step %d: %w", form.ID, step.Number, err)
			}
			if prev, exists := fieldNames[field.Name]; exists {
				return fmt.Errorf("definition: form %q field %q declared in steps %d and %d", form.ID, field.Name, prev, step.Number)
			}
			fieldNames[field.Name] = step.Number
		}
		for _, field := range step.Fields {
			if dep, _, ok := field.VisibleWhen(); ok {
				if _, found := step.Field(dep); !found {
					return fmt.Errorf("definition: form %q field %q depends on %q outside step %d", form.ID, field.Name, dep, step.Number)
				}
			}
		}
	}
	return nil
}

func normaliseField(field *model.Field) error {
	field.Name = strings.TrimSpace(field.Name)
	if field.Name == "" {
		return fmt.Errorf("field with empty name")
	}
	switch field.Type {
	case "":
		field.Type = model.FieldTypeString
	case model.FieldTypeString, model.FieldTypeInteger, model.FieldTypeArray:
	default:
		return fmt.Errorf("field %q has unsupported type %q", field.Name, field.Type)
	}
	if field.Type == model.FieldTypeArray && len(field.Enum) == 0 {
		return fmt.Errorf("array field %q requires enum options", field.Name)
	}
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMin, model.ValidationRuleMax:
			if _, err := strconv.ParseFloat(rule.Params["value"], 64); err != nil {
				return fmt.Errorf("field %q rule %s: invalid value %q", field.Name, rule.Kind, rule.Params["value"])
			}
		case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
			if _, err := strconv.Atoi(rule.Params["value"]); err != nil {
				return fmt.Errorf("field %q rule %s: invalid value %q", field.Name, rule.Kind, rule.Params["value"])
			}
		case model.ValidationRulePattern:
			if _, err := regexp.Compile(rule.Params["pattern"]); err != nil {
				return fmt.Errorf("field %q rule pattern: %w", field.Name, err)
			}
		default:
			return fmt.Errorf("field %q has unknown validation rule %q", field.Name, rule.Kind)
		}
	}
	return nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
