// Package catalog loads the embedded effect template catalog.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/rules"
)

//go:embed effects.yaml
var embeddedCatalogFS embed.FS

// Template describes a reusable effect definition the grid client can apply
// by key instead of sending explicit modifiers.
type Template struct {
	Key       string            `yaml:"key"`
	Name      string            `yaml:"name"`
	Category  string            `yaml:"category"`
	Tag       rules.DurationTag `yaml:"tag"`
	Turns     int               `yaml:"turns"`
	Modifiers []templateMod     `yaml:"modifiers"`
}

type templateMod struct {
	Stat  rules.StatName   `yaml:"stat"`
	Op    rules.ModifierOp `yaml:"op"`
	Value float64          `yaml:"value"`
}

// Catalog is an immutable set of effect templates keyed by template key.
type Catalog struct {
	templates map[string]Template
}

// LoadEmbedded loads and validates the catalog embedded in this package.
func LoadEmbedded() (*Catalog, error) {
	return LoadFromFS(embeddedCatalogFS, "effects.yaml")
}

// LoadFromFS loads a catalog file from the provided filesystem.
func LoadFromFS(catalogFS fs.FS, path string) (*Catalog, error) {
	data, err := fs.ReadFile(catalogFS, path)
	if err != nil {
		return nil, fmt.Errorf("read effect catalog: %w", err)
	}

	var file struct {
		Effects []Template `yaml:"effects"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEffectCatalogCorrupted, "parse effect catalog", err)
	}
	if len(file.Effects) == 0 {
		return nil, apperrors.New(apperrors.CodeEffectCatalogCorrupted, "effect catalog is empty")
	}

	templates := make(map[string]Template, len(file.Effects))
	for _, tpl := range file.Effects {
		key := strings.TrimSpace(tpl.Key)
		if key == "" {
			return nil, apperrors.New(apperrors.CodeEffectCatalogCorrupted, "effect template key is required")
		}
		if _, dup := templates[key]; dup {
			return nil, apperrors.New(apperrors.CodeEffectCatalogCorrupted,
				fmt.Sprintf("duplicate effect template %q", key))
		}
		if err := tpl.toEffect("", "").Validate(); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeEffectCatalogCorrupted,
				fmt.Sprintf("invalid effect template %q", key), err)
		}
		templates[key] = tpl
	}
	return &Catalog{templates: templates}, nil
}

// Keys returns all template keys in lexical order.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.templates))
	for key := range c.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Instantiate builds an effect for a character from the named template.
func (c *Catalog) Instantiate(key, effectID, characterID string) (rules.Effect, error) {
	if c == nil {
		return rules.Effect{}, apperrors.New(apperrors.CodeEffectCatalogCorrupted, "effect catalog is not loaded")
	}
	tpl, ok := c.templates[strings.TrimSpace(key)]
	if !ok {
		return rules.Effect{}, apperrors.WithMetadata(apperrors.CodeEffectUnknownTemplate,
			fmt.Sprintf("unknown effect template %q", key),
			map[string]string{"template": key})
	}
	return tpl.toEffect(effectID, characterID), nil
}

func (t Template) toEffect(effectID, characterID string) rules.Effect {
	mods := make([]rules.Modifier, 0, len(t.Modifiers))
	for _, mod := range t.Modifiers {
		mods = append(mods, rules.Modifier{Stat: mod.Stat, Op: mod.Op, Value: mod.Value})
	}
	return rules.Effect{
		ID:          effectID,
		CharacterID: characterID,
		Name:        t.Name,
		Category:    t.Category,
		Tag:         t.Tag,
		TurnsLeft:   t.Turns,
		Modifiers:   mods,
	}
}
