// Package voice renders assistant replies as audio. Remote synthesis
// through the backend is preferred; a local engine keeps the widget
// speaking when the backend cannot.
package voice

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	voicemodel "github.com/meetvaani/vaani/internal/model/voice"
)

// Catalog holds the selectable voices and resolves which voice to try
// for a synthesis request.
type Catalog struct {
	store voicemodel.Store
}

// LoadCatalog builds the catalog. With an empty path the built-in seed
// catalog is used; otherwise the YAML file at path replaces it.
func LoadCatalog(path string) (*Catalog, error) {
	items := voicemodel.Seed()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read voices file: %w", err)
		}

		var parsed struct {
			Voices []voicemodel.Voice `yaml:"voices"`
		}
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse voices file: %w", err)
		}
		if len(parsed.Voices) == 0 {
			return nil, fmt.Errorf("voices file %s lists no voices", path)
		}
		items = parsed.Voices
	}

	return &Catalog{store: voicemodel.NewMemoryStore(items)}, nil
}

// All returns the full catalog.
func (c *Catalog) All() []voicemodel.Voice {
	return c.store.List()
}

// ByLanguage returns the voices for one language.
func (c *Catalog) ByLanguage(language string) []voicemodel.Voice {
	return c.store.ByLanguage(language)
}

// Find looks up a voice by identifier.
func (c *Catalog) Find(id string) (voicemodel.Voice, bool) {
	return c.store.FindByID(id)
}

// DefaultFor picks the preferred voice for a language: the first
// premium entry, else the first entry.
func (c *Catalog) DefaultFor(language string) (voicemodel.Voice, bool) {
	voices := c.store.ByLanguage(language)
	if len(voices) == 0 {
		return voicemodel.Voice{}, false
	}
	for _, v := range voices {
		if v.Premium {
			return v, true
		}
	}
	return voices[0], true
}

// Candidates resolves the ordered list of voices to try for a request:
// the requested voice first, then the language default, then the rest
// of the language's entries.
func (c *Catalog) Candidates(requested, language string) []voicemodel.Voice {
	aliasMap := map[string]string{
		"default":    "",
		"en_default": "priya",
		"hi_default": "vaani",
		"ta_default": "meena",
		"te_default": "lakshmi",
	}

	var candidates []voicemodel.Voice

	add := func(id string) {
		id = strings.TrimSpace(id)
		if mapped, ok := aliasMap[strings.ToLower(id)]; ok {
			id = mapped
		}
		if id == "" {
			return
		}

		v, ok := c.store.FindByID(id)
		if !ok {
			return
		}
		for _, existing := range candidates {
			if strings.EqualFold(existing.ID, v.ID) {
				return
			}
		}
		candidates = append(candidates, v)
	}

	add(requested)
	if fallback, ok := c.DefaultFor(language); ok {
		add(fallback.ID)
	}
	for _, v := range c.store.ByLanguage(language) {
		add(v.ID)
	}

	return candidates
}
