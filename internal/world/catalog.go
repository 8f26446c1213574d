// Package world holds the catalog of worlds and the clips each world can
// show. A clip id is the state id the intent compiler produces.
package world

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Clip struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	VideoURL    string `yaml:"video_url" json:"video_url"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type World struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Description   string `yaml:"description" json:"description"`
	Style         Style  `yaml:"style" json:"style"`
	CoverImage    string `yaml:"cover_image" json:"cover_image"`
	Clips         []Clip `yaml:"clips" json:"clips"`
	DefaultClipID string `yaml:"default_clip_id" json:"default_clip_id"`
}

func (w *World) Clip(id string) (Clip, bool) {
	for _, clip := range w.Clips {
		if clip.ID == id {
			return clip, true
		}
	}
	return Clip{}, false
}

// ResolveClip maps a state id to the clip to show. Unknown ids fall back to
// the first clip of the world.
func (w *World) ResolveClip(stateID string) Clip {
	if clip, ok := w.Clip(stateID); ok {
		return clip
	}
	if len(w.Clips) == 0 {
		return Clip{}
	}
	return w.Clips[0]
}

type Catalog struct {
	Worlds []World `yaml:"worlds"`

	index map[string]int
}

func NewCatalog(worlds []World) (*Catalog, error) {
	c := &Catalog{Worlds: worlds}
	if err := validateCatalog(c); err != nil {
		return nil, err
	}
	c.buildIndex()
	return c, nil
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading world catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("loading world catalog: %w", err)
	}

	if err := validateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("loading world catalog: %w", err)
	}
	catalog.buildIndex()

	return &catalog, nil
}

func (c *Catalog) Get(id string) (*World, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.Worlds[i], true
}

func (c *Catalog) List() []World {
	if c == nil {
		return nil
	}
	out := make([]World, len(c.Worlds))
	copy(out, c.Worlds)
	return out
}

func (c *Catalog) buildIndex() {
	c.index = make(map[string]int, len(c.Worlds))
	for i, w := range c.Worlds {
		c.index[w.ID] = i
	}
}

func validateCatalog(c *Catalog) error {
	if len(c.Worlds) == 0 {
		return fmt.Errorf("at least one world is required")
	}

	seen := make(map[string]struct{})
	for i, w := range c.Worlds {
		if strings.TrimSpace(w.ID) == "" {
			return fmt.Errorf("world %d id is required", i)
		}
		if _, exists := seen[w.ID]; exists {
			return fmt.Errorf("duplicate world id: %s", w.ID)
		}
		seen[w.ID] = struct{}{}

		if len(w.Clips) == 0 {
			return fmt.Errorf("world %s has no clips", w.ID)
		}
		clipIDs := make(map[string]struct{})
		for j, clip := range w.Clips {
			if strings.TrimSpace(clip.ID) == "" {
				return fmt.Errorf("world %s clip %d id is required", w.ID, j)
			}
			if _, exists := clipIDs[clip.ID]; exists {
				return fmt.Errorf("world %s has duplicate clip: %s", w.ID, clip.ID)
			}
			clipIDs[clip.ID] = struct{}{}
		}
		if strings.TrimSpace(w.DefaultClipID) == "" {
			return fmt.Errorf("world %s default clip is required", w.ID)
		}
	}

	return nil
}
