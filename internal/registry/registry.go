package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Location is one scannable site on Pandora. Immutable after load.
type Location struct {
	Name        string  `yaml:"name"`
	Lat         float64 `yaml:"lat"`
	Lon         float64 `yaml:"lon"`
	Image       string  `yaml:"image"`
	Status      string  `yaml:"status"`
	StatusColor string  `yaml:"status_color"`
}

// Stats holds display strings for a character's attributes. Values are
// free-form ("High", "9/10", "Unknown") and rendered as-is.
type Stats struct {
	Strength     string `yaml:"strength"`
	Speed        string `yaml:"speed"`
	Intelligence string `yaml:"intelligence"`
	Combat       string `yaml:"combat"`
}

// Character is one wiki entry. Immutable after load.
type Character struct {
	Name        string `yaml:"name"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
	Stats       Stats  `yaml:"stats"`
}

// Registry is the immutable location/character catalog, loaded once at
// process start. Lookups are read-only and safe for concurrent use.
type Registry struct {
	locations  map[string]Location
	characters map[string]Character
}

type registryFile struct {
	Locations  map[string]Location  `yaml:"locations"`
	Characters map[string]Character `yaml:"characters"`
}

// Load reads the registry from the YAML file at path. An empty path or a
// missing file falls back to the compiled-in defaults so the service can run
// without any data files present.
func Load(path string) (*Registry, error) {
	if path == "" {
		return defaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultRegistry(), nil
		}
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	var rf registryFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse registry file: %w", err)
	}
	if len(rf.Locations) == 0 {
		return nil, fmt.Errorf("registry file %s defines no locations", path)
	}
	r := &Registry{
		locations:  rf.Locations,
		characters: rf.Characters,
	}
	if r.characters == nil {
		r.characters = map[string]Character{}
	}
	return r, nil
}

// Location returns the location for key and whether it exists.
func (r *Registry) Location(key string) (Location, bool) {
	loc, ok := r.locations[key]
	return loc, ok
}

// Character returns the character for key. Unknown keys synthesize a
// placeholder record instead of failing: title-cased display name, an
// inferred image path, and unknown stats.
func (r *Registry) Character(key string) Character {
	if ch, ok := r.characters[key]; ok {
		return ch
	}
	return Character{
		Name:        titleCaseKey(key),
		Image:       "static/" + key + ".png",
		Description: "No intel available for this individual. RDA records pending.",
		Stats: Stats{
			Strength:     "Unknown",
			Speed:        "Unknown",
			Intelligence: "Unknown",
			Combat:       "Unknown",
		},
	}
}

// Keys returns all location keys in sorted order. Used for cache warming and
// the metrics allow-list.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.locations))
	for k := range r.locations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// titleCaseKey turns a key like "jake_sully" into "Jake Sully".
func titleCaseKey(key string) string {
	key = strings.ReplaceAll(key, "_", " ")
	key = strings.ReplaceAll(key, "-", " ")
	words := strings.Fields(key)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// defaultRegistry returns the built-in catalog used when no registry file is
// configured.
func defaultRegistry() *Registry {
	return &Registry{
		locations: map[string]Location{
			"hallelujah_mountains": {
				Name:        "Hallelujah Mountains",
				Lat:         29.13,
				Lon:         110.48,
				Image:       "https://miro.medium.com/v2/resize:fit:1400/format:webp/1*PPxE0RqyWyLXb8wAliU15g.jpeg",
				Status:      "Stable",
				StatusColor: "green",
			},
			"eastern_sea": {
				Name:        "Eastern Sea",
				Lat:         3.20,
				Lon:         73.22,
				Image:       "static/eastern_sea.png",
				Status:      "RDA Activity Detected",
				StatusColor: "red",
			},
		},
		characters: map[string]Character{
			"jake_sully": {
				Name:        "Jake Sully",
				Image:       "static/jake_sully.png",
				Description: "Former marine turned Omatikaya clan leader. Toruk Makto.",
				Stats: Stats{
					Strength:     "High",
					Speed:        "High",
					Intelligence: "Moderate",
					Combat:       "Very High",
				},
			},
			"neytiri": {
				Name:        "Neytiri",
				Image:       "static/neytiri.png",
				Description: "Daughter of Eytukan and Mo'at. Finest hunter of the Omatikaya.",
				Stats: Stats{
					Strength:     "Moderate",
					Speed:        "Very High",
					Intelligence: "High",
					Combat:       "Very High",
				},
			},
		},
	}
}
