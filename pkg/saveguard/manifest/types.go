package manifest

import "gopkg.in/yaml.v2"

// Game is one manifest entry. Only the files map drives detection; the
// registry section is platform-specific metadata carried through but not
// used here. Unknown fields are ignored, missing optional fields default.
type Game struct {
	Files    map[string]FileEntry   `yaml:"files"`
	Registry map[string]interface{} `yaml:"registry"`
}

// FileEntry is the metadata attached to one path template.
type FileEntry struct {
	Tags []string      `yaml:"tags"`
	When []interface{} `yaml:"when"`
}

// parse decodes a manifest document. The upstream data is loosely
// structured and externally authored, so decoding is strictly
// all-or-nothing: any error yields an empty catalog instead of a
// partially populated one.
func parse(content []byte) map[string]Game {
	if len(content) == 0 {
		return map[string]Game{}
	}

	var games map[string]Game
	if err := yaml.Unmarshal(content, &games); err != nil {
		logger.Warn("manifest parse failed, using empty catalog", "error", err)
		return map[string]Game{}
	}
	if games == nil {
		return map[string]Game{}
	}
	return games
}
