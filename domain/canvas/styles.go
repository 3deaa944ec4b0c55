package canvas

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var stylesYAML []byte

// NodeStyle holds the visual attributes for a node type
type NodeStyle struct {
	Color string `yaml:"color" json:"color"`
	Size  int    `yaml:"size" json:"size"`
	Shape string `yaml:"shape" json:"shape"`
}

// StyleTable maps node types to styles, with a default for types
// missing from the table.
type StyleTable struct {
	Default NodeStyle            `yaml:"default"`
	Types   map[string]NodeStyle `yaml:"types"`
}

// StyleFor returns the style for a node type, falling back to the
// default.
func (t *StyleTable) StyleFor(nodeType string) NodeStyle {
	if style, ok := t.Types[nodeType]; ok {
		return style
	}
	return t.Default
}

// LoadStyles parses the embedded style table
func LoadStyles() (*StyleTable, error) {
	var table StyleTable
	if err := yaml.Unmarshal(stylesYAML, &table); err != nil {
		return nil, fmt.Errorf("failed to parse style table: %w", err)
	}
	if table.Types == nil {
		table.Types = map[string]NodeStyle{}
	}
	return &table, nil
}
