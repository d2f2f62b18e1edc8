package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var configSchema = jsonschema.MustCompileString("ampes-config.schema.json", schemaJSON)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("config file must have a .yaml, .yml, .toml or .json extension, got %q", ext)
	}
}

// Load reads, validates and decodes a configuration file.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	format, err := FormatFromPath(cleanPath)
	if err != nil {
		return nil, err
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes a configuration document. The document is checked against
// the embedded JSON schema first, then decoded and validated.
func Parse(data []byte, format Format) (*Config, error) {
	var (
		raw   any
		order []string
		err   error
	)
	switch format {
	case FormatYAML, FormatJSON:
		// JSON is a subset of YAML, so both go through the YAML decoder.
		raw, order, err = decodeYAML(data)
	case FormatTOML:
		raw, order, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalise config: %w", err)
	}
	var inst any
	if err := json.Unmarshal(doc, &inst); err != nil {
		return nil, fmt.Errorf("failed to normalise config: %w", err)
	}
	if err := configSchema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var file struct {
		Config
		Groups map[string]LayerGroup `json:"layer_groups"`
	}
	if err := json.Unmarshal(doc, &file); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg := file.Config
	for _, name := range order {
		g, ok := file.Groups[name]
		if !ok {
			continue
		}
		g.Name = name
		cfg.LayerGroups = append(cfg.LayerGroups, g)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(data []byte) (any, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("decode YAML: %w", err)
	}
	var raw any
	if err := root.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode YAML: %w", err)
	}

	var order []string
	if len(root.Content) > 0 {
		if groups := mappingValue(root.Content[0], "layer_groups"); groups != nil && groups.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(groups.Content); i += 2 {
				order = append(order, groups.Content[i].Value)
			}
		}
	}
	return raw, order, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func decodeTOML(data []byte) (any, []string, error) {
	raw := map[string]any{}
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode TOML: %w", err)
	}

	var order []string
	seen := map[string]bool{}
	for _, k := range md.Keys() {
		if len(k) < 2 || k[0] != "layer_groups" || seen[k[1]] {
			continue
		}
		seen[k[1]] = true
		order = append(order, k[1])
	}
	return raw, order, nil
}
