package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"GrestAPI/internal/logger"

	"gopkg.in/yaml.v3"
)

// LoadResourcesFromDir reads every *.yml declaration in dir and registers it
// under the file's base name.
func LoadResourcesFromDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		res, err := ParseResource(name, data)
		if err != nil {
			return fmt.Errorf("resource %s: %w", path, err)
		}
		Registry[name] = res
		logger.Info("resource_loaded", map[string]any{
			"resource": name,
			"table":    res.Table,
			"fields":   len(res.Fields),
		})
	}
	return nil
}

// ParseResource decodes a single YAML declaration. The document is first
// validated structurally via yaml.Node so that typos in keys fail loudly
// instead of decoding to zero values.
func ParseResource(name string, data []byte) (*Resource, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty YAML document")
	}
	if err := validateResourceNode(root.Content[0]); err != nil {
		return nil, err
	}

	var res Resource
	if err := root.Decode(&res); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	res.Name = name
	res.applyDefaults()
	return &res, nil
}
