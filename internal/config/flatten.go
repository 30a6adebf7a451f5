package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExtensionConfig flattens the nested extensions mapping into the
// dot-keyed string form the engine's AnalysisContext consumes:
//
//	extensions:
//	  apidrift:
//	    filter:
//	      exclude: "^internal/"
//
// becomes {"apidrift.filter.exclude": "^internal/"}.
func (c *Config) ExtensionConfig() map[string]string {
	out := map[string]string{}
	flatten("", c.Extensions, out)

	return out
}

// LoadExtensionFile reads a standalone YAML document of extension
// settings and flattens it the same way.
func LoadExtensionFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extension config: %w", err)
	}

	var doc map[string]any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse extension config: %w", err)
	}

	out := map[string]string{}
	flatten("", doc, out)

	return out, nil
}

func flatten(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			flatten(join(prefix, key), child, out)
		}
	case map[any]any:
		for key, child := range v {
			flatten(join(prefix, fmt.Sprint(key)), child, out)
		}
	case nil:
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}
