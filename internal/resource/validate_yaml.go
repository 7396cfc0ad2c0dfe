package resource

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

var allowedResourceKeys = map[string]bool{
	"table":         true,
	"primary_key":   true,
	"fields":        true,
	"methods":       true,
	"filter_fields": true,
	"update_fields": true,
	"select_fields": true,
	"search_fields": true,
	"page_size":     true,
	"cache":         true,
}

var allowedFieldKeys = map[string]bool{
	"name":     true,
	"type":     true,
	"required": true,
	"readonly": true,
	"internal": true,
}

var allowedCacheKeys = map[string]bool{
	"key_prefix": true,
	"ttl":        true,
}

var allowedFieldTypes = map[string]bool{
	"string": true,
	"int":    true,
	"float":  true,
	"bool":   true,
	"time":   true,
	"any":    true,
}

func validateResourceNode(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("resource declaration must be a mapping (line %d)", node.Line)
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i]
		val := node.Content[i+1]
		if !allowedResourceKeys[key.Value] {
			return fmt.Errorf("unknown key %q (line %d)", key.Value, key.Line)
		}
		switch key.Value {
		case "fields":
			if err := validateFieldsNode(val); err != nil {
				return err
			}
		case "cache":
			if err := validateMappingKeys(val, allowedCacheKeys, "cache"); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateFieldsNode(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("fields must be a sequence (line %d)", node.Line)
	}
	for _, item := range node.Content {
		if err := validateMappingKeys(item, allowedFieldKeys, "field"); err != nil {
			return err
		}
		for i := 0; i < len(item.Content)-1; i += 2 {
			if item.Content[i].Value == "type" {
				t := item.Content[i+1].Value
				if !allowedFieldTypes[t] {
					return fmt.Errorf("unknown field type %q (line %d)", t, item.Content[i+1].Line)
				}
			}
		}
	}
	return nil
}

func validateMappingKeys(node *yaml.Node, allowed map[string]bool, context string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%s must be a mapping (line %d)", context, node.Line)
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i]
		if !allowed[key.Value] {
			return fmt.Errorf("unknown %s key %q (line %d)", context, key.Value, key.Line)
		}
	}
	return nil
}
