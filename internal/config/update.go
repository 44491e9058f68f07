package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aegisops/aegis/internal/errors"
	"gopkg.in/yaml.v3"
)

// Keys returns every settable config key in dotted form, sorted.
func Keys() []string {
	keys := newViper().AllKeys()
	sort.Strings(keys)
	return keys
}

// Set updates a single dotted key (e.g. "dashboard.sample_every") in the
// config file at path. It preserves the existing YAML structure and comments,
// and leaves the file untouched when the new value fails validation.
func Set(path, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !isKnownKey(key) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown config key '%s'", key),
			"Valid keys: "+strings.Join(Keys(), ", "))
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file: "+path,
			"Run 'aegis config init' to create one")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(original, &root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config file: "+path,
			"Check the YAML syntax")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			"Config file is not a YAML mapping: "+path,
			"Regenerate it with 'aegis config init --force'")
	}

	node := root.Content[0]
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next := findMapValue(node, part)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalar(part), next)
		}
		if next.Kind != yaml.MappingNode {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' in %s is not a mapping", part, path),
				"Fix the file by hand or regenerate it with 'aegis config init --force'")
		}
		node = next
	}

	// String-typed keys keep a string tag so values like "true" stay quoted.
	tag := ""
	if _, ok := newViper().Get(key).(string); ok {
		tag = "!!str"
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Tag = tag
		existing.Style = 0
		existing.Content = nil
		existing.Value = value
	} else {
		node.Content = append(node.Content, scalar(leaf), &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value})
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	if err := encoder.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check file permissions")
	}

	if _, err := Load(path); err != nil {
		if restoreErr := os.WriteFile(path, original, 0o644); restoreErr != nil {
			return errors.WrapWithCode(restoreErr, errors.ErrConfig,
				"Failed to restore config file after a rejected change: "+path,
				"Check the file by hand")
		}
		return err
	}
	return nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
