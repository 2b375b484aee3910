package pipcmd

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a mapping into Options, keeping document order.
// Booleans become flags, null becomes Absent and any other scalar is kept
// as its literal text.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("options: expected a mapping, got %s", nodeKindName(node.Kind))
	}

	decoded := NewOptions()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if valNode.Kind == yaml.AliasNode {
			valNode = valNode.Alias
		}
		if valNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("options: line %d: value of %q must be a scalar", valNode.Line, keyNode.Value)
		}

		switch valNode.Tag {
		case "!!bool":
			var b bool
			if err := valNode.Decode(&b); err != nil {
				return err
			}
			decoded.Set(keyNode.Value, Flag(b))
		case "!!null":
			decoded.Set(keyNode.Value, Absent())
		default:
			decoded.Set(keyNode.Value, String(valNode.Value))
		}
	}

	*o = *decoded
	return nil
}

// MarshalYAML encodes Options as a mapping in insertion order
func (o *Options) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range o.Entries() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
		val := &yaml.Node{Kind: yaml.ScalarNode}
		switch e.Value.Kind() {
		case KindFlag:
			val.Tag = "!!bool"
			val.Value = fmt.Sprintf("%t", e.Value.Bool())
		case KindString:
			val.Tag = "!!str"
			val.Value = e.Value.Text()
		default:
			val.Tag = "!!null"
			val.Value = "null"
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown node"
	}
}
