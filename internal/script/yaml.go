package script

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a mapping node into props, keeping document order.
func (p *Props) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.AliasNode {
		value = value.Alias
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attributes must be a mapping", value.Line)
	}

	out := make(Props, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: attribute name must be a scalar", k.Line)
		}
		val, err := valueFromYAML(v)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", k.Value, err)
		}
		out = append(out, Attr{Name: k.Value, Value: val})
	}
	*p = out
	return nil
}

// MarshalYAML encodes props as an ordered mapping. Opaque values are dropped.
func (p Props) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, a := range p {
		if !a.Value.IsScalar() && a.Value.Kind != ValueNull {
			continue
		}
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: a.Name}
		v := &yaml.Node{Kind: yaml.ScalarNode}
		switch a.Value.Kind {
		case ValueString:
			v.Tag, v.Value = "!!str", a.Value.Str
		case ValueBool:
			v.Tag, v.Value = "!!bool", strconv.FormatBool(a.Value.Bool)
		case ValueNumber:
			v.Tag, v.Value = "!!float", FormatNumber(a.Value.Num)
		default:
			v.Tag, v.Value = "!!null", "null"
		}
		m.Content = append(m.Content, k, v)
	}
	return m, nil
}

func valueFromYAML(n *yaml.Node) (Value, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		return Object(fmt.Sprintf("mapping at line %d", n.Line)), nil
	case yaml.SequenceNode:
		return Object(fmt.Sprintf("sequence at line %d", n.Line)), nil
	case yaml.ScalarNode:
	default:
		return Value{}, fmt.Errorf("line %d: unsupported node", n.Line)
	}

	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Number(f), nil
	default:
		return String(n.Value), nil
	}
}
