package transcode

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/binpack-protocol/binpack-go/pkg/binpack"
)

// ToYAML renders v as a YAML document. Nesting deeper than
// binpack.DefaultMaxDepth fails with binpack.ErrNestingTooDeep.
func ToYAML(v binpack.Value) ([]byte, error) {
	node, err := yamlNode(v, 0)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return data, nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlNode(v binpack.Value, depth int) (*yaml.Node, error) {
	if depth >= binpack.DefaultMaxDepth {
		return nil, binpack.ErrNestingTooDeep
	}
	switch x := v.(type) {
	case nil, binpack.Null:
		return scalar("!!null", "null"), nil
	case binpack.Bool:
		return scalar("!!bool", strconv.FormatBool(bool(x))), nil
	case binpack.Int:
		return scalar("!!int", strconv.FormatInt(x.V, 10)), nil
	case binpack.Float32:
		return scalar("!!float", yamlFloat(float64(x.Float()), 32)), nil
	case binpack.Float64:
		return scalar("!!float", yamlFloat(x.Float(), 64)), nil
	case binpack.Blob:
		return scalar("!!binary", base64.StdEncoding.EncodeToString(x)), nil
	case binpack.Text:
		return scalar("!!str", string(x)), nil
	case binpack.List:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x {
			child, err := yamlNode(item, depth+1)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case binpack.Dict:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range x {
			key, err := yamlNode(e.Key, depth+1)
			if err != nil {
				return nil, err
			}
			val, err := yamlNode(e.Val, depth+1)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, key, val)
		}
		return node, nil
	default:
		return scalar("!!str", unsupportedText(v)), nil
	}
}

func yamlFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	default:
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
}
