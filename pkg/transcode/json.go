package transcode

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/binpack-protocol/binpack-go/pkg/binpack"
)

// ErrKeyCollision indicates two dict keys of different kinds that render to
// the same JSON object member name.
var ErrKeyCollision = errors.New("dict keys collide in JSON")

// ToJSON renders v as a JSON document.
//
// Text keys become member names as they are. Other keys are written as
// "<kind>:<display form>", so Int64(1) becomes "int:1" and cannot shadow
// Text("1").
func ToJSON(v binpack.Value) ([]byte, error) {
	tree, err := jsonTree(v, 0)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

// ToJSONIndent renders v as an indented JSON document.
func ToJSONIndent(v binpack.Value, indent string) ([]byte, error) {
	tree, err := jsonTree(v, 0)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(tree, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

func jsonTree(v binpack.Value, depth int) (any, error) {
	if depth >= binpack.DefaultMaxDepth {
		return nil, binpack.ErrNestingTooDeep
	}
	switch x := v.(type) {
	case nil, binpack.Null:
		return nil, nil
	case binpack.Bool:
		return bool(x), nil
	case binpack.Int:
		return x.V, nil
	case binpack.Float32:
		if f := x.Float(); !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0) {
			return f, nil
		}
		return jsonFloat(float64(x.Float())), nil
	case binpack.Float64:
		return jsonFloat(x.Float()), nil
	case binpack.Blob:
		return []byte(x), nil
	case binpack.Text:
		return string(x), nil
	case binpack.List:
		out := make([]any, len(x))
		for i, item := range x {
			var err error
			if out[i], err = jsonTree(item, depth+1); err != nil {
				return nil, err
			}
		}
		return out, nil
	case binpack.Dict:
		out := make(map[string]any, len(x))
		kinds := make(map[string]string, len(x))
		for _, e := range x {
			key, kind := jsonKey(e.Key)
			if prev, ok := kinds[key]; ok && prev != kind {
				return nil, fmt.Errorf("%w: %q", ErrKeyCollision, key)
			}
			kinds[key] = kind

			val, err := jsonTree(e.Val, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil
	default:
		return unsupportedText(v), nil
	}
}

func jsonFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	default:
		return f
	}
}

// jsonKey returns the member name for a dict key and the kind it was
// rendered from.
func jsonKey(k binpack.Value) (string, string) {
	switch x := k.(type) {
	case binpack.Text:
		return string(x), binpack.KindText.String()
	case nil:
		return jsonKey(binpack.Null{})
	case binpack.Null, binpack.Bool, binpack.Int, binpack.Float32, binpack.Float64,
		binpack.Blob, binpack.List, binpack.Dict:
		kind := x.Kind().String()
		return kind + ":" + x.String(), kind
	default:
		return unsupportedText(k), "unsupported"
	}
}
