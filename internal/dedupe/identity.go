package dedupe

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/ded/internal/yamlutil"
)

// IdentitySeparator joins the stringified key values of an identity.
const IdentitySeparator = "-"

// BuildIdentity resolves every path against doc and joins the stringified
// values. The first resolution error is returned unchanged.
func BuildIdentity(doc *yaml.Node, paths []KeyPath) (string, error) {
	parts := make([]string, 0, len(paths))

	for _, p := range paths {
		v, err := Resolve(doc, p)
		if err != nil {
			return "", err
		}

		s, err := Stringify(v)
		if err != nil {
			return "", err
		}

		parts = append(parts, s)
	}

	return strings.Join(parts, IdentitySeparator), nil
}

// Stringify returns the canonical string form of a resolved value. Strings
// use their literal text, so 1 and "1" are equal. Booleans, integers and
// floats are formatted from their decoded value, so True and true, or 16 and
// 0x10, are equal as well. Null values become "null"; mappings and sequences
// become compact JSON with sorted keys.
func Stringify(n *yaml.Node) (string, error) {
	v := yamlutil.Unwrap(n)

	switch {
	case yamlutil.IsNull(v):
		return "null", nil
	case v.Kind == yaml.ScalarNode:
		return stringifyScalar(v), nil
	default:
		j, err := yamlutil.ToJSON(v)
		if err != nil {
			return "", err
		}

		return string(j), nil
	}
}

// stringifyScalar formats typed scalars from their value. Scalars that do not
// decode into their tagged type keep their literal text.
func stringifyScalar(v *yaml.Node) string {
	switch v.ShortTag() {
	case "!!bool":
		var b bool
		if err := v.Decode(&b); err == nil {
			return strconv.FormatBool(b)
		}
	case "!!int":
		var i int64
		if err := v.Decode(&i); err == nil {
			return strconv.FormatInt(i, 10)
		}

		var u uint64
		if err := v.Decode(&u); err == nil {
			return strconv.FormatUint(u, 10)
		}
	case "!!float":
		var f float64
		if err := v.Decode(&f); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}

	return v.Value
}
