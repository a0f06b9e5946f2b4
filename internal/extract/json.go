package extract

import (
	"fmt"

	"github.com/tidwall/gjson"

	"mapforge/internal/common"
	"mapforge/internal/fieldpath"
)

// FromJSON walks a JSON instance document and returns the paths of all
// scalar leaves. Only the first element of an array is inspected; an
// empty array is reported as a leaf "<prefix>[]".
func FromJSON(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrParse)
	}

	var out []string

	walkJSON(gjson.ParseBytes(data), "", &out)

	return common.SortedUnique(out), nil
}

func walkJSON(v gjson.Result, prefix string, out *[]string) {
	switch {
	case v.IsArray():
		next := prefix + fieldpath.SliceSuffix

		items := v.Array()
		if len(items) == 0 {
			*out = append(*out, next)
			return
		}

		walkJSON(items[0], next, out)
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			next := key.String()
			if prefix != "" {
				next = prefix + fieldpath.Delimiter + next
			}

			walkJSON(value, next, out)

			return true
		})
	default:
		if prefix != "" {
			*out = append(*out, prefix)
		}
	}
}
