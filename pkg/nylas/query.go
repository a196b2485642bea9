package nylas

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// EncodeQuery converts loosely typed query parameters to url.Values.
//
// Slices and arrays are repeated as separate entries with the same key.
// A map[string]string becomes one "key:value" entry per pair, sorted by key.
// Nil values are skipped. Everything else is formatted with fmt.
func EncodeQuery(params map[string]any) url.Values {
	values := url.Values{}

	for key, value := range params {
		if value == nil {
			continue
		}

		switch v := value.(type) {
		case string:
			values.Add(key, v)
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case map[string]string:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}

			sort.Strings(keys)

			for _, k := range keys {
				values.Add(key, k+":"+v[k])
			}
		case fmt.Stringer:
			values.Add(key, v.String())
		default:
			rv := reflect.ValueOf(value)
			if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
				for i := range rv.Len() {
					values.Add(key, fmt.Sprint(rv.Index(i).Interface()))
				}

				continue
			}

			values.Add(key, fmt.Sprint(value))
		}
	}

	return values
}

// pathOf returns the path part of a URL string.
func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		before, _, _ := strings.Cut(raw, "?")

		return before
	}

	return u.Path
}
