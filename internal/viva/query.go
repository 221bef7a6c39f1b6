package viva

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// buildQuery form-encodes a payload for non-POST requests.
// Null values are dropped, booleans become 1 or 0, and nested maps and slices
// are flattened as key[sub]=value. Keys are sorted.
func buildQuery(data Payload) string {
	values := url.Values{}
	for key, v := range data {
		appendQueryValue(values, key, v)
	}
	return values.Encode()
}

func appendQueryValue(values url.Values, key string, v any) {
	switch val := v.(type) {
	case nil:
		return
	case *string:
		if val != nil {
			values.Add(key, *val)
		}
	case string:
		values.Add(key, val)
	case bool:
		if val {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
	case json.Number:
		values.Add(key, val.String())
	case float64:
		values.Add(key, strconv.FormatFloat(val, 'f', -1, 64))
	case float32:
		values.Add(key, strconv.FormatFloat(float64(val), 'f', -1, 32))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendQueryValue(values, key+"["+k+"]", val[k])
		}
	case Payload:
		appendQueryValue(values, key, map[string]any(val))
	case []any:
		for i, item := range val {
			appendQueryValue(values, key+"["+strconv.Itoa(i)+"]", item)
		}
	case []string:
		for i, item := range val {
			values.Add(key+"["+strconv.Itoa(i)+"]", item)
		}
	default:
		values.Add(key, fmt.Sprint(val))
	}
}
