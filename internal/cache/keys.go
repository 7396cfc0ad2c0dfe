package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// ListKey derives the cache key for a list result from the resolved query
// shape. Map entries and field lists are sorted before hashing so that equal
// directives produce identical keys under any iteration order.
func ListKey(prefix string, filters, excludes map[string]any, search string, top int, bottom *int, orderBy string, fields []string) string {
	payload := map[string]any{
		"filters":  filters,
		"excludes": excludes,
		"search":   search,
		"top":      top,
		"order_by": orderBy,
		"fields":   sortedCopy(fields),
	}
	if bottom != nil {
		payload["bottom"] = *bottom
	} else {
		payload["bottom"] = nil
	}

	var b strings.Builder
	encodeCanonical(&b, payload)
	sum := sha256.Sum256([]byte(b.String()))
	return prefix + "_list_" + hex.EncodeToString(sum[:])
}

// ObjectKey derives the cache key for a single record, keyed by primary key
// and the sorted selected-field list.
func ObjectKey(prefix, pk string, fields []string) string {
	return prefix + "_object_" + pk + "_" + fieldsSuffix(fields)
}

func fieldsSuffix(fields []string) string {
	if len(fields) == 0 {
		return "none"
	}
	return strings.Join(sortedCopy(fields), ",")
}

func sortedCopy(list []string) []string {
	out := append([]string(nil), list...)
	sort.Strings(out)
	return out
}

// encodeCanonical writes a deterministic JSON rendering: object keys sorted,
// scalars via encoding/json.
func encodeCanonical(b *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			encKey, _ := json.Marshal(k)
			b.Write(encKey)
			b.WriteByte(':')
			encodeCanonical(b, v[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeCanonical(b, item)
		}
		b.WriteByte(']')
	case []string:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			enc, _ := json.Marshal(item)
			b.Write(enc)
		}
		b.WriteByte(']')
	default:
		enc, err := json.Marshal(v)
		if err != nil {
			enc, _ = json.Marshal(err.Error())
		}
		b.Write(enc)
	}
}
