package errutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Path is a JSON path into an operation result. Segments are either strings
// (object keys) or integers (list indexes).
type Path []any

// ParsePath builds a Path from a dotted string such as
// "destinationDisplayInfo.input" or "createUser.input.items.0". Segments that
// parse as non-negative integers become indexes.
func ParsePath(dotted string) Path {
	trimmed := strings.Trim(strings.TrimSpace(dotted), ".")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ".")
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
			out = append(out, idx)
			continue
		}
		out = append(out, part)
	}
	return out
}

// String renders the path in dotted form.
func (p Path) String() string {
	parts := make([]string, 0, len(p))
	for _, seg := range p {
		parts = append(parts, fmt.Sprint(seg))
	}
	return strings.Join(parts, ".")
}

// HasPrefix reports whether the first len(prefix) segments of p equal prefix
// element-wise. Strings only equal strings and indexes only equal indexes, so
// "0" never matches 0. An empty prefix matches every path, including nil.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, seg := range prefix {
		if !segmentEqual(p[i], seg) {
			return false
		}
	}
	return true
}

// UnmarshalJSON keeps numeric segments as ints.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("errutil: decode path: %w", err)
	}
	out := make(Path, 0, len(raw))
	for _, item := range raw {
		var key string
		if err := json.Unmarshal(item, &key); err == nil {
			out = append(out, key)
			continue
		}
		var idx int
		if err := json.Unmarshal(item, &idx); err != nil {
			return fmt.Errorf("errutil: path segment %s is neither string nor index", string(item))
		}
		out = append(out, idx)
	}
	*p = out
	return nil
}

func segmentEqual(a, b any) bool {
	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	if aIsString || bIsString {
		return aIsString && bIsString && as == bs
	}
	ai, aOK := segmentIndex(a)
	bi, bOK := segmentIndex(b)
	return aOK && bOK && ai == bi
}

func segmentIndex(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case float32:
		if float64(n) != math.Trunc(float64(n)) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// MatchPrefix returns the index of the first prefix (in declaration order)
// that err's path starts with. Errors without a path never match.
func MatchPrefix(err StructuredError, prefixes ...Path) (int, bool) {
	if err.Path == nil {
		return -1, false
	}
	for idx, prefix := range prefixes {
		if err.Path.HasPrefix(prefix) {
			return idx, true
		}
	}
	return -1, false
}

// SplitErrorsByPath partitions the errors carried by err into those whose path
// starts with any of prefixes and everything else. err is normalised with
// List, so nil yields two empty slices and a single error behaves like a one
// element list. Every input error lands in exactly one of the results and
// relative order is preserved.
func SplitErrorsByPath(err error, prefixes ...Path) (matched, other []StructuredError) {
	return SplitByPath(List(err), prefixes...)
}

// SplitByPath is SplitErrorsByPath for an already normalised list.
func SplitByPath(errs []StructuredError, prefixes ...Path) (matched, other []StructuredError) {
	for _, err := range errs {
		if _, ok := MatchPrefix(err, prefixes...); ok {
			matched = append(matched, err)
			continue
		}
		other = append(other, err)
	}
	return matched, other
}
