package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func (r *Renderer) serialize(res Result) ([]byte, error) {
	payload, err := buildPayload(res)
	if err != nil {
		return nil, err
	}
	switch r.outputFormat {
	case OutputFormatPrettyText:
		return []byte(prettyPrint(payload)), nil
	default:
		return json.Marshal(payload)
	}
}

// buildPayload nests the result under dotted keys. Form-level names may
// themselves be dotted paths.
func buildPayload(res Result) (map[string]any, error) {
	payload := make(map[string]any)
	names := make([]string, 0, len(res.Values))
	for name := range res.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := setPath(payload, name, res.Values[name]); err != nil {
			return nil, err
		}
	}

	if err := setPath(payload, "dest.type", res.Input.Type); err != nil {
		return nil, err
	}
	if err := setPath(payload, "dest.values", []any{}); err != nil {
		return nil, err
	}
	for i, v := range res.Input.Values {
		prefix := "dest.values." + strconv.Itoa(i)
		if err := setPath(payload, prefix+".fieldID", v.FieldID); err != nil {
			return nil, err
		}
		if err := setPath(payload, prefix+".value", v.Value); err != nil {
			return nil, err
		}
	}
	if res.DisplayInfo != nil {
		_ = setPath(payload, "displayInfo.text", res.DisplayInfo.Text)
		if res.DisplayInfo.LinkURL != "" {
			_ = setPath(payload, "displayInfo.linkURL", res.DisplayInfo.LinkURL)
		}
	}
	if res.Submitted {
		payload["submitted"] = true
	}
	return payload, nil
}

// setPath writes a value using a dotted path, creating intermediate maps and
// slices as needed. Numeric segments index slices.
func setPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("tui: root map is nil")
	}
	if path == "" {
		return fmt.Errorf("tui: empty path")
	}
	segments := strings.Split(path, ".")
	child, err := assign(root[segments[0]], segments[1:], value, path)
	if err != nil {
		return err
	}
	root[segments[0]] = child
	return nil
}

func assign(container any, segments []string, value any, path string) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}
	segment := segments[0]

	if idx, err := strconv.Atoi(segment); err == nil {
		if idx < 0 {
			return nil, fmt.Errorf("tui: negative index in path %q", path)
		}
		list, ok := container.([]any)
		if container != nil && !ok {
			return nil, fmt.Errorf("tui: unexpected container for segment %q", segment)
		}
		if len(list) <= idx {
			list = append(list, make([]any, idx+1-len(list))...)
		}
		child, err := assign(list[idx], segments[1:], value, path)
		if err != nil {
			return nil, err
		}
		list[idx] = child
		return list, nil
	}

	node, ok := container.(map[string]any)
	if container != nil && !ok {
		return nil, fmt.Errorf("tui: unexpected container for segment %q", segment)
	}
	if node == nil {
		node = make(map[string]any)
	}
	child, err := assign(node[segment], segments[1:], value, path)
	if err != nil {
		return nil, err
	}
	node[segment] = child
	return node, nil
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}
