package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"drawboard/internal/geometry"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func requireString(args map[string]any, key string) (string, error) {
	v := argString(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// argFloat returns a numeric argument; JSON numbers arrive as float64.
func argFloat(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func argInt(args map[string]any, key string, def int) int {
	if v, ok := argFloat(args, key); ok {
		return int(v)
	}
	return def
}

// argIDs splits a comma-separated id list.
func argIDs(args map[string]any, key string) []string {
	var ids []string
	for _, id := range strings.Split(argString(args, key), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// argInts parses a comma-separated integer list such as cell indices.
func argInts(args map[string]any, key string) ([]int, error) {
	var out []int
	for _, part := range argIDs(args, key) {
		var n int
		if _, err := fmt.Sscanf(part, "%d", &n); err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", key, part)
		}
		out = append(out, n)
	}
	return out, nil
}

// argBox reads x/y/width/height. ok is false when no position was given.
func argBox(args map[string]any) (geometry.Box, bool) {
	x, hasX := argFloat(args, "x")
	y, hasY := argFloat(args, "y")
	w, _ := argFloat(args, "width")
	h, _ := argFloat(args, "height")
	return geometry.Box{X: x, Y: y, W: w, H: h}, hasX && hasY
}
