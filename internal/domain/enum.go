package domain

import (
	"fmt"
	"strings"
)

func enumName(kind string, names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, v)
	}
	return names[v]
}

func parseEnum(kind string, names []string, text []byte) (int, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q, expected one of %s", kind, string(text), strings.Join(names, ", "))
}

func marshalEnum(kind string, names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("invalid %s value %d", kind, v)
	}
	return []byte(names[v]), nil
}
