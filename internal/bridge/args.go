package bridge

import (
	"crb/internal/engine"
	"crb/internal/errors"
)

// Argument extraction over the raw MCP arguments map. MCP clients send
// numbers as float64 and omit optional keys entirely; every helper handles
// both. Invalid required arguments are InvalidInput, never transport errors.

func stringArg(args map[string]interface{}, key string, required bool) (string, error) {
	val, ok := args[key]
	if !ok {
		if required {
			return "", errors.Newf(errors.InvalidInput, "%s parameter is required", key)
		}
		return "", nil
	}
	str, ok := val.(string)
	if !ok {
		return "", errors.Newf(errors.InvalidInput, "%s must be a string", key)
	}
	if required && str == "" {
		return "", errors.Newf(errors.InvalidInput, "%s cannot be empty", key)
	}
	return str, nil
}

func intArg(args map[string]interface{}, key string, required bool) (int, error) {
	val, ok := args[key]
	if !ok {
		if required {
			return 0, errors.Newf(errors.InvalidInput, "%s parameter is required", key)
		}
		return 0, nil
	}
	// MCP sends numbers as float64.
	switch n := val.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, errors.Newf(errors.InvalidInput, "%s must be a number", key)
}

func intArgDefault(args map[string]interface{}, key string, defaultVal int) int {
	n, err := intArg(args, key, false)
	if err != nil {
		return defaultVal
	}
	if _, ok := args[key]; !ok {
		return defaultVal
	}
	return n
}

func boolArg(args map[string]interface{}, key string, defaultVal bool) bool {
	val, ok := args[key]
	if !ok {
		return defaultVal
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return defaultVal
}

func stringsArg(args map[string]interface{}, key string) []string {
	val, ok := args[key]
	if !ok {
		return nil
	}
	arr, ok := val.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// severitiesArg parses the optional severity filter. An unrecognized
// severity name is InvalidInput rather than a silent no-match filter.
func severitiesArg(args map[string]interface{}, key string) ([]engine.Severity, error) {
	raw := stringsArg(args, key)
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]engine.Severity, 0, len(raw))
	for _, s := range raw {
		sev, ok := engine.ParseSeverity(s)
		if !ok {
			return nil, errors.Newf(errors.InvalidInput, "unknown severity %q", s)
		}
		out = append(out, sev)
	}
	return out, nil
}
