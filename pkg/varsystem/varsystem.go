package varsystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"curldeck/pkg/model/mvar"
)

const (
	varPrefix  = "{{"
	varSuffix  = "}}"
	filePrefix = "#file:"
	envPrefix  = "#env:"
)

var ErrKeyNotFound = errors.New("key not found")

// VarMap holds name -> variable bindings. It is a value type threaded through
// each call; nothing in this package keeps state across calls.
type VarMap map[string]mvar.Var

func NewVarMap(vars []mvar.Var) VarMap {
	vm := make(VarMap, len(vars))
	for _, v := range vars {
		vm[v.VarKey] = v
	}
	return vm
}

func NewVarMapFromStringMap(m map[string]string) VarMap {
	vm := make(VarMap, len(m))
	for k, v := range m {
		vm[k] = mvar.Var{VarKey: k, Value: v, Enabled: true}
	}
	return vm
}

// NewVarMapFromAnyMap flattens nested maps and slices into dotted and indexed
// keys: {"a": {"b": 1}} becomes "a.b" and {"c": [x]} becomes "c[0]".
func NewVarMapFromAnyMap(m map[string]any) VarMap {
	vm := make(VarMap, len(m))
	for k, v := range m {
		flattenInto(vm, k, v)
	}
	return vm
}

func flattenInto(vm VarMap, key string, value any) {
	switch typed := value.(type) {
	case map[string]any:
		for k, v := range typed {
			flattenInto(vm, key+"."+k, v)
		}
	case []any:
		for i, v := range typed {
			flattenInto(vm, fmt.Sprintf("%s[%d]", key, i), v)
		}
	default:
		vm[key] = mvar.Var{VarKey: key, Value: fmt.Sprint(typed), Enabled: true}
	}
}

// MergeVars merges b over a by key, preserving a's entries that b does not
// override.
func MergeVars(a, b []mvar.Var) []mvar.Var {
	seen := make(map[string]int, len(a))
	merged := make([]mvar.Var, 0, len(a)+len(b))
	for _, v := range a {
		seen[v.VarKey] = len(merged)
		merged = append(merged, v)
	}
	for _, v := range b {
		if i, ok := seen[v.VarKey]; ok {
			merged[i] = v
			continue
		}
		seen[v.VarKey] = len(merged)
		merged = append(merged, v)
	}
	return merged
}

func MergeVarMap(a, b VarMap) VarMap {
	merged := make(VarMap, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}

func (vm VarMap) Get(key string) (mvar.Var, bool) {
	v, ok := vm[key]
	return v, ok
}

// CheckIsVar reports whether s is exactly one {{...}} token.
func CheckIsVar(s string) bool {
	return strings.HasPrefix(s, varPrefix) && strings.HasSuffix(s, varSuffix)
}

// CheckStringHasAnyVarKey reports whether s contains at least one {{...}}
// token.
func CheckStringHasAnyVarKey(s string) bool {
	start := strings.Index(s, varPrefix)
	if start == -1 {
		return false
	}
	return strings.Contains(s[start+len(varPrefix):], varSuffix)
}

// GetVarKeyFromRaw strips the {{ }} wrapper from a raw token.
func GetVarKeyFromRaw(raw string) string {
	return strings.TrimSuffix(strings.TrimPrefix(raw, varPrefix), varSuffix)
}

func IsFileReference(key string) bool {
	return strings.HasPrefix(key, filePrefix)
}

func GetIsFileReferencePath(key string) string {
	return strings.TrimPrefix(key, filePrefix)
}

func IsEnvReference(key string) bool {
	return strings.HasPrefix(key, envPrefix)
}

func GetEnvReferenceName(key string) string {
	return strings.TrimPrefix(key, envPrefix)
}

// ReadFileContentAsString resolves a #file: reference to the file's content.
func ReadFileContentAsString(key string) (string, error) {
	path := GetIsFileReferencePath(key)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrKeyNotFound, key, err)
	}
	return string(data), nil
}

// ReplaceVars rewrites every {{name}} token in s. Plain names resolve from
// the map; unresolved plain tokens are left in place untouched. #env: and
// #file: references (direct, or reached through a mapped value) must resolve
// and yield ErrKeyNotFound when they cannot.
func (vm VarMap) ReplaceVars(s string) (string, error) {
	var out strings.Builder
	rest := s
	for {
		start := strings.Index(rest, varPrefix)
		if start == -1 {
			break
		}
		end := strings.Index(rest[start+len(varPrefix):], varSuffix)
		if end == -1 {
			break
		}
		key := strings.TrimSpace(rest[start+len(varPrefix) : start+len(varPrefix)+end])
		token := rest[start : start+len(varPrefix)+end+len(varSuffix)]

		out.WriteString(rest[:start])
		value, err := vm.resolveKey(key, token)
		if err != nil {
			return "", err
		}
		out.WriteString(value)
		rest = rest[start+len(varPrefix)+end+len(varSuffix):]
	}
	out.WriteString(rest)
	return out.String(), nil
}

func (vm VarMap) resolveKey(key, token string) (string, error) {
	switch {
	case IsFileReference(key):
		return ReadFileContentAsString(key)
	case IsEnvReference(key):
		return readEnvReference(key)
	}

	v, ok := vm[key]
	if !ok {
		// Unresolved tokens stay literal so the caller can see them.
		return token, nil
	}
	switch {
	case IsFileReference(v.Value):
		return ReadFileContentAsString(v.Value)
	case IsEnvReference(v.Value):
		return readEnvReference(v.Value)
	}
	return v.Value, nil
}

func readEnvReference(key string) (string, error) {
	name := GetEnvReferenceName(key)
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrKeyNotFound, name)
	}
	return value, nil
}
