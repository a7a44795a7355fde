package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrMalformedMetadata wraps parse failures of the metadata file.
var ErrMalformedMetadata = errors.New("malformed project metadata")

const pythonDependencyName = "python"

var (
	poetryPath                = []string{"tool", "poetry"}
	poetryDependenciesPath    = []string{"tool", "poetry", "dependencies"}
	poetryDevGroupPath        = []string{"tool", "poetry", "group", "dev", "dependencies"}
	poetryLegacyDevPath       = []string{"tool", "poetry", "dev-dependencies"}
	projectTablePath          = []string{"project"}
	projectOptionalDepsPath   = []string{"project", "optional-dependencies"}
	projectDevOptionalDepsKey = "dev"
)

// pyProject holds the fields read from pyproject.toml.
type pyProject struct {
	Name            string
	PythonVersion   string
	Dependencies    []string
	DevDependencies []string
}

// readPyProject parses the metadata file. It reports false when the file does not exist.
func readPyProject(path string) (pyProject, bool, error) {
	data, readError := os.ReadFile(path)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return pyProject{}, false, nil
		}
		return pyProject{}, false, fmt.Errorf("read %s: %w", path, readError)
	}
	return parsePyProject(path, string(data))
}

func parsePyProject(path string, data string) (pyProject, bool, error) {
	var document map[string]any
	metadata, decodeError := toml.Decode(data, &document)
	if decodeError != nil {
		return pyProject{}, true, fmt.Errorf("%w %s: %w", ErrMalformedMetadata, path, decodeError)
	}
	declaredKeys := metadata.Keys()

	poetry := lookupTable(document, poetryPath...)
	project := lookupTable(document, projectTablePath...)

	result := pyProject{
		Name:          firstNonEmpty(lookupString(poetry, "name"), lookupString(project, "name")),
		PythonVersion: firstNonEmpty(poetryPythonVersion(document), lookupString(project, "requires-python")),
	}

	// [tool.poetry] may exist without dependency tables; each list falls back to [project] on its own.
	if dependencies := lookupTable(document, poetryDependenciesPath...); dependencies != nil {
		result.Dependencies = tableKeysInOrder(declaredKeys, poetryDependenciesPath, dependencies)
	} else {
		result.Dependencies = requirementNames(lookupArray(project, "dependencies"))
	}

	switch {
	case lookupTable(document, poetryDevGroupPath...) != nil:
		result.DevDependencies = tableKeysInOrder(declaredKeys, poetryDevGroupPath, lookupTable(document, poetryDevGroupPath...))
	case lookupTable(document, poetryLegacyDevPath...) != nil:
		result.DevDependencies = tableKeysInOrder(declaredKeys, poetryLegacyDevPath, lookupTable(document, poetryLegacyDevPath...))
	default:
		result.DevDependencies = requirementNames(lookupArray(lookupTable(document, projectOptionalDepsPath...), projectDevOptionalDepsKey))
	}
	return result, true, nil
}

// tableKeysInOrder returns the names declared directly inside the table at tablePath in
// document order. A dotted key such as foo.version contributes foo. Names present in the
// decoded table but missing from declaredKeys are appended in lexical order. The result is
// never nil.
func tableKeysInOrder(declaredKeys []toml.Key, tablePath []string, table map[string]any) []string {
	names := []string{}
	seen := map[string]struct{}{}
	for _, key := range declaredKeys {
		if len(key) <= len(tablePath) || !hasPrefix(key, tablePath) {
			continue
		}
		name := key[len(tablePath)]
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	var missing []string
	for name := range table {
		if _, exists := seen[name]; !exists {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return append(names, missing...)
}

func hasPrefix(key toml.Key, prefix []string) bool {
	for index, segment := range prefix {
		if key[index] != segment {
			return false
		}
	}
	return true
}

// poetryPythonVersion reads the python constraint, which may be a string or a table with a version key.
func poetryPythonVersion(document map[string]any) string {
	dependencies := lookupTable(document, poetryDependenciesPath...)
	if dependencies == nil {
		return ""
	}
	switch typed := dependencies[pythonDependencyName].(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]any:
		return lookupString(typed, "version")
	default:
		return ""
	}
}

// requirementNames reduces PEP 508 requirement strings to package names. The result is never nil.
func requirementNames(requirements []any) []string {
	names := []string{}
	for _, requirement := range requirements {
		text, isString := requirement.(string)
		if !isString {
			continue
		}
		if name := requirementName(text); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// requirementName returns the package name of a requirement such as "requests[socks]>=2.0; python_version<'3.8'".
func requirementName(requirement string) string {
	trimmed := strings.TrimSpace(requirement)
	if index := strings.IndexAny(trimmed, " \t;[(<>=!~@"); index >= 0 {
		trimmed = trimmed[:index]
	}
	return strings.TrimSpace(trimmed)
}

func lookupTable(document map[string]any, path ...string) map[string]any {
	current := document
	for _, segment := range path {
		if current == nil {
			return nil
		}
		next, isTable := current[segment].(map[string]any)
		if !isTable {
			return nil
		}
		current = next
	}
	return current
}

func lookupString(table map[string]any, key string) string {
	if table == nil {
		return ""
	}
	value, isString := table[key].(string)
	if !isString {
		return ""
	}
	return strings.TrimSpace(value)
}

func lookupArray(table map[string]any, key string) []any {
	if table == nil {
		return nil
	}
	value, isArray := table[key].([]any)
	if !isArray {
		return nil
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
