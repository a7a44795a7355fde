// Package project assembles the context document describing a Python project.
package project

import (
	"go.uber.org/zap"

	"github.com/temirov/ctxload/internal/tree"
)

// TestingFramework names the detected test framework.
type TestingFramework string

const (
	// TestingFrameworkPytest is reported when a pytest.ini marker exists under tests.
	TestingFrameworkPytest TestingFramework = "pytest"
	// TestingFrameworkUnittest is reported when a directory path under tests mentions unittest.
	TestingFrameworkUnittest TestingFramework = "unittest"
)

const (
	// MetadataFileName is the project metadata file read from the root.
	MetadataFileName = "pyproject.toml"
	// RequirementsFileName is the plain requirements list read from the root.
	RequirementsFileName = "requirements.txt"
	// TestsDirectoryName is the directory scanned for a test framework.
	TestsDirectoryName = "tests"
)

// Context is the assembled description of one project root. Fields whose source is
// absent are left at their zero value and omitted from the encoded document.
type Context struct {
	ContextDescription  string           `json:"context_description,omitempty"`
	ProjectName         string           `json:"project_name"`
	PythonVersion       string           `json:"python_version,omitempty"`
	Dependencies        []string         `json:"dependencies,omitzero"`
	DevDependencies     []string         `json:"dev_dependencies,omitzero"`
	Requirements        []string         `json:"requirements,omitzero"`
	TestingFramework    TestingFramework `json:"testing_framework,omitempty"`
	RepositoryStructure *tree.Node       `json:"repository_structure"`
}

// Options configures an assembly.
type Options struct {
	Tree               tree.Options
	IncludeDescription bool
	Logger             *zap.Logger
}
