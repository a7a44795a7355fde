package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/temirov/ctxload/internal/project"
)

// buildFixtureContext assembles the context of a small Poetry project laid out under a temporary directory.
func buildFixtureContext(testingHandle *testing.T, projectName string) project.Context {
	testingHandle.Helper()
	rootDirectory := filepath.Join(testingHandle.TempDir(), projectName)
	fixtureFiles := map[string]string{
		"pyproject.toml":            "[tool.poetry]\nname = \"" + projectName + "\"\n\n[tool.poetry.dependencies]\npython = \"^3.12\"\nhttpx = \"*\"\n\n[tool.poetry.group.dev.dependencies]\npytest = \"*\"\n",
		"README.md":                 "# " + projectName,
		"src/app/__init__.py":       "",
		"src/app/main.py":           "",
		"tests/pytest.ini":          "",
		"tests/test_main.py":        "",
		"__pycache__/main.pyc":      "",
		".git/HEAD":                 "ref: refs/heads/main",
		"tests/.pytest_cache/state": "",
	}
	for relativePath, content := range fixtureFiles {
		filePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		if makeDirError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirError != nil {
			testingHandle.Fatalf("failed to create %s: %v", filepath.Dir(filePath), makeDirError)
		}
		if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
			testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
		}
	}
	assembled, assembleError := project.Assemble(rootDirectory, project.Options{})
	if assembleError != nil {
		testingHandle.Fatalf("Assemble failed: %v", assembleError)
	}
	return assembled
}

// TestRenderJSONSingleContext snapshots the document for one project.
func TestRenderJSONSingleContext(testingHandle *testing.T) {
	rendered, renderError := RenderJSON([]project.Context{buildFixtureContext(testingHandle, "alpha")})
	if renderError != nil {
		testingHandle.Fatalf("RenderJSON failed: %v", renderError)
	}
	if !strings.HasPrefix(rendered, "{\n    \"project_name\": \"alpha\",") {
		testingHandle.Fatalf("unexpected document start:\n%s", rendered)
	}
	if !strings.HasSuffix(rendered, "}\n") {
		testingHandle.Fatalf("document should end with a newline:\n%s", rendered)
	}
	snaps.MatchSnapshot(testingHandle, rendered)
}

// TestRenderJSONMultipleContexts verifies several contexts render as an array in order.
func TestRenderJSONMultipleContexts(testingHandle *testing.T) {
	contexts := []project.Context{
		buildFixtureContext(testingHandle, "beta"),
		buildFixtureContext(testingHandle, "alpha"),
	}
	rendered, renderError := RenderJSON(contexts)
	if renderError != nil {
		testingHandle.Fatalf("RenderJSON failed: %v", renderError)
	}
	if !strings.HasPrefix(rendered, "[\n") {
		testingHandle.Fatalf("expected an array:\n%s", rendered)
	}
	betaIndex := strings.Index(rendered, `"project_name": "beta"`)
	alphaIndex := strings.Index(rendered, `"project_name": "alpha"`)
	if betaIndex < 0 || alphaIndex < 0 || betaIndex > alphaIndex {
		testingHandle.Fatalf("contexts out of order:\n%s", rendered)
	}
}

// TestRenderJSONNoContexts verifies the empty input error.
func TestRenderJSONNoContexts(testingHandle *testing.T) {
	if _, renderError := RenderJSON(nil); !errors.Is(renderError, ErrNothingToRender) {
		testingHandle.Fatalf("expected ErrNothingToRender, got %v", renderError)
	}
}

// TestRenderJSONIsByteIdentical verifies repeated renders of the same tree produce identical bytes.
func TestRenderJSONIsByteIdentical(testingHandle *testing.T) {
	assembled := buildFixtureContext(testingHandle, "gamma")
	firstRender, firstError := RenderJSON([]project.Context{assembled})
	secondRender, secondError := RenderJSON([]project.Context{assembled})
	if firstError != nil || secondError != nil {
		testingHandle.Fatalf("RenderJSON failed: %v %v", firstError, secondError)
	}
	if firstRender != secondRender {
		testingHandle.Fatalf("renders differ:\n%s\n%s", firstRender, secondRender)
	}
}

// TestRenderJSONKeepsSpecialCharactersLiteral verifies & < > are not HTML-escaped.
func TestRenderJSONKeepsSpecialCharactersLiteral(testingHandle *testing.T) {
	rootDirectory := filepath.Join(testingHandle.TempDir(), "r&d")
	filePath := filepath.Join(rootDirectory, "a&b.txt")
	if makeDirError := os.MkdirAll(rootDirectory, 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create %s: %v", rootDirectory, makeDirError)
	}
	if writeError := os.WriteFile(filePath, nil, 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
	assembled, assembleError := project.Assemble(rootDirectory, project.Options{})
	if assembleError != nil {
		testingHandle.Fatalf("Assemble failed: %v", assembleError)
	}

	rendered, renderError := RenderJSON([]project.Context{assembled})
	if renderError != nil {
		testingHandle.Fatalf("RenderJSON failed: %v", renderError)
	}
	for _, literal := range []string{`"project_name": "r&d"`, `"a&b.txt"`} {
		if !strings.Contains(rendered, literal) {
			testingHandle.Fatalf("expected %s in:\n%s", literal, rendered)
		}
	}
	if strings.Contains(rendered, `\u0026`) {
		testingHandle.Fatalf("document is HTML-escaped:\n%s", rendered)
	}
}
