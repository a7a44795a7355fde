package utils

import (
	"path/filepath"
	"reflect"
	"testing"
)

// TestDeduplicateNames verifies order preservation, trimming and empty-name removal.
func TestDeduplicateNames(testingHandle *testing.T) {
	input := []string{" build ", "dist", "", "build", "node_modules", "dist"}
	expected := []string{"build", "dist", "node_modules"}
	result := DeduplicateNames(input)
	if !reflect.DeepEqual(result, expected) {
		testingHandle.Fatalf("DeduplicateNames(%v) = %v, want %v", input, result, expected)
	}
}

// TestSplitRelativePath verifies that the root has no segments and nested paths split per directory.
func TestSplitRelativePath(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "dot", input: ".", expected: nil},
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "src", expected: []string{"src"}},
		{name: "nested", input: filepath.Join("src", "pkg", "inner"), expected: []string{"src", "pkg", "inner"}},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			result := SplitRelativePath(testCase.input)
			if !reflect.DeepEqual(result, testCase.expected) {
				subTest.Fatalf("SplitRelativePath(%q) = %v, want %v", testCase.input, result, testCase.expected)
			}
		})
	}
}

// TestDirectoryBaseName verifies that relative and trailing-slash paths resolve to the directory name.
func TestDirectoryBaseName(testingHandle *testing.T) {
	rootDirectory := filepath.Join(testingHandle.TempDir(), "my-project")
	if name := DirectoryBaseName(rootDirectory + string(filepath.Separator)); name != "my-project" {
		testingHandle.Fatalf("expected my-project, got %s", name)
	}
}
