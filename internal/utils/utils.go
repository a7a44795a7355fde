// Package utils contains general helpers shared across ctxload.
package utils

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// DeduplicateNames trims each name, drops empty ones and removes duplicates while preserving order.
// The first occurrence of each unique name is kept.
func DeduplicateNames(names []string) []string {
	trimmedNames := lo.Compact(lo.Map(names, func(name string, _ int) string {
		return strings.TrimSpace(name)
	}))
	return lo.Uniq(trimmedNames)
}

// SplitRelativePath splits a root-relative path into its segments.
// The root itself ("." or "") has no segments.
func SplitRelativePath(relativePath string) []string {
	cleanPath := filepath.ToSlash(filepath.Clean(relativePath))
	if cleanPath == "." || cleanPath == "" {
		return nil
	}
	return strings.Split(cleanPath, "/")
}

// DirectoryBaseName returns the base name of the cleaned absolute form of directoryPath.
func DirectoryBaseName(directoryPath string) string {
	absolutePath, absoluteError := filepath.Abs(directoryPath)
	if absoluteError != nil {
		return filepath.Base(filepath.Clean(directoryPath))
	}
	return filepath.Base(absolutePath)
}
