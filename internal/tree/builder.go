// Package tree builds the nested directory structure of a scanned project.
package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/denormal/go-gitignore"
	"go.uber.org/zap"

	"github.com/temirov/ctxload/internal/utils"
)

// DefaultExcludedDirectories lists directory names that never appear in a tree.
var DefaultExcludedDirectories = []string{
	utils.GitDirectoryName,
	"__pycache__",
	".pytest_cache",
	".idea",
}

// ErrRootNotDirectory is returned when the scan root is not a directory.
var ErrRootNotDirectory = errors.New("root is not a directory")

const (
	errorAbsolutePathFormat  = "getting absolute path for %s: %w"
	errorStatRootFormat      = "stat root %s: %w"
	errorBuildTreeFormat     = "building tree for %s: %w"
	errorRelativePathFormat  = "relative path of %s: %w"
	errorReadGitIgnoreFormat = "reading %s: %w"

	warningSkipSubdirMessage = "skipping unreadable directory"
)

// Options configures a tree build.
type Options struct {
	// ExcludedDirectories are added to DefaultExcludedDirectories.
	ExcludedDirectories []string
	// UseGitignore drops entries matched by the root .gitignore file.
	UseGitignore bool
	Logger       *zap.Logger
}

// ExcludedDirectoryNames returns the effective deny-list for the options.
func (options Options) ExcludedDirectoryNames() []string {
	combined := append(append([]string{}, DefaultExcludedDirectories...), options.ExcludedDirectories...)
	return utils.DeduplicateNames(combined)
}

// Build walks rootDirectoryPath top-down and returns the root node of its structure.
// Excluded directories are pruned before descent. Symbolic links are listed as files and
// never followed. An unreadable subdirectory is kept without files and logged; an
// unreadable root is an error.
func Build(rootDirectoryPath string, options Options) (*Node, error) {
	logger := utils.LoggerOrNop(options.Logger)

	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	if resolvedRootPath, resolveError := filepath.EvalSymlinks(absoluteRootPath); resolveError == nil {
		absoluteRootPath = resolvedRootPath
	}
	rootInfo, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, rootDirectoryPath, rootStatError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("%s: %w", rootDirectoryPath, ErrRootNotDirectory)
	}

	excludedNames := make(map[string]struct{})
	for _, name := range options.ExcludedDirectoryNames() {
		excludedNames[name] = struct{}{}
	}

	var ignoreMatcher gitignore.GitIgnore
	if options.UseGitignore {
		loadedMatcher, loadError := loadRootGitIgnore(absoluteRootPath)
		if loadError != nil {
			return nil, loadError
		}
		ignoreMatcher = loadedMatcher
	}

	rootNode := newNode()
	walkFunction := func(currentPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if currentPath == absoluteRootPath {
				return walkError
			}
			logger.Warn(warningSkipSubdirMessage, zap.String("path", currentPath), zap.Error(walkError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relativePath, relativePathError := filepath.Rel(absoluteRootPath, currentPath)
		if relativePathError != nil {
			return fmt.Errorf(errorRelativePathFormat, currentPath, relativePathError)
		}
		pathSegments := utils.SplitRelativePath(relativePath)
		if len(pathSegments) == 0 {
			return nil
		}

		isDirectory := directoryEntry.IsDir()
		if isDirectory {
			if _, excluded := excludedNames[directoryEntry.Name()]; excluded {
				logger.Debug("excluding directory", zap.String("path", relativePath))
				return filepath.SkipDir
			}
		}
		if isIgnored(ignoreMatcher, currentPath, isDirectory) {
			if isDirectory {
				return filepath.SkipDir
			}
			return nil
		}

		if isDirectory {
			rootNode.ensurePath(pathSegments)
			return nil
		}
		parentNode := rootNode.ensurePath(pathSegments[:len(pathSegments)-1])
		parentNode.files = append(parentNode.files, directoryEntry.Name())
		return nil
	}

	if walkError := filepath.WalkDir(absoluteRootPath, walkFunction); walkError != nil {
		return nil, fmt.Errorf(errorBuildTreeFormat, rootDirectoryPath, walkError)
	}
	return rootNode, nil
}

// loadRootGitIgnore parses the .gitignore at the root, returning nil when there is none.
func loadRootGitIgnore(absoluteRootPath string) (gitignore.GitIgnore, error) {
	ignorePath := filepath.Join(absoluteRootPath, utils.GitIgnoreFileName)
	data, readError := os.ReadFile(ignorePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorReadGitIgnoreFormat, ignorePath, readError)
	}
	return gitignore.New(bytes.NewReader(data), absoluteRootPath, nil), nil
}

func isIgnored(matcher gitignore.GitIgnore, absolutePath string, isDirectory bool) bool {
	if matcher == nil {
		return false
	}
	match := matcher.Absolute(absolutePath, isDirectory)
	return match != nil && match.Ignore()
}
