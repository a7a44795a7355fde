package project

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	pytestMarkerFileName = "pytest.ini"
	unittestPathMarker   = "unittest"
)

// detectTestingFramework walks the tests directory outer-to-inner in lexical order. Within a
// directory the pytest.ini marker is checked before the unittest path substring; the first
// match wins. Unreadable directories are skipped.
func detectTestingFramework(rootDirectoryPath string, logger *zap.Logger) TestingFramework {
	testsDirectoryPath := filepath.Join(rootDirectoryPath, TestsDirectoryName)
	info, statError := os.Stat(testsDirectoryPath)
	if statError != nil || !info.IsDir() {
		return ""
	}
	return detectInDirectory(rootDirectoryPath, testsDirectoryPath, logger)
}

func detectInDirectory(rootDirectoryPath string, directoryPath string, logger *zap.Logger) TestingFramework {
	entries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		logger.Warn("skipping unreadable tests directory", zap.String("path", directoryPath), zap.Error(readError))
		return ""
	}

	var subdirectories []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirectories = append(subdirectories, entry.Name())
			continue
		}
		if entry.Name() == pytestMarkerFileName {
			return TestingFrameworkPytest
		}
	}

	relativePath, relativeError := filepath.Rel(rootDirectoryPath, directoryPath)
	if relativeError == nil && strings.Contains(filepath.ToSlash(relativePath), unittestPathMarker) {
		return TestingFrameworkUnittest
	}

	for _, subdirectory := range subdirectories {
		if framework := detectInDirectory(rootDirectoryPath, filepath.Join(directoryPath, subdirectory), logger); framework != "" {
			return framework
		}
	}
	return ""
}
