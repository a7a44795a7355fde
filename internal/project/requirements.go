package project

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const commentPrefix = "#"

// readRequirements returns the non-blank, non-comment lines of a requirements file, trimmed
// but otherwise verbatim. It reports false when the file does not exist.
func readRequirements(path string) ([]string, bool, error) {
	file, openError := os.Open(path)
	if openError != nil {
		if errors.Is(openError, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, openError)
	}
	defer file.Close()

	requirements := []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}
		requirements = append(requirements, trimmed)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, true, fmt.Errorf("scan %s: %w", path, scanError)
	}
	return requirements, true, nil
}
