package project

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/ctxload/internal/tree"
	"github.com/temirov/ctxload/internal/utils"
)

// Assemble builds the context document for the project at rootDirectoryPath. Each source is
// optional and read independently; a missing source leaves its fields unset. A malformed
// metadata file or an I/O failure aborts the assembly and no partial context is returned.
func Assemble(rootDirectoryPath string, options Options) (Context, error) {
	logger := utils.LoggerOrNop(options.Logger)
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return Context{}, fmt.Errorf("getting absolute path for %s: %w", rootDirectoryPath, absolutePathError)
	}

	var assembled Context
	if options.IncludeDescription {
		assembled.ContextDescription = contextDescription
	}

	metadataPath := filepath.Join(absoluteRootPath, MetadataFileName)
	metadata, metadataFound, metadataError := readPyProject(metadataPath)
	if metadataError != nil {
		return Context{}, metadataError
	}
	assembled.ProjectName = utils.DirectoryBaseName(absoluteRootPath)
	if metadataFound {
		logger.Debug("read project metadata", zap.String("path", metadataPath))
		if metadata.Name != "" {
			assembled.ProjectName = metadata.Name
		}
		assembled.PythonVersion = metadata.PythonVersion
		assembled.Dependencies = metadata.Dependencies
		assembled.DevDependencies = metadata.DevDependencies
	}

	requirementsPath := filepath.Join(absoluteRootPath, RequirementsFileName)
	requirements, requirementsFound, requirementsError := readRequirements(requirementsPath)
	if requirementsError != nil {
		return Context{}, requirementsError
	}
	if requirementsFound {
		logger.Debug("read requirements", zap.String("path", requirementsPath), zap.Int("count", len(requirements)))
		assembled.Requirements = requirements
	}

	assembled.TestingFramework = detectTestingFramework(absoluteRootPath, logger)

	treeOptions := options.Tree
	if treeOptions.Logger == nil {
		treeOptions.Logger = logger
	}
	structure, buildError := tree.Build(absoluteRootPath, treeOptions)
	if buildError != nil {
		return Context{}, buildError
	}
	assembled.RepositoryStructure = structure
	return assembled, nil
}
