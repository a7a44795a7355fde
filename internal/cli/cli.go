// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ctxload/internal/config"
	"github.com/temirov/ctxload/internal/output"
	"github.com/temirov/ctxload/internal/project"
	"github.com/temirov/ctxload/internal/services/clipboard"
	"github.com/temirov/ctxload/internal/tokenizer"
	"github.com/temirov/ctxload/internal/tree"
	"github.com/temirov/ctxload/internal/utils"
)

const (
	exclusionFlagName    = "exclude"
	exclusionShorthand   = "e"
	gitignoreFlagName    = "gitignore"
	descriptionFlagName  = "description"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	copyFlagName         = "copy"
	configFlagName       = "config"
	verboseFlagName      = "verbose"
	versionFlagName      = "version"
	globalFlagName       = "global"
	forceFlagName        = "force"
	versionTemplate      = "ctxload version: %s\n"
	defaultPath          = "."
	rootUse              = "ctxload [paths...]"
	rootShortDescription = "describe a Python project as JSON context for a language model"
	rootLongDescription  = `ctxload scans a project directory and prints a JSON document with the project name,
Python version, declared dependencies, detected test framework and directory tree.
Paste it into a conversation with a language model as background context.
Without arguments the current directory is scanned. Several directories render as a JSON array.`
	rootUsageExample = `  # Describe the current project
  ctxload

  # Skip build output, respect .gitignore and copy the result
  ctxload -e build -e dist --gitignore --copy

  # Describe two services and report the token cost
  ctxload --tokens ./api ./worker`
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a default configuration file to ` + utils.ConfigFileName + ` in the working directory,
or to ~/` + utils.GlobalConfigDirectoryName + `/` + utils.GlobalConfigFileName + ` with --global.`

	exclusionFlagDescription   = "exclude directories with this name (repeatable)"
	gitignoreFlagDescription   = "drop entries matched by the root .gitignore"
	descriptionFlagDescription = "include an explanation of the document for the model"
	tokensFlagDescription      = "report the token count of the document on stderr"
	modelFlagDescription       = "tokenizer model used with --tokens"
	copyFlagDescription        = "copy the document to the clipboard"
	configFlagDescription      = "configuration file (default " + utils.ConfigFileName + " in the working directory)"
	verboseFlagDescription     = "log debug details"
	versionFlagDescription     = "display application version"
	globalFlagDescription      = "write the global configuration"
	forceFlagDescription       = "overwrite an existing configuration file"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorPathMissingFormat      = "path '%s' does not exist"
	errorStatFormat             = "stat failed for '%s': %w"
	errorNotDirectoryFormat     = "path '%s' is not a directory"
	configurationWrittenFormat  = "configuration written to %s\n"

	tokenCountMessage  = "token count"
	copyFailedMessage  = "failed to copy output to clipboard"
	copiedMessage      = "copied output to clipboard"
	assemblingMessage  = "assembling project context"
	verboseInitMessage = "failed to enable verbose logging"
)

var errNoValidPaths = errors.New("no valid paths")

// environment carries the collaborators of a command run so tests can replace them.
type environment struct {
	logger     *zap.Logger
	stdout     io.Writer
	copier     clipboard.Copier
	newCounter func(tokenizer.Config) (tokenizer.Counter, string, error)
}

// runOptions are the settings of one run after flags and configuration are merged.
type runOptions struct {
	exclusions         []string
	useGitignore       bool
	includeDescription bool
	countTokens        bool
	tokenModel         string
	copyOutput         bool
}

// Execute runs the ctxload application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(environment{
		logger:     utils.LoggerOrNop(logger),
		stdout:     os.Stdout,
		copier:     clipboard.NewService(),
		newCounter: tokenizer.NewCounter,
	})
	rootCommand.SetArgs(normalizeCopyFlagArguments(os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(env environment) *cobra.Command {
	var (
		exclusions         []string
		useGitignore       bool
		includeDescription bool
		countTokens        bool
		tokenModel         string
		copyOutput         bool
		configurationPath  string
		verbose            bool
		showVersion        bool
	)

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, printError := fmt.Fprintf(env.stdout, versionTemplate, utils.GetApplicationVersion())
				return printError
			}
			if verbose {
				verboseLogger, loggerError := utils.NewApplicationLogger(true)
				if loggerError != nil {
					env.logger.Warn(verboseInitMessage, zap.Error(loggerError))
				} else {
					env.logger = verboseLogger
				}
			}

			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: workingDirectory,
				ExplicitFilePath: configurationPath,
			})
			if configurationError != nil {
				return configurationError
			}

			flags := command.Flags()
			options := runOptions{
				exclusions:         utils.DeduplicateNames(append(append([]string{}, configuration.Exclude...), exclusions...)),
				useGitignore:       config.BoolOrDefault(configuration.UseGitignore, false),
				includeDescription: config.BoolOrDefault(configuration.Description, false),
				countTokens:        config.BoolOrDefault(configuration.Tokens.Enabled, false),
				tokenModel:         configuration.Tokens.Model,
				copyOutput:         config.BoolOrDefault(configuration.Copy, false),
			}
			if flags.Changed(gitignoreFlagName) {
				options.useGitignore = useGitignore
			}
			if flags.Changed(descriptionFlagName) {
				options.includeDescription = includeDescription
			}
			if flags.Changed(tokensFlagName) {
				options.countTokens = countTokens
			}
			if flags.Changed(modelFlagName) || options.tokenModel == "" {
				options.tokenModel = tokenModel
			}
			if flags.Changed(copyFlagName) {
				options.copyOutput = copyOutput
			}

			if len(arguments) == 0 {
				arguments = []string{defaultPath}
			}
			return runTool(env, arguments, options)
		},
	}

	rootCommand.Flags().StringArrayVarP(&exclusions, exclusionFlagName, exclusionShorthand, nil, exclusionFlagDescription)
	rootCommand.Flags().BoolVar(&useGitignore, gitignoreFlagName, false, gitignoreFlagDescription)
	rootCommand.Flags().BoolVar(&includeDescription, descriptionFlagName, false, descriptionFlagDescription)
	rootCommand.Flags().BoolVar(&countTokens, tokensFlagName, false, tokensFlagDescription)
	rootCommand.Flags().StringVar(&tokenModel, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	registerCopyFlag(rootCommand.Flags(), &copyOutput)
	rootCommand.Flags().StringVar(&configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.Flags().BoolVar(&verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.SetOut(env.stdout)
	rootCommand.CompletionOptions.DisableDefaultCmd = true
	rootCommand.AddCommand(createInitCommand(env))
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(env environment) *cobra.Command {
	var writeGlobal bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(env.stdout, configurationWrittenFormat, writtenPath)
			return printError
		},
	}
	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// runTool assembles every root, writes the document and applies the optional token count and copy.
// Nothing is written unless every root assembles and the requested token count succeeds.
func runTool(env environment, paths []string, options runOptions) error {
	roots, validationError := resolveAndValidatePaths(paths)
	if validationError != nil {
		return validationError
	}

	assemblyOptions := project.Options{
		Tree: tree.Options{
			ExcludedDirectories: options.exclusions,
			UseGitignore:        options.useGitignore,
			Logger:              env.logger,
		},
		IncludeDescription: options.includeDescription,
		Logger:             env.logger,
	}
	contexts, assemblyError := assembleAll(env.logger, roots, assemblyOptions)
	if assemblyError != nil {
		return assemblyError
	}

	rendered, renderError := output.RenderJSON(contexts)
	if renderError != nil {
		return renderError
	}

	var tokenFields []zap.Field
	if options.countTokens {
		newCounter := env.newCounter
		if newCounter == nil {
			newCounter = tokenizer.NewCounter
		}
		counter, resolvedModel, counterError := newCounter(tokenizer.Config{Model: options.tokenModel})
		if counterError != nil {
			return counterError
		}
		tokens, countError := tokenizer.CountDocument(counter, rendered)
		if countError != nil {
			return fmt.Errorf("count tokens: %w", countError)
		}
		tokenFields = []zap.Field{zap.Int("tokens", tokens), zap.String("model", resolvedModel)}
	}

	if _, writeError := io.WriteString(env.stdout, rendered); writeError != nil {
		return fmt.Errorf("write output: %w", writeError)
	}
	if tokenFields != nil {
		env.logger.Info(tokenCountMessage, tokenFields...)
	}

	if options.copyOutput && env.copier != nil {
		if copyError := env.copier.Copy(rendered); copyError != nil {
			env.logger.Warn(copyFailedMessage, zap.Error(copyError))
		} else {
			env.logger.Debug(copiedMessage)
		}
	}
	return nil
}

// assembleAll assembles the roots concurrently and returns the contexts in input order.
// The first failure cancels the result.
func assembleAll(logger *zap.Logger, roots []string, options project.Options) ([]project.Context, error) {
	contexts := make([]project.Context, len(roots))
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for index, root := range roots {
		group.Go(func() error {
			logger.Debug(assemblingMessage, zap.String("root", root))
			assembled, assembleError := project.Assemble(root, options)
			if assembleError != nil {
				return assembleError
			}
			contexts[index] = assembled
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return contexts, nil
}

// resolveAndValidatePaths converts input paths to absolute form, drops duplicates and
// checks that each one is an existing directory.
func resolveAndValidatePaths(inputs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var result []string
	for _, inputPath := range inputs {
		absolutePath, absolutePathError := filepath.Abs(inputPath)
		if absolutePathError != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		info, fileStatusError := os.Stat(cleanPath)
		if fileStatusError != nil {
			if os.IsNotExist(fileStatusError) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf(errorNotDirectoryFormat, inputPath)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, cleanPath)
	}
	if len(result) == 0 {
		return nil, errNoValidPaths
	}
	return result, nil
}
