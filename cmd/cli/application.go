package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/artifactory"
	"github.com/temirov/relkit/internal/bintray"
	"github.com/temirov/relkit/internal/installer"
	"github.com/temirov/relkit/internal/percentencode"
	"github.com/temirov/relkit/internal/utils"
	"github.com/temirov/relkit/internal/utils/flags"
	pathutils "github.com/temirov/relkit/internal/utils/path"
)

const (
	applicationNameConstant                  = "relkit"
	applicationShortDescriptionConstant      = "Release housekeeping and build dependency tooling"
	applicationLongDescriptionConstant       = "relkit prunes stale published artifacts from Bintray and Artifactory and installs Boost and Protocol Buffers build dependencies."
	applicationVersionTemplateConstant       = "relkit version: {{.Version}}\n"
	configFileFlagNameConstant               = "config"
	configFileFlagUsageConstant              = "Optional path to a configuration file (YAML or JSON)."
	environmentFileFlagNameConstant          = "env-file"
	environmentFileFlagUsageConstant         = "Optional dotenv file exported before configuration is loaded (defaults to .env when present)."
	defaultEnvironmentFileConstant           = ".env"
	logLevelFlagNameConstant                 = "log-level"
	logLevelFlagUsageConstant                = "Override the configured log level (debug, info, warn or error)."
	logFormatFlagNameConstant                = "log-format"
	logFormatFlagUsageConstant               = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant           = "common"
	commonLogLevelConfigKeyConstant          = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant         = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant                = "RELKIT"
	configurationNameConstant                = "config"
	configurationTypeConstant                = "yaml"
	configurationInitializedMessageConstant  = "configuration initialized"
	configurationLogLevelFieldConstant       = "log_level"
	configurationLogFormatFieldConstant      = "log_format"
	configurationFileFieldConstant           = "config_file"
	environmentFileFieldConstant             = "env_file"
	configurationLoadErrorTemplateConstant   = "unable to load configuration: %w"
	configurationPathErrorTemplateConstant   = "unable to resolve path %q: %w"
	environmentFileErrorTemplateConstant     = "unable to load environment: %w"
	loggerCreationErrorTemplateConstant      = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant          = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant      = "logger not initialized"
	rootCommandDebugMessageConstant          = "relkit invoked without a subcommand"
	logFieldArgumentsConstant                = "arguments"
	toolsConfigurationKeyConstant            = "tools"
	bintrayPruneConfigurationKeyConstant     = toolsConfigurationKeyConstant + ".bintray_prune"
	artifactoryPruneConfigurationKeyConstant = toolsConfigurationKeyConstant + ".artifactory_prune"
	installBoostConfigurationKeyConstant     = toolsConfigurationKeyConstant + ".install_boost"
	installProtobufConfigurationKeyConstant  = toolsConfigurationKeyConstant + ".install_protobuf"
)

// applicationVersion is replaced at link time with -ldflags "-X".
var applicationVersion = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds per-command configuration sections.
type ApplicationToolsConfiguration struct {
	BintrayPrune     bintray.Configuration           `mapstructure:"bintray_prune"`
	ArtifactoryPrune artifactory.Configuration       `mapstructure:"artifactory_prune"`
	InstallBoost     installer.BoostConfiguration    `mapstructure:"install_boost"`
	InstallProtobuf  installer.ProtobufConfiguration `mapstructure:"install_protobuf"`
}

// commandBuilder is satisfied by every subcommand builder.
type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	pathExpander          *pathutils.HomeExpander
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	environmentFilePath   string
	logLevelFlagValue     string
	logFormatFlagValue    string
	loadedEnvironmentFile string
	commandBuildErrors    []error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.DefaultSearchPaths(applicationNameConstant),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		pathExpander:        pathutils.NewHomeExpander(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       applicationVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(applicationVersionTemplateConstant)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.environmentFilePath, environmentFileFlagNameConstant, "", environmentFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	builders := []commandBuilder{
		&bintray.CommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() bintray.Configuration {
				return application.configuration.Tools.BintrayPrune
			},
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		},
		&artifactory.CommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() artifactory.Configuration {
				return application.configuration.Tools.ArtifactoryPrune
			},
		},
		&installer.BoostCommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() installer.BoostConfiguration {
				return application.configuration.Tools.InstallBoost
			},
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		},
		&installer.ProtobufCommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() installer.ProtobufConfiguration {
				return application.configuration.Tools.InstallProtobuf
			},
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		},
		&percentencode.CommandBuilder{
			LoggerProvider: loggerProvider,
		},
	}

	for _, builder := range builders {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			application.commandBuildErrors = append(application.commandBuildErrors, buildError)
			continue
		}
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the command hierarchy against the process arguments and flushes the logger.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy against arguments.
// Toggle flags may be given as "--dry-run no" as well as "--dry-run=no".
func (application *Application) ExecuteWithArguments(arguments []string) error {
	if constructionError := errors.Join(application.commandBuildErrors...); constructionError != nil {
		return constructionError
	}

	normalizedArguments := flags.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	if environmentError := application.loadEnvironmentFile(); environmentError != nil {
		return fmt.Errorf(environmentFileErrorTemplateConstant, environmentError)
	}

	configurationFilePath, pathError := application.resolvePath(application.configurationFilePath)
	if pathError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, pathError)
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, applicationDefaultValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(environmentFileFieldConstant, application.loadedEnvironmentFile),
	)

	return nil
}

// loadEnvironmentFile exports the dotenv file named by --env-file, or .env from
// the working directory when present.
func (application *Application) loadEnvironmentFile() error {
	environmentFilePath := application.environmentFilePath
	required := len(strings.TrimSpace(environmentFilePath)) > 0
	if !required {
		environmentFilePath = defaultEnvironmentFileConstant
	}

	resolvedPath, pathError := application.resolvePath(environmentFilePath)
	if pathError != nil {
		return pathError
	}

	loaded, loadError := utils.LoadEnvironmentFile(resolvedPath, required)
	if loadError != nil {
		return loadError
	}
	if loaded {
		application.loadedEnvironmentFile = resolvedPath
	}
	return nil
}

func (application *Application) resolvePath(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	resolvedPath, resolveError := application.pathExpander.ExpandAbsolute(trimmedPath)
	if resolveError != nil {
		return "", fmt.Errorf(configurationPathErrorTemplateConstant, trimmedPath, resolveError)
	}
	return resolvedPath, nil
}

func applicationDefaultValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}

	sections := []map[string]any{
		bintray.DefaultConfigurationValues(bintrayPruneConfigurationKeyConstant),
		artifactory.DefaultConfigurationValues(artifactoryPruneConfigurationKeyConstant),
		installer.DefaultBoostConfigurationValues(installBoostConfigurationKeyConstant),
		installer.DefaultProtobufConfigurationValues(installProtobufConfigurationKeyConstant),
	}
	for _, section := range sections {
		for configurationKey, configurationValue := range section {
			defaultValues[configurationKey] = configurationValue
		}
	}

	return defaultValues
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(rootCommandDebugMessageConstant, zap.Strings(logFieldArgumentsConstant, arguments))

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
