package bintray

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/ui"
	"github.com/temirov/relkit/internal/utils/flags"
)

const (
	commandUseConstant                     = "bintray-prune"
	commandShortDescriptionConstant        = "Delete stale package versions from Bintray"
	commandLongDescriptionConstant         = "bintray-prune deletes Bintray versions built from branches that were merged into the default branch or no longer exist in the local git history, then trims the remaining versions to the retention count. Versions built from the default branch are never deleted."
	commandExecutionErrorTemplateConstant  = "bintray prune failed: %w"
	unexpectedArgumentsMessageConstant     = "bintray-prune does not accept positional arguments"
	requiredFlagMissingTemplateConstant    = "--%s is required"
	githubOwnerFlagNameConstant            = "github-owner"
	githubOwnerFlagShorthandConstant       = "o"
	githubOwnerFlagUsageConstant           = "GitHub user or organization that owns the source repository"
	githubRepositoryFlagNameConstant       = "github-repo"
	githubRepositoryFlagShorthandConstant  = "g"
	githubRepositoryFlagUsageConstant      = "GitHub repository name"
	githubTokenFlagNameConstant            = "github-token"
	githubTokenFlagShorthandConstant       = "a"
	githubTokenFlagUsageConstant           = "GitHub token, env:NAME or file:/path (defaults to GH_TOKEN, GITHUB_TOKEN or GITHUB_API_TOKEN)"
	bintrayUserFlagNameConstant            = "bintray-user"
	bintrayUserFlagShorthandConstant       = "u"
	bintrayUserFlagUsageConstant           = "Bintray user owning the repository"
	bintrayRepositoryFlagNameConstant      = "bintray-repo"
	bintrayRepositoryFlagShorthandConstant = "b"
	bintrayRepositoryFlagUsageConstant     = "Bintray repository name"
	bintrayPackageFlagNameConstant         = "bintray-package"
	bintrayPackageFlagShorthandConstant    = "p"
	bintrayPackageFlagUsageConstant        = "Bintray package name"
	bintrayTokenFlagNameConstant           = "bintray-token"
	bintrayTokenFlagShorthandConstant      = "t"
	bintrayTokenFlagUsageConstant          = "Bintray API key, env:NAME or file:/path"
	keepCountFlagNameConstant              = "num-versions-to-keep"
	keepCountFlagShorthandConstant         = "n"
	keepCountFlagUsageConstant             = "Number of versions to keep, including the latest version of every active branch"
	repositoryPathFlagNameConstant         = "repository"
	repositoryPathFlagUsageConstant        = "Path to the local git clone used to inspect branch history"
	dryRunFlagNameConstant                 = "dry-run"
	dryRunFlagUsageConstant                = "Report deletions without deleting anything"
	emptyStringConstant                    = ""
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current bintray-prune configuration.
type ConfigurationProvider func() Configuration

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the bintray-prune command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	ServiceResolver              PruneServiceResolver
}

// Build constructs the bintray-prune command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(githubOwnerFlagNameConstant, githubOwnerFlagShorthandConstant, emptyStringConstant, githubOwnerFlagUsageConstant)
	command.Flags().StringP(githubRepositoryFlagNameConstant, githubRepositoryFlagShorthandConstant, emptyStringConstant, githubRepositoryFlagUsageConstant)
	command.Flags().StringP(githubTokenFlagNameConstant, githubTokenFlagShorthandConstant, emptyStringConstant, githubTokenFlagUsageConstant)
	command.Flags().StringP(bintrayUserFlagNameConstant, bintrayUserFlagShorthandConstant, emptyStringConstant, bintrayUserFlagUsageConstant)
	command.Flags().StringP(bintrayRepositoryFlagNameConstant, bintrayRepositoryFlagShorthandConstant, emptyStringConstant, bintrayRepositoryFlagUsageConstant)
	command.Flags().StringP(bintrayPackageFlagNameConstant, bintrayPackageFlagShorthandConstant, emptyStringConstant, bintrayPackageFlagUsageConstant)
	command.Flags().StringP(bintrayTokenFlagNameConstant, bintrayTokenFlagShorthandConstant, emptyStringConstant, bintrayTokenFlagUsageConstant)
	command.Flags().IntP(keepCountFlagNameConstant, keepCountFlagShorthandConstant, UnsetKeepCount, keepCountFlagUsageConstant)
	command.Flags().String(repositoryPathFlagNameConstant, emptyStringConstant, repositoryPathFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), nil, dryRunFlagNameConstant, emptyStringConstant, false, dryRunFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	pruneService, serviceError := builder.resolveService(command, logger, options)
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}

	if _, executionError := pruneService.Execute(command.Context(), options); executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (PruneOptions, error) {
	configuration := builder.resolveConfiguration()

	options := PruneOptions{
		Connection: ConnectionSettings{
			BintrayBaseURL: configuration.BintrayBaseURL,
			GitHubBaseURL:  configuration.GitHubBaseURL,
		},
	}

	stringSettings := []struct {
		flagName           string
		configurationValue string
		required           bool
		target             *string
	}{
		{flagName: githubOwnerFlagNameConstant, configurationValue: configuration.GitHubOwner, required: true, target: &options.GitHubOwner},
		{flagName: githubRepositoryFlagNameConstant, configurationValue: configuration.GitHubRepository, required: true, target: &options.GitHubRepository},
		{flagName: githubTokenFlagNameConstant, configurationValue: configuration.GitHubToken, target: &options.Connection.GitHubToken},
		{flagName: bintrayUserFlagNameConstant, configurationValue: configuration.BintrayUser, required: true, target: &options.Package.Subject},
		{flagName: bintrayRepositoryFlagNameConstant, configurationValue: configuration.BintrayRepository, required: true, target: &options.Package.Repository},
		{flagName: bintrayPackageFlagNameConstant, configurationValue: configuration.BintrayPackage, required: true, target: &options.Package.Package},
		{flagName: bintrayTokenFlagNameConstant, configurationValue: configuration.BintrayToken, required: true, target: &options.Connection.BintrayToken},
		{flagName: repositoryPathFlagNameConstant, configurationValue: configuration.RepositoryPath, target: &options.Connection.RepositoryPath},
	}

	for _, setting := range stringSettings {
		flagValue, flagError := command.Flags().GetString(setting.flagName)
		if flagError != nil {
			return PruneOptions{}, flagError
		}
		selectedValue := selectStringValue(flagValue, setting.configurationValue)
		if setting.required && len(selectedValue) == 0 {
			return PruneOptions{}, fmt.Errorf(requiredFlagMissingTemplateConstant, setting.flagName)
		}
		*setting.target = selectedValue
	}
	options.Connection.RepositoryPath = configurationHomeDirectoryExpander.Expand(options.Connection.RepositoryPath)

	keepCount := configuration.KeepCount
	if command.Flags().Changed(keepCountFlagNameConstant) {
		keepCountFlagValue, keepCountFlagError := command.Flags().GetInt(keepCountFlagNameConstant)
		if keepCountFlagError != nil {
			return PruneOptions{}, keepCountFlagError
		}
		keepCount = keepCountFlagValue
	} else if keepCount == UnsetKeepCount {
		return PruneOptions{}, fmt.Errorf(requiredFlagMissingTemplateConstant, keepCountFlagNameConstant)
	}
	options.KeepCount = keepCount

	dryRunValue := configuration.DryRun
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunFlagValue, dryRunFlagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if dryRunFlagError != nil {
			return PruneOptions{}, dryRunFlagError
		}
		dryRunValue = dryRunFlagValue
	}
	options.DryRun = dryRunValue

	return options, nil
}

func (builder *CommandBuilder) resolveService(command *cobra.Command, logger *zap.Logger, options PruneOptions) (PruneExecutor, error) {
	if builder.ServiceResolver != nil {
		return builder.ServiceResolver.Resolve(command.Context(), logger, options)
	}

	defaultResolver := &DefaultPruneServiceResolver{Output: command.OutOrStdout()}
	if builder.humanReadableLoggingEnabled() {
		defaultResolver.CommandEventObserver = ui.NewConsoleCommandEventLogger(logger)
	}
	return defaultResolver.Resolve(command.Context(), logger, options)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	return strings.TrimSpace(configurationValue)
}
