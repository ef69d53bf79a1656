package artifactory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/utils/flags"
)

const (
	commandUseConstant                         = "artifactory-prune"
	commandShortDescriptionConstant            = "Delete artifact folders of deleted branches from Artifactory"
	commandLongDescriptionConstant             = "artifactory-prune deletes every top-level folder of an Artifactory repository whose branch no longer exists on GitHub, and the folder of the current branch so that a fresh build can replace it. Folder names are percent-encoded branch names."
	commandExecutionErrorTemplateConstant      = "artifactory prune failed: %w"
	unexpectedArgumentsMessageConstant         = "artifactory-prune does not accept positional arguments"
	requiredFlagMissingTemplateConstant        = "--%s is required"
	artifactoryHostFlagNameConstant            = "artifactory-host"
	artifactoryHostFlagShorthandConstant       = "H"
	artifactoryHostFlagUsageConstant           = "Artifactory host name"
	artifactoryAPIKeyFlagNameConstant          = "artifactory-api-key"
	artifactoryAPIKeyFlagShorthandConstant     = "K"
	artifactoryAPIKeyFlagUsageConstant         = "Artifactory API key, env:NAME or file:/path"
	artifactoryRepositoryFlagNameConstant      = "artifactory-repository"
	artifactoryRepositoryFlagShorthandConstant = "R"
	artifactoryRepositoryFlagUsageConstant     = "Artifactory repository holding one folder per branch"
	currentBranchFlagNameConstant              = "current-branch"
	currentBranchFlagShorthandConstant         = "b"
	currentBranchFlagUsageConstant             = "Branch being built; its folder is always deleted"
	githubRepositoryFlagNameConstant           = "github-repository"
	githubRepositoryFlagShorthandConstant      = "r"
	githubRepositoryFlagUsageConstant          = "GitHub repository as owner/name"
	githubTokenFlagNameConstant                = "github-token"
	githubTokenFlagShorthandConstant           = "t"
	githubTokenFlagUsageConstant               = "GitHub token, env:NAME or file:/path (defaults to GH_TOKEN, GITHUB_TOKEN or GITHUB_API_TOKEN)"
	dryRunFlagNameConstant                     = "dry-run"
	dryRunFlagUsageConstant                    = "Report deletions without deleting anything"
	emptyStringConstant                        = ""
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current artifactory-prune configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the artifactory-prune command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ServiceResolver       PruneServiceResolver
}

// Build constructs the artifactory-prune command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(artifactoryHostFlagNameConstant, artifactoryHostFlagShorthandConstant, emptyStringConstant, artifactoryHostFlagUsageConstant)
	command.Flags().StringP(artifactoryAPIKeyFlagNameConstant, artifactoryAPIKeyFlagShorthandConstant, emptyStringConstant, artifactoryAPIKeyFlagUsageConstant)
	command.Flags().StringP(artifactoryRepositoryFlagNameConstant, artifactoryRepositoryFlagShorthandConstant, emptyStringConstant, artifactoryRepositoryFlagUsageConstant)
	command.Flags().StringP(currentBranchFlagNameConstant, currentBranchFlagShorthandConstant, emptyStringConstant, currentBranchFlagUsageConstant)
	command.Flags().StringP(githubRepositoryFlagNameConstant, githubRepositoryFlagShorthandConstant, emptyStringConstant, githubRepositoryFlagUsageConstant)
	command.Flags().StringP(githubTokenFlagNameConstant, githubTokenFlagShorthandConstant, emptyStringConstant, githubTokenFlagUsageConstant)
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
			ArtifactoryBaseURL: configuration.ArtifactoryBaseURL,
			GitHubBaseURL:      configuration.GitHubBaseURL,
		},
	}

	// A configured base URL replaces the host.
	hostRequired := len(configuration.ArtifactoryBaseURL) == 0

	stringSettings := []struct {
		flagName           string
		configurationValue string
		required           bool
		target             *string
	}{
		{flagName: artifactoryHostFlagNameConstant, configurationValue: configuration.ArtifactoryHost, required: hostRequired, target: &options.Connection.ArtifactoryHost},
		{flagName: artifactoryAPIKeyFlagNameConstant, configurationValue: configuration.ArtifactoryAPIKey, required: true, target: &options.Connection.ArtifactoryAPIKey},
		{flagName: artifactoryRepositoryFlagNameConstant, configurationValue: configuration.ArtifactoryRepository, required: true, target: &options.ArtifactoryRepository},
		{flagName: currentBranchFlagNameConstant, configurationValue: configuration.CurrentBranch, required: true, target: &options.CurrentBranch},
		{flagName: githubRepositoryFlagNameConstant, configurationValue: configuration.GitHubRepository, required: true, target: &options.GitHubRepository},
		{flagName: githubTokenFlagNameConstant, configurationValue: configuration.GitHubToken, target: &options.Connection.GitHubToken},
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

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	return strings.TrimSpace(configurationValue)
}
