package artifactory

import (
	"strings"
)

const (
	artifactoryHostConfigurationKey       = "artifactory_host"
	artifactoryBaseURLConfigurationKey    = "artifactory_base_url"
	artifactoryAPIKeyConfigurationKey     = "artifactory_api_key"
	artifactoryRepositoryConfigurationKey = "artifactory_repository"
	currentBranchConfigurationKey         = "current_branch"
	githubRepositoryConfigurationKey      = "github_repository"
	githubTokenConfigurationKey           = "github_token"
	githubBaseURLConfigurationKey         = "github_base_url"
	dryRunConfigurationKey                = "dry_run"
	configurationKeySeparatorConstant     = "."
)

// Configuration stores artifactory-prune settings loaded from configuration files and the environment.
type Configuration struct {
	ArtifactoryHost       string `mapstructure:"artifactory_host"`
	ArtifactoryBaseURL    string `mapstructure:"artifactory_base_url"`
	ArtifactoryAPIKey     string `mapstructure:"artifactory_api_key"`
	ArtifactoryRepository string `mapstructure:"artifactory_repository"`
	CurrentBranch         string `mapstructure:"current_branch"`
	GitHubRepository      string `mapstructure:"github_repository"`
	GitHubToken           string `mapstructure:"github_token"`
	GitHubBaseURL         string `mapstructure:"github_base_url"`
	DryRun                bool   `mapstructure:"dry_run"`
}

// DefaultConfiguration supplies baseline values for artifactory-prune.
func DefaultConfiguration() Configuration {
	return Configuration{}
}

// DefaultConfigurationValues returns viper defaults rooted at prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	values := map[string]any{
		artifactoryHostConfigurationKey:       defaults.ArtifactoryHost,
		artifactoryBaseURLConfigurationKey:    defaults.ArtifactoryBaseURL,
		artifactoryAPIKeyConfigurationKey:     defaults.ArtifactoryAPIKey,
		artifactoryRepositoryConfigurationKey: defaults.ArtifactoryRepository,
		currentBranchConfigurationKey:         defaults.CurrentBranch,
		githubRepositoryConfigurationKey:      defaults.GitHubRepository,
		githubTokenConfigurationKey:           defaults.GitHubToken,
		githubBaseURLConfigurationKey:         defaults.GitHubBaseURL,
		dryRunConfigurationKey:                defaults.DryRun,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixedValues := make(map[string]any, len(values))
	for key, value := range values {
		prefixedValues[trimmedPrefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixedValues
}

// Sanitize trims configured values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.ArtifactoryHost = strings.TrimSpace(configuration.ArtifactoryHost)
	sanitized.ArtifactoryBaseURL = strings.TrimSpace(configuration.ArtifactoryBaseURL)
	sanitized.ArtifactoryAPIKey = strings.TrimSpace(configuration.ArtifactoryAPIKey)
	sanitized.ArtifactoryRepository = strings.TrimSpace(configuration.ArtifactoryRepository)
	sanitized.CurrentBranch = strings.TrimSpace(configuration.CurrentBranch)
	sanitized.GitHubRepository = strings.TrimSpace(configuration.GitHubRepository)
	sanitized.GitHubToken = strings.TrimSpace(configuration.GitHubToken)
	sanitized.GitHubBaseURL = strings.TrimSpace(configuration.GitHubBaseURL)
	return sanitized
}
