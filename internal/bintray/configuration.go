package bintray

import (
	"strings"

	pathutils "github.com/temirov/relkit/internal/utils/path"
)

const (
	// UnsetKeepCount marks a retention count that was not configured.
	UnsetKeepCount                    = -1
	defaultRepositoryPathConstant     = "."
	githubOwnerConfigurationKey       = "github_owner"
	githubRepositoryConfigurationKey  = "github_repo"
	githubTokenConfigurationKey       = "github_token"
	githubBaseURLConfigurationKey     = "github_base_url"
	bintrayUserConfigurationKey       = "bintray_user"
	bintrayRepositoryConfigurationKey = "bintray_repo"
	bintrayPackageConfigurationKey    = "bintray_package"
	bintrayTokenConfigurationKey      = "bintray_token"
	bintrayBaseURLConfigurationKey    = "bintray_base_url"
	keepCountConfigurationKey         = "num_versions_to_keep"
	repositoryPathConfigurationKey    = "repository"
	dryRunConfigurationKey            = "dry_run"
	configurationKeySeparatorConstant = "."
)

var configurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// Configuration stores bintray-prune settings loaded from configuration files and the environment.
type Configuration struct {
	GitHubOwner       string `mapstructure:"github_owner"`
	GitHubRepository  string `mapstructure:"github_repo"`
	GitHubToken       string `mapstructure:"github_token"`
	GitHubBaseURL     string `mapstructure:"github_base_url"`
	BintrayUser       string `mapstructure:"bintray_user"`
	BintrayRepository string `mapstructure:"bintray_repo"`
	BintrayPackage    string `mapstructure:"bintray_package"`
	BintrayToken      string `mapstructure:"bintray_token"`
	BintrayBaseURL    string `mapstructure:"bintray_base_url"`
	KeepCount         int    `mapstructure:"num_versions_to_keep"`
	RepositoryPath    string `mapstructure:"repository"`
	DryRun            bool   `mapstructure:"dry_run"`
}

// DefaultConfiguration supplies baseline values for bintray-prune.
func DefaultConfiguration() Configuration {
	return Configuration{
		BintrayBaseURL: DefaultBaseURL,
		KeepCount:      UnsetKeepCount,
		RepositoryPath: defaultRepositoryPathConstant,
	}
}

// DefaultConfigurationValues returns viper defaults rooted at prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	values := map[string]any{
		githubOwnerConfigurationKey:       defaults.GitHubOwner,
		githubRepositoryConfigurationKey:  defaults.GitHubRepository,
		githubTokenConfigurationKey:       defaults.GitHubToken,
		githubBaseURLConfigurationKey:     defaults.GitHubBaseURL,
		bintrayUserConfigurationKey:       defaults.BintrayUser,
		bintrayRepositoryConfigurationKey: defaults.BintrayRepository,
		bintrayPackageConfigurationKey:    defaults.BintrayPackage,
		bintrayTokenConfigurationKey:      defaults.BintrayToken,
		bintrayBaseURLConfigurationKey:    defaults.BintrayBaseURL,
		keepCountConfigurationKey:         defaults.KeepCount,
		repositoryPathConfigurationKey:    defaults.RepositoryPath,
		dryRunConfigurationKey:            defaults.DryRun,
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

// Sanitize trims configured values and expands the repository path.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.GitHubOwner = strings.TrimSpace(configuration.GitHubOwner)
	sanitized.GitHubRepository = strings.TrimSpace(configuration.GitHubRepository)
	sanitized.GitHubToken = strings.TrimSpace(configuration.GitHubToken)
	sanitized.GitHubBaseURL = strings.TrimSpace(configuration.GitHubBaseURL)
	sanitized.BintrayUser = strings.TrimSpace(configuration.BintrayUser)
	sanitized.BintrayRepository = strings.TrimSpace(configuration.BintrayRepository)
	sanitized.BintrayPackage = strings.TrimSpace(configuration.BintrayPackage)
	sanitized.BintrayToken = strings.TrimSpace(configuration.BintrayToken)
	sanitized.BintrayBaseURL = strings.TrimSpace(configuration.BintrayBaseURL)
	sanitized.RepositoryPath = configurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.RepositoryPath))
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaultRepositoryPathConstant
	}
	return sanitized
}
