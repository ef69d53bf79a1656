package installer

import (
	"strings"

	pathutils "github.com/temirov/relkit/internal/utils/path"
)

const (
	directoryConfigurationKey         = "directory"
	boostVersionConfigurationKey      = "boost_version"
	addressModelConfigurationKey      = "address_model"
	toolsetConfigurationKey           = "toolset"
	variantConfigurationKey           = "variant"
	librariesConfigurationKey         = "libraries"
	downloadBaseURLConfigurationKey   = "download_base_url"
	outputDirectoryConfigurationKey   = "output_directory"
	targetVersionConfigurationKey     = "target_version"
	workingDirectoryConfigurationKey  = "working_directory"
	configurationKeySeparatorConstant = "."
)

var configurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// BoostConfiguration stores install-boost settings.
type BoostConfiguration struct {
	Directory       string   `mapstructure:"directory"`
	Version         string   `mapstructure:"boost_version"`
	AddressModel    string   `mapstructure:"address_model"`
	Toolset         string   `mapstructure:"toolset"`
	Variant         string   `mapstructure:"variant"`
	Libraries       []string `mapstructure:"libraries"`
	DownloadBaseURL string   `mapstructure:"download_base_url"`
}

// DefaultBoostConfiguration supplies baseline values for install-boost.
// The toolset stays empty so that it follows the platform.
func DefaultBoostConfiguration() BoostConfiguration {
	return BoostConfiguration{
		AddressModel:    DefaultBoostAddressModel,
		Variant:         DefaultBoostVariant,
		Libraries:       []string{},
		DownloadBaseURL: DefaultBoostDownloadBaseURL,
	}
}

// DefaultBoostConfigurationValues returns viper defaults rooted at prefix.
func DefaultBoostConfigurationValues(prefix string) map[string]any {
	defaults := DefaultBoostConfiguration()
	return prefixConfigurationValues(prefix, map[string]any{
		directoryConfigurationKey:       defaults.Directory,
		boostVersionConfigurationKey:    defaults.Version,
		addressModelConfigurationKey:    defaults.AddressModel,
		toolsetConfigurationKey:         defaults.Toolset,
		variantConfigurationKey:         defaults.Variant,
		librariesConfigurationKey:       defaults.Libraries,
		downloadBaseURLConfigurationKey: defaults.DownloadBaseURL,
	})
}

// Sanitize trims configured values and expands the directory.
func (configuration BoostConfiguration) Sanitize() BoostConfiguration {
	sanitized := configuration
	sanitized.Directory = configurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.Directory))
	sanitized.Version = strings.TrimSpace(configuration.Version)
	sanitized.AddressModel = strings.TrimSpace(configuration.AddressModel)
	sanitized.Toolset = strings.TrimSpace(configuration.Toolset)
	sanitized.Variant = strings.TrimSpace(configuration.Variant)
	sanitized.DownloadBaseURL = strings.TrimSpace(configuration.DownloadBaseURL)
	sanitized.Libraries = make([]string, 0, len(configuration.Libraries))
	for _, library := range configuration.Libraries {
		trimmedLibrary := strings.TrimSpace(library)
		if len(trimmedLibrary) > 0 {
			sanitized.Libraries = append(sanitized.Libraries, trimmedLibrary)
		}
	}
	return sanitized
}

// ProtobufConfiguration stores install-protobuf settings.
type ProtobufConfiguration struct {
	OutputDirectory  string `mapstructure:"output_directory"`
	Version          string `mapstructure:"target_version"`
	DownloadBaseURL  string `mapstructure:"download_base_url"`
	WorkingDirectory string `mapstructure:"working_directory"`
}

// DefaultProtobufConfiguration supplies baseline values for install-protobuf.
func DefaultProtobufConfiguration() ProtobufConfiguration {
	return ProtobufConfiguration{DownloadBaseURL: DefaultProtobufDownloadBaseURL}
}

// DefaultProtobufConfigurationValues returns viper defaults rooted at prefix.
func DefaultProtobufConfigurationValues(prefix string) map[string]any {
	defaults := DefaultProtobufConfiguration()
	return prefixConfigurationValues(prefix, map[string]any{
		outputDirectoryConfigurationKey:  defaults.OutputDirectory,
		targetVersionConfigurationKey:    defaults.Version,
		downloadBaseURLConfigurationKey:  defaults.DownloadBaseURL,
		workingDirectoryConfigurationKey: defaults.WorkingDirectory,
	})
}

// Sanitize trims configured values and expands directories.
func (configuration ProtobufConfiguration) Sanitize() ProtobufConfiguration {
	sanitized := configuration
	sanitized.OutputDirectory = configurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.OutputDirectory))
	sanitized.Version = strings.TrimSpace(configuration.Version)
	sanitized.DownloadBaseURL = strings.TrimSpace(configuration.DownloadBaseURL)
	sanitized.WorkingDirectory = configurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.WorkingDirectory))
	return sanitized
}

func prefixConfigurationValues(prefix string, values map[string]any) map[string]any {
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
