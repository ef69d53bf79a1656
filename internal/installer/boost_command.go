package installer

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	boostCommandUseConstant                = "install-boost [library...]"
	boostCommandShortDescriptionConstant   = "Download Boost and build static libraries"
	boostCommandLongDescriptionConstant    = "install-boost downloads the Boost release archive into the target directory, extracts it and builds the listed libraries with b2. Nothing is downloaded when the extracted folder already contains every requested library."
	boostCommandExecutionErrorTemplate     = "install-boost failed: %w"
	boostAlreadyBuiltOutputTemplate        = "Boost already built at %s\n"
	boostInstalledOutputTemplate           = "Boost installed at %s\n"
	boostDirectoryFlagNameConstant         = "directory"
	boostDirectoryFlagShorthandConstant    = "d"
	boostDirectoryFlagUsageConstant        = "Directory receiving the Boost archive and sources"
	boostVersionFlagNameConstant           = "boost-version"
	boostVersionFlagShorthandConstant      = "b"
	boostVersionFlagUsageConstant          = "Boost version, e.g. 1.70.0"
	boostAddressModelFlagNameConstant      = "address-model"
	boostAddressModelFlagShorthandConstant = "a"
	boostAddressModelFlagUsageConstant     = "b2 address model (default 32)"
	boostToolsetFlagNameConstant           = "toolset"
	boostToolsetFlagShorthandConstant      = "t"
	boostToolsetFlagUsageConstant          = "b2 toolset (default msvc on Windows, gcc elsewhere)"
	boostVariantFlagNameConstant           = "variant"
	boostVariantFlagShorthandConstant      = "v"
	boostVariantFlagUsageConstant          = "b2 build variant (default release)"
)

// BoostConfigurationProvider returns the current install-boost configuration.
type BoostConfigurationProvider func() BoostConfiguration

// BoostCommandBuilder assembles the install-boost command.
type BoostCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        BoostConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	InstallerResolver            InstallerResolver
}

// Build constructs the install-boost command.
func (builder *BoostCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   boostCommandUseConstant,
		Short: boostCommandShortDescriptionConstant,
		Long:  boostCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(boostDirectoryFlagNameConstant, boostDirectoryFlagShorthandConstant, emptyStringConstant, boostDirectoryFlagUsageConstant)
	command.Flags().StringP(boostVersionFlagNameConstant, boostVersionFlagShorthandConstant, emptyStringConstant, boostVersionFlagUsageConstant)
	command.Flags().StringP(boostAddressModelFlagNameConstant, boostAddressModelFlagShorthandConstant, emptyStringConstant, boostAddressModelFlagUsageConstant)
	command.Flags().StringP(boostToolsetFlagNameConstant, boostToolsetFlagShorthandConstant, emptyStringConstant, boostToolsetFlagUsageConstant)
	command.Flags().StringP(boostVariantFlagNameConstant, boostVariantFlagShorthandConstant, emptyStringConstant, boostVariantFlagUsageConstant)

	return command, nil
}

func (builder *BoostCommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	logger := resolveLogger(builder.LoggerProvider)
	resolver := resolveInstallerResolver(builder.InstallerResolver, builder.HumanReadableLoggingProvider, logger)
	boostInstaller, resolveError := resolver.ResolveBoost(logger)
	if resolveError != nil {
		return fmt.Errorf(boostCommandExecutionErrorTemplate, resolveError)
	}

	result, installError := boostInstaller.Install(command.Context(), options)
	if installError != nil {
		return fmt.Errorf(boostCommandExecutionErrorTemplate, installError)
	}

	outputTemplate := boostInstalledOutputTemplate
	if result.AlreadyInstalled {
		outputTemplate = boostAlreadyBuiltOutputTemplate
	}
	_, _ = fmt.Fprintf(command.OutOrStdout(), outputTemplate, result.InstallPath)
	return nil
}

func (builder *BoostCommandBuilder) parseOptions(command *cobra.Command, arguments []string) (BoostOptions, error) {
	configuration := DefaultBoostConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()

	options := BoostOptions{DownloadBaseURL: configuration.DownloadBaseURL}

	stringSettings := []struct {
		flagName           string
		configurationValue string
		required           bool
		target             *string
	}{
		{flagName: boostDirectoryFlagNameConstant, configurationValue: configuration.Directory, required: true, target: &options.Directory},
		{flagName: boostVersionFlagNameConstant, configurationValue: configuration.Version, required: true, target: &options.Version},
		{flagName: boostAddressModelFlagNameConstant, configurationValue: configuration.AddressModel, target: &options.AddressModel},
		{flagName: boostToolsetFlagNameConstant, configurationValue: configuration.Toolset, target: &options.Toolset},
		{flagName: boostVariantFlagNameConstant, configurationValue: configuration.Variant, target: &options.Variant},
	}

	for _, setting := range stringSettings {
		selectedValue, flagError := readStringFlag(command, setting.flagName, setting.configurationValue)
		if flagError != nil {
			return BoostOptions{}, flagError
		}
		if setting.required && len(selectedValue) == 0 {
			return BoostOptions{}, fmt.Errorf(requiredFlagMissingTemplateConstant, setting.flagName)
		}
		*setting.target = selectedValue
	}
	options.Directory = configurationHomeDirectoryExpander.Expand(options.Directory)

	options.Libraries = configuration.Libraries
	if len(arguments) > 0 {
		options.Libraries = append([]string{}, arguments...)
	}

	return options, nil
}
