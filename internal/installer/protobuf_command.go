package installer

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	protobufCommandUseConstant                 = "install-protobuf"
	protobufCommandShortDescriptionConstant    = "Build and install Protocol Buffers from source"
	protobufCommandLongDescriptionConstant     = "install-protobuf downloads the Protocol Buffers C++ sources, builds them with cmake and installs protoc and the runtime into the output directory. Nothing happens when protoc is already installed there."
	protobufCommandExecutionErrorTemplate      = "install-protobuf failed: %w"
	protobufUnexpectedArgumentsMessageConstant = "install-protobuf does not accept positional arguments"
	protobufAlreadyInstalledOutputTemplate     = "Protocol Buffers already installed at %s\n"
	protobufInstalledOutputTemplate            = "Protocol Buffers installed at %s\n"
	protobufOutputDirectoryFlagNameConstant    = "output-directory"
	protobufOutputDirectoryFlagShorthand       = "o"
	protobufOutputDirectoryFlagUsageConstant   = "Install prefix receiving bin/protoc, headers and libraries"
	protobufTargetVersionFlagNameConstant      = "target-version"
	protobufTargetVersionFlagShorthandConstant = "t"
	protobufTargetVersionFlagUsageConstant     = "Protocol Buffers version, e.g. 3.6.1"
)

var errProtobufUnexpectedArguments = errors.New(protobufUnexpectedArgumentsMessageConstant)

// ProtobufConfigurationProvider returns the current install-protobuf configuration.
type ProtobufConfigurationProvider func() ProtobufConfiguration

// ProtobufCommandBuilder assembles the install-protobuf command.
type ProtobufCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ProtobufConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	InstallerResolver            InstallerResolver
}

// Build constructs the install-protobuf command.
func (builder *ProtobufCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   protobufCommandUseConstant,
		Short: protobufCommandShortDescriptionConstant,
		Long:  protobufCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(protobufOutputDirectoryFlagNameConstant, protobufOutputDirectoryFlagShorthand, emptyStringConstant, protobufOutputDirectoryFlagUsageConstant)
	command.Flags().StringP(protobufTargetVersionFlagNameConstant, protobufTargetVersionFlagShorthandConstant, emptyStringConstant, protobufTargetVersionFlagUsageConstant)

	return command, nil
}

func (builder *ProtobufCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errProtobufUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := resolveLogger(builder.LoggerProvider)
	resolver := resolveInstallerResolver(builder.InstallerResolver, builder.HumanReadableLoggingProvider, logger)
	protobufInstaller, resolveError := resolver.ResolveProtobuf(logger)
	if resolveError != nil {
		return fmt.Errorf(protobufCommandExecutionErrorTemplate, resolveError)
	}

	result, installError := protobufInstaller.Install(command.Context(), options)
	if installError != nil {
		return fmt.Errorf(protobufCommandExecutionErrorTemplate, installError)
	}

	outputTemplate := protobufInstalledOutputTemplate
	if result.AlreadyInstalled {
		outputTemplate = protobufAlreadyInstalledOutputTemplate
	}
	_, _ = fmt.Fprintf(command.OutOrStdout(), outputTemplate, result.InstallPath)
	return nil
}

func (builder *ProtobufCommandBuilder) parseOptions(command *cobra.Command) (ProtobufOptions, error) {
	configuration := DefaultProtobufConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()

	outputDirectory, outputError := readStringFlag(command, protobufOutputDirectoryFlagNameConstant, configuration.OutputDirectory)
	if outputError != nil {
		return ProtobufOptions{}, outputError
	}
	if len(outputDirectory) == 0 {
		return ProtobufOptions{}, fmt.Errorf(requiredFlagMissingTemplateConstant, protobufOutputDirectoryFlagNameConstant)
	}

	targetVersion, versionError := readStringFlag(command, protobufTargetVersionFlagNameConstant, configuration.Version)
	if versionError != nil {
		return ProtobufOptions{}, versionError
	}
	if len(targetVersion) == 0 {
		return ProtobufOptions{}, fmt.Errorf(requiredFlagMissingTemplateConstant, protobufTargetVersionFlagNameConstant)
	}

	return ProtobufOptions{
		OutputDirectory:  configurationHomeDirectoryExpander.Expand(outputDirectory),
		Version:          targetVersion,
		DownloadBaseURL:  configuration.DownloadBaseURL,
		WorkingDirectory: configuration.WorkingDirectory,
	}, nil
}
