package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
)

// DefaultProtobufDownloadBaseURL hosts the Protocol Buffers release archives.
const DefaultProtobufDownloadBaseURL = "https://github.com/google/protobuf/releases/download"

const (
	protobufArchivePrefixConstant           = "protobuf-cpp-"
	protobufFolderPrefixConstant            = "protobuf-"
	protobufWindowsArchiveExtensionConstant = ".zip"
	protobufUnixArchiveExtensionConstant    = ".tar.gz"
	protobufDownloadURLTemplateConstant     = "%s/v%s/%s"
	protobufCMakeDirectoryConstant          = "cmake"
	protobufBinaryDirectoryConstant         = "bin"
	protobufCompilerConstant                = "protoc"
	protobufWindowsExecutableSuffixConstant = ".exe"
	protobufCurrentDirectoryConstant        = "."
	protobufInstallPrefixArgumentTemplate   = "-DCMAKE_INSTALL_PREFIX=%s"
	protobufCXXStandardArgumentConstant     = "-DCMAKE_CXX_STANDARD=14"
	protobufBuildFlagConstant               = "--build"
	protobufTargetFlagConstant              = "--target"
	protobufInstallTargetConstant           = "install"
	protobufConfigFlagConstant              = "--config"
	protobufReleaseConfigConstant           = "release"
	protobufOutputMissingMessageConstant    = "Protocol Buffers output directory must be provided"
	protobufVersionMissingMessageConstant   = "Protocol Buffers version must be provided"
	protobufDownloadErrorTemplateConstant   = "unable to download Protocol Buffers %s: %w"
	protobufBuildErrorTemplateConstant      = "unable to build Protocol Buffers %s: %w"
	protobufCleanupErrorTemplateConstant    = "unable to remove Protocol Buffers sources: %w"
	protobufAlreadyInstalledMessageConstant = "Protocol Buffers already installed"
	protobufInstallingMessageConstant       = "Protocol Buffers not found, installing"
	protobufInstalledMessageConstant        = "Protocol Buffers installed"
	logFieldOutputDirectoryConstant         = "output_directory"
)

var (
	// ErrProtobufOutputDirectoryRequired indicates a missing output directory.
	ErrProtobufOutputDirectoryRequired = errors.New(protobufOutputMissingMessageConstant)
	// ErrProtobufVersionRequired indicates a missing Protocol Buffers version.
	ErrProtobufVersionRequired = errors.New(protobufVersionMissingMessageConstant)
)

// ProtobufOptions configure a Protocol Buffers installation.
// WorkingDirectory holds the archive and sources during the build and defaults to the system temp directory.
type ProtobufOptions struct {
	OutputDirectory  string
	Version          string
	DownloadBaseURL  string
	WorkingDirectory string
}

// ProtobufInstaller builds protoc and the C++ runtime from source and installs them.
type ProtobufInstaller struct {
	logger      *zap.Logger
	provisioner *Provisioner
}

// NewProtobufInstaller constructs a ProtobufInstaller.
func NewProtobufInstaller(logger *zap.Logger, provisioner *Provisioner) (*ProtobufInstaller, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if provisioner == nil {
		return nil, ErrProvisionerNotConfigured
	}
	return &ProtobufInstaller{logger: logger, provisioner: provisioner}, nil
}

// ProtobufArchiveName returns the source archive name for the platform.
func ProtobufArchiveName(version string, platform Platform) string {
	if platform.Windows {
		return protobufArchivePrefixConstant + version + protobufWindowsArchiveExtensionConstant
	}
	return protobufArchivePrefixConstant + version + protobufUnixArchiveExtensionConstant
}

// ProtobufDownloadURL returns the archive address below baseURL.
func ProtobufDownloadURL(baseURL string, version string, platform Platform) string {
	return fmt.Sprintf(protobufDownloadURLTemplateConstant, strings.TrimSuffix(baseURL, urlPathSeparatorConstant), version, ProtobufArchiveName(version, platform))
}

// ProtobufCompilerPath returns the installed protoc location under outputDirectory.
func ProtobufCompilerPath(outputDirectory string, platform Platform) string {
	compiler := protobufCompilerConstant
	if platform.Windows {
		compiler += protobufWindowsExecutableSuffixConstant
	}
	return filepath.Join(outputDirectory, protobufBinaryDirectoryConstant, compiler)
}

// Install builds and installs Protocol Buffers into options.OutputDirectory
// unless protoc is already present there. The archive and sources are removed afterwards.
func (installer *ProtobufInstaller) Install(executionContext context.Context, options ProtobufOptions) (InstallResult, error) {
	normalizedOptions, optionsError := normalizeProtobufOptions(options)
	if optionsError != nil {
		return InstallResult{}, optionsError
	}

	platform := installer.provisioner.Platform()
	if pathExists(ProtobufCompilerPath(normalizedOptions.OutputDirectory, platform)) {
		installer.logger.Info(protobufAlreadyInstalledMessageConstant, zap.String(logFieldOutputDirectoryConstant, normalizedOptions.OutputDirectory))
		return InstallResult{InstallPath: normalizedOptions.OutputDirectory, AlreadyInstalled: true}, nil
	}
	installer.logger.Info(
		protobufInstallingMessageConstant,
		zap.String(logFieldOutputDirectoryConstant, normalizedOptions.OutputDirectory),
		zap.String(logFieldVersionConstant, normalizedOptions.Version),
	)

	archivePath := filepath.Join(normalizedOptions.WorkingDirectory, ProtobufArchiveName(normalizedOptions.Version, platform))
	extractedPath := filepath.Join(normalizedOptions.WorkingDirectory, protobufFolderPrefixConstant+normalizedOptions.Version)

	downloadURL := ProtobufDownloadURL(normalizedOptions.DownloadBaseURL, normalizedOptions.Version, platform)
	if fetchError := installer.provisioner.Fetch(executionContext, downloadURL, archivePath); fetchError != nil {
		return InstallResult{}, fmt.Errorf(protobufDownloadErrorTemplateConstant, normalizedOptions.Version, fetchError)
	}
	if extractError := installer.provisioner.Extract(executionContext, archivePath, extractedPath); extractError != nil {
		return InstallResult{}, extractError
	}

	for _, command := range ProtobufBuildCommands(extractedPath, normalizedOptions.OutputDirectory) {
		if runError := installer.provisioner.Run(executionContext, command); runError != nil {
			return InstallResult{}, fmt.Errorf(protobufBuildErrorTemplateConstant, normalizedOptions.Version, runError)
		}
	}

	if cleanupError := installer.provisioner.Cleanup(archivePath, extractedPath); cleanupError != nil {
		return InstallResult{}, fmt.Errorf(protobufCleanupErrorTemplateConstant, cleanupError)
	}

	installer.logger.Info(protobufInstalledMessageConstant, zap.String(logFieldOutputDirectoryConstant, normalizedOptions.OutputDirectory))
	return InstallResult{InstallPath: normalizedOptions.OutputDirectory}, nil
}

// ProtobufBuildCommands returns the cmake configure and install invocations,
// both run in the cmake folder of the extracted sources.
func ProtobufBuildCommands(sourceDirectory string, outputDirectory string) []execshell.ShellCommand {
	buildDirectory := filepath.Join(sourceDirectory, protobufCMakeDirectoryConstant)
	return []execshell.ShellCommand{
		{
			Name: execshell.CommandCMake,
			Details: execshell.CommandDetails{
				Arguments: []string{
					protobufCurrentDirectoryConstant,
					fmt.Sprintf(protobufInstallPrefixArgumentTemplate, outputDirectory),
					protobufCXXStandardArgumentConstant,
				},
				WorkingDirectory: buildDirectory,
			},
		},
		{
			Name: execshell.CommandCMake,
			Details: execshell.CommandDetails{
				Arguments: []string{
					protobufBuildFlagConstant,
					protobufCurrentDirectoryConstant,
					protobufTargetFlagConstant,
					protobufInstallTargetConstant,
					protobufConfigFlagConstant,
					protobufReleaseConfigConstant,
				},
				WorkingDirectory: buildDirectory,
			},
		},
	}
}

func normalizeProtobufOptions(options ProtobufOptions) (ProtobufOptions, error) {
	normalized := options
	normalized.OutputDirectory = strings.TrimSpace(options.OutputDirectory)
	if len(normalized.OutputDirectory) == 0 {
		return ProtobufOptions{}, ErrProtobufOutputDirectoryRequired
	}
	absoluteDirectory, absoluteError := filepath.Abs(normalized.OutputDirectory)
	if absoluteError != nil {
		return ProtobufOptions{}, fmt.Errorf(resolveDirectoryErrorTemplateConstant, normalized.OutputDirectory, absoluteError)
	}
	normalized.OutputDirectory = absoluteDirectory

	normalized.Version = strings.TrimSpace(options.Version)
	if len(normalized.Version) == 0 {
		return ProtobufOptions{}, ErrProtobufVersionRequired
	}

	normalized.DownloadBaseURL = defaultString(options.DownloadBaseURL, DefaultProtobufDownloadBaseURL)
	normalized.WorkingDirectory = defaultString(options.WorkingDirectory, os.TempDir())
	return normalized, nil
}
