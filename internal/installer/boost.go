package installer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
)

// Boost defaults applied when options leave a value empty.
const (
	DefaultBoostDownloadBaseURL = "https://archives.boost.io/release"
	DefaultBoostAddressModel    = "32"
	DefaultBoostVariant         = "release"
)

const (
	boostFolderPrefixConstant             = "boost_"
	boostWindowsArchiveExtensionConstant  = ".7z"
	boostUnixArchiveExtensionConstant     = ".tar.bz2"
	boostDownloadURLTemplateConstant      = "%s/%s/source/%s"
	boostWindowsToolsetConstant           = "msvc"
	boostUnixToolsetConstant              = "gcc"
	boostClangToolsetConstant             = "clang"
	boostClangStandardLibraryConstant     = "-stdlib=libc++"
	boostWindowsBootstrapConstant         = "bootstrap.bat"
	boostUnixBootstrapConstant            = "bootstrap.sh"
	boostBuildEngineConstant              = "b2"
	boostWindowsRuntimeLinkConstant       = "static,shared"
	boostUnixRuntimeLinkConstant          = "shared"
	boostStageDirectoryConstant           = "stage"
	boostLibraryDirectoryConstant         = "lib"
	boostLibraryFileTemplateConstant      = "libboost_%s.a"
	boostToolsetArgumentTemplate          = "toolset=%s"
	boostLinkArgumentConstant             = "link=static"
	boostRuntimeLinkArgumentTemplate      = "runtime-link=%s"
	boostVariantArgumentTemplate          = "variant=%s"
	boostAddressModelArgumentTemplate     = "address-model=%s"
	boostNoCompressionArgumentConstant    = "define=NO_COMPRESSION=1"
	boostWindowsThreadAPIArgumentConstant = "threadapi=win32"
	boostWindowsCXXFlagsArgumentConstant  = "cxxflags=/std:c++17"
	boostUnixCXXFlagsArgumentTemplate     = "cxxflags=-std=c++17 -fPIC %s"
	boostLocaleICUArgumentConstant        = "boost.locale.icu=off"
	boostLinkFlagsArgumentTemplate        = "linkflags=%s"
	boostLibraryArgumentTemplate          = "--with-%s"
	urlPathSeparatorConstant              = "/"
	versionSeparatorConstant              = "."
	underscoreConstant                    = "_"
	boostDirectoryMissingMessageConstant  = "Boost directory must be provided"
	boostVersionMissingMessageConstant    = "Boost version must be provided"
	resolveDirectoryErrorTemplateConstant = "unable to resolve directory %s: %w"
	boostDownloadErrorTemplateConstant    = "unable to download Boost %s: %w"
	boostBuildErrorTemplateConstant       = "unable to build Boost libraries %v: %w"
	boostAlreadyBuiltMessageConstant      = "Boost already built"
	boostBuildingMessageConstant          = "Building Boost libraries"
	boostBuildSkippedMessageConstant      = "No Boost libraries requested; skipping build"
	logFieldVersionConstant               = "version"
	logFieldDirectoryConstant             = "directory"
	logFieldLibrariesConstant             = "libraries"
	logFieldToolsetConstant               = "toolset"
)

var (
	// ErrBoostDirectoryRequired indicates a missing installation directory.
	ErrBoostDirectoryRequired = errors.New(boostDirectoryMissingMessageConstant)
	// ErrBoostVersionRequired indicates a missing Boost version.
	ErrBoostVersionRequired = errors.New(boostVersionMissingMessageConstant)
)

// BoostOptions configure a Boost installation.
type BoostOptions struct {
	Directory       string
	Version         string
	AddressModel    string
	Toolset         string
	Variant         string
	Libraries       []string
	DownloadBaseURL string
}

// InstallResult reports where a dependency lives and whether work was skipped.
type InstallResult struct {
	InstallPath      string
	AlreadyInstalled bool
}

// BoostInstaller downloads Boost and builds the requested static libraries.
type BoostInstaller struct {
	logger      *zap.Logger
	provisioner *Provisioner
}

// NewBoostInstaller constructs a BoostInstaller.
func NewBoostInstaller(logger *zap.Logger, provisioner *Provisioner) (*BoostInstaller, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if provisioner == nil {
		return nil, ErrProvisionerNotConfigured
	}
	return &BoostInstaller{logger: logger, provisioner: provisioner}, nil
}

// BoostFolderName returns the folder a Boost archive extracts into, e.g. boost_1_70_0.
func BoostFolderName(version string) string {
	return boostFolderPrefixConstant + strings.ReplaceAll(version, versionSeparatorConstant, underscoreConstant)
}

// BoostArchiveName returns the release archive name for the platform.
func BoostArchiveName(version string, platform Platform) string {
	if platform.Windows {
		return BoostFolderName(version) + boostWindowsArchiveExtensionConstant
	}
	return BoostFolderName(version) + boostUnixArchiveExtensionConstant
}

// BoostDownloadURL returns the archive address below baseURL.
func BoostDownloadURL(baseURL string, version string, platform Platform) string {
	return fmt.Sprintf(boostDownloadURLTemplateConstant, strings.TrimSuffix(baseURL, urlPathSeparatorConstant), version, BoostArchiveName(version, platform))
}

// Install downloads and extracts Boost into options.Directory and builds the
// requested libraries. Nothing happens when the extracted folder already holds
// every requested library.
func (installer *BoostInstaller) Install(executionContext context.Context, options BoostOptions) (InstallResult, error) {
	normalizedOptions, optionsError := normalizeBoostOptions(options, installer.provisioner.Platform())
	if optionsError != nil {
		return InstallResult{}, optionsError
	}

	platform := installer.provisioner.Platform()
	archivePath := filepath.Join(normalizedOptions.Directory, BoostArchiveName(normalizedOptions.Version, platform))
	boostRoot := filepath.Join(normalizedOptions.Directory, BoostFolderName(normalizedOptions.Version))

	if pathExists(boostRoot) && librariesBuilt(boostRoot, normalizedOptions.Libraries, platform) {
		installer.logger.Info(
			boostAlreadyBuiltMessageConstant,
			zap.String(logFieldDirectoryConstant, boostRoot),
			zap.Strings(logFieldLibrariesConstant, normalizedOptions.Libraries),
		)
		return InstallResult{InstallPath: boostRoot, AlreadyInstalled: true}, nil
	}

	downloadURL := BoostDownloadURL(normalizedOptions.DownloadBaseURL, normalizedOptions.Version, platform)
	if fetchError := installer.provisioner.Fetch(executionContext, downloadURL, archivePath); fetchError != nil {
		return InstallResult{}, fmt.Errorf(boostDownloadErrorTemplateConstant, normalizedOptions.Version, fetchError)
	}
	if extractError := installer.provisioner.Extract(executionContext, archivePath, boostRoot); extractError != nil {
		return InstallResult{}, extractError
	}

	if len(normalizedOptions.Libraries) == 0 {
		installer.logger.Info(boostBuildSkippedMessageConstant, zap.String(logFieldDirectoryConstant, boostRoot))
		return InstallResult{InstallPath: boostRoot}, nil
	}

	installer.logger.Info(
		boostBuildingMessageConstant,
		zap.String(logFieldVersionConstant, normalizedOptions.Version),
		zap.String(logFieldDirectoryConstant, boostRoot),
		zap.String(logFieldToolsetConstant, normalizedOptions.Toolset),
		zap.Strings(logFieldLibrariesConstant, normalizedOptions.Libraries),
	)
	for _, command := range BoostBuildCommands(boostRoot, normalizedOptions, platform) {
		if runError := installer.provisioner.Run(executionContext, command); runError != nil {
			return InstallResult{}, fmt.Errorf(boostBuildErrorTemplateConstant, normalizedOptions.Libraries, runError)
		}
	}

	return InstallResult{InstallPath: boostRoot}, nil
}

// BoostBuildCommands returns the bootstrap and b2 invocations for boostRoot.
// The options must already carry a toolset and variant.
func BoostBuildCommands(boostRoot string, options BoostOptions, platform Platform) []execshell.ShellCommand {
	bootstrapScript := boostUnixBootstrapConstant
	runtimeLink := boostUnixRuntimeLinkConstant
	standardLibrary := ""
	if options.Toolset == boostClangToolsetConstant {
		standardLibrary = boostClangStandardLibraryConstant
	}

	var platformArguments []string
	if platform.Windows {
		bootstrapScript = boostWindowsBootstrapConstant
		runtimeLink = boostWindowsRuntimeLinkConstant
		platformArguments = []string{boostWindowsThreadAPIArgumentConstant, boostWindowsCXXFlagsArgumentConstant}
	} else {
		platformArguments = []string{
			strings.TrimSpace(fmt.Sprintf(boostUnixCXXFlagsArgumentTemplate, standardLibrary)),
			boostLocaleICUArgumentConstant,
		}
	}
	if len(standardLibrary) > 0 {
		platformArguments = append(platformArguments, fmt.Sprintf(boostLinkFlagsArgumentTemplate, standardLibrary))
	}

	buildArguments := []string{
		fmt.Sprintf(boostToolsetArgumentTemplate, options.Toolset),
		boostLinkArgumentConstant,
		fmt.Sprintf(boostRuntimeLinkArgumentTemplate, runtimeLink),
		fmt.Sprintf(boostVariantArgumentTemplate, options.Variant),
		fmt.Sprintf(boostAddressModelArgumentTemplate, options.AddressModel),
		boostNoCompressionArgumentConstant,
	}
	buildArguments = append(buildArguments, platformArguments...)
	for _, library := range options.Libraries {
		buildArguments = append(buildArguments, fmt.Sprintf(boostLibraryArgumentTemplate, library))
	}

	return []execshell.ShellCommand{
		{
			Name:    execshell.CommandName(filepath.Join(boostRoot, bootstrapScript)),
			Details: execshell.CommandDetails{WorkingDirectory: boostRoot},
		},
		{
			Name:    execshell.CommandName(filepath.Join(boostRoot, boostBuildEngineConstant)),
			Details: execshell.CommandDetails{Arguments: buildArguments, WorkingDirectory: boostRoot},
		},
	}
}

// DefaultBoostToolset returns msvc on Windows and gcc elsewhere.
func DefaultBoostToolset(platform Platform) string {
	if platform.Windows {
		return boostWindowsToolsetConstant
	}
	return boostUnixToolsetConstant
}

func normalizeBoostOptions(options BoostOptions, platform Platform) (BoostOptions, error) {
	normalized := options
	normalized.Directory = strings.TrimSpace(options.Directory)
	if len(normalized.Directory) == 0 {
		return BoostOptions{}, ErrBoostDirectoryRequired
	}
	absoluteDirectory, absoluteError := filepath.Abs(normalized.Directory)
	if absoluteError != nil {
		return BoostOptions{}, fmt.Errorf(resolveDirectoryErrorTemplateConstant, normalized.Directory, absoluteError)
	}
	normalized.Directory = absoluteDirectory

	normalized.Version = strings.TrimSpace(options.Version)
	if len(normalized.Version) == 0 {
		return BoostOptions{}, ErrBoostVersionRequired
	}

	normalized.AddressModel = defaultString(options.AddressModel, DefaultBoostAddressModel)
	normalized.Toolset = defaultString(options.Toolset, DefaultBoostToolset(platform))
	normalized.Variant = defaultString(options.Variant, DefaultBoostVariant)
	normalized.DownloadBaseURL = defaultString(options.DownloadBaseURL, DefaultBoostDownloadBaseURL)

	libraries := make([]string, 0, len(options.Libraries))
	for _, library := range options.Libraries {
		trimmedLibrary := strings.TrimSpace(library)
		if len(trimmedLibrary) > 0 {
			libraries = append(libraries, trimmedLibrary)
		}
	}
	normalized.Libraries = libraries
	return normalized, nil
}

// librariesBuilt never reports success on Windows, where library file names vary by toolset.
func librariesBuilt(boostRoot string, libraries []string, platform Platform) bool {
	for _, library := range libraries {
		if platform.Windows {
			return false
		}
		libraryPath := filepath.Join(boostRoot, boostStageDirectoryConstant, boostLibraryDirectoryConstant, fmt.Sprintf(boostLibraryFileTemplateConstant, library))
		if !pathExists(libraryPath) {
			return false
		}
	}
	return true
}

func defaultString(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}
