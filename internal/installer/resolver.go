package installer

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
)

// BoostExecutor installs Boost.
type BoostExecutor interface {
	Install(executionContext context.Context, options BoostOptions) (InstallResult, error)
}

// ProtobufExecutor installs Protocol Buffers.
type ProtobufExecutor interface {
	Install(executionContext context.Context, options ProtobufOptions) (InstallResult, error)
}

// InstallerResolver creates installers for the commands.
type InstallerResolver interface {
	ResolveBoost(logger *zap.Logger) (BoostExecutor, error)
	ResolveProtobuf(logger *zap.Logger) (ProtobufExecutor, error)
}

// DefaultInstallerResolver wires installers against HTTP downloads and local processes.
type DefaultInstallerResolver struct {
	HTTPClient           HTTPClient
	CommandRunner        execshell.CommandRunner
	CommandEventObserver execshell.CommandEventObserver
	Platform             *Platform
}

// ResolveBoost creates a BoostInstaller.
func (resolver *DefaultInstallerResolver) ResolveBoost(logger *zap.Logger) (BoostExecutor, error) {
	provisioner, provisionerError := resolver.resolveProvisioner(logger)
	if provisionerError != nil {
		return nil, provisionerError
	}
	boostInstaller, installerError := NewBoostInstaller(logger, provisioner)
	if installerError != nil {
		return nil, installerError
	}
	return boostInstaller, nil
}

// ResolveProtobuf creates a ProtobufInstaller.
func (resolver *DefaultInstallerResolver) ResolveProtobuf(logger *zap.Logger) (ProtobufExecutor, error) {
	provisioner, provisionerError := resolver.resolveProvisioner(logger)
	if provisionerError != nil {
		return nil, provisionerError
	}
	protobufInstaller, installerError := NewProtobufInstaller(logger, provisioner)
	if installerError != nil {
		return nil, installerError
	}
	return protobufInstaller, nil
}

func (resolver *DefaultInstallerResolver) resolveProvisioner(logger *zap.Logger) (*Provisioner, error) {
	downloader, downloaderError := NewHTTPDownloader(logger, resolver.HTTPClient)
	if downloaderError != nil {
		return nil, downloaderError
	}

	commandRunner := resolver.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	executorOptions := make([]execshell.ShellExecutorOption, 0, 1)
	if resolver.CommandEventObserver != nil {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(resolver.CommandEventObserver))
	}
	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, executorOptions...)
	if executorError != nil {
		return nil, executorError
	}

	provisionerOptions := make([]ProvisionerOption, 0, 1)
	if resolver.Platform != nil {
		provisionerOptions = append(provisionerOptions, WithPlatform(*resolver.Platform))
	}
	return NewProvisioner(logger, downloader, shellExecutor, provisionerOptions...)
}
