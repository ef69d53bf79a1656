package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
)

const (
	loggerMissingMessageConstant           = "installer logger not configured"
	downloaderMissingMessageConstant       = "archive downloader not configured"
	commandExecutorMissingMessageConstant  = "command executor not configured"
	provisionerMissingMessageConstant      = "provisioner not configured"
	tarExtractArgumentConstant             = "xf"
	sevenZipExtractArgumentConstant        = "x"
	sevenZipOutputArgumentTemplateConstant = "-o%s"
	removeExtractedErrorTemplateConstant   = "unable to remove previous extraction %s: %w"
	extractArchiveErrorTemplateConstant    = "unable to extract %s: %w"
	extractingMessageConstant              = "Extracting archive"
	logFieldArchiveConstant                = "archive"
	logFieldExtractedPathConstant          = "extracted_path"
)

var (
	// ErrLoggerNotConfigured indicates a missing logger dependency.
	ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)
	// ErrDownloaderNotConfigured indicates a missing downloader dependency.
	ErrDownloaderNotConfigured = errors.New(downloaderMissingMessageConstant)
	// ErrCommandExecutorNotConfigured indicates a missing command executor dependency.
	ErrCommandExecutorNotConfigured = errors.New(commandExecutorMissingMessageConstant)
	// ErrProvisionerNotConfigured indicates an installer constructed without a provisioner.
	ErrProvisionerNotConfigured = errors.New(provisionerMissingMessageConstant)
)

// Downloader stores a remote file at a local path.
type Downloader interface {
	Download(executionContext context.Context, sourceURL string, destinationPath string) error
}

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Provisioner carries out the steps shared by every installer.
type Provisioner struct {
	logger     *zap.Logger
	downloader Downloader
	executor   CommandExecutor
	platform   Platform
}

// ProvisionerOption customizes a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithPlatform overrides the detected platform.
func WithPlatform(platform Platform) ProvisionerOption {
	return func(provisioner *Provisioner) {
		provisioner.platform = platform
	}
}

// NewProvisioner validates collaborators and constructs a Provisioner for the current platform.
func NewProvisioner(logger *zap.Logger, downloader Downloader, executor CommandExecutor, options ...ProvisionerOption) (*Provisioner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if downloader == nil {
		return nil, ErrDownloaderNotConfigured
	}
	if executor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}

	provisioner := &Provisioner{
		logger:     logger,
		downloader: downloader,
		executor:   executor,
		platform:   CurrentPlatform(),
	}
	for _, applyOption := range options {
		if applyOption != nil {
			applyOption(provisioner)
		}
	}
	return provisioner, nil
}

// Platform reports the platform the provisioner builds for.
func (provisioner *Provisioner) Platform() Platform {
	return provisioner.platform
}

// Fetch downloads sourceURL into archivePath.
func (provisioner *Provisioner) Fetch(executionContext context.Context, sourceURL string, archivePath string) error {
	return provisioner.downloader.Download(executionContext, sourceURL, archivePath)
}

// Extract unpacks archivePath next to itself after removing extractedPath.
// Windows uses 7z, every other platform uses tar.
func (provisioner *Provisioner) Extract(executionContext context.Context, archivePath string, extractedPath string) error {
	if removeError := os.RemoveAll(extractedPath); removeError != nil {
		return fmt.Errorf(removeExtractedErrorTemplateConstant, extractedPath, removeError)
	}

	provisioner.logger.Info(
		extractingMessageConstant,
		zap.String(logFieldArchiveConstant, archivePath),
		zap.String(logFieldExtractedPathConstant, extractedPath),
	)

	outputDirectory := filepath.Dir(archivePath)
	command := execshell.ShellCommand{
		Name: execshell.CommandTar,
		Details: execshell.CommandDetails{
			Arguments:        []string{tarExtractArgumentConstant, archivePath},
			WorkingDirectory: outputDirectory,
		},
	}
	if provisioner.platform.Windows {
		command = execshell.ShellCommand{
			Name: execshell.CommandSevenZip,
			Details: execshell.CommandDetails{
				Arguments:        []string{sevenZipExtractArgumentConstant, archivePath, fmt.Sprintf(sevenZipOutputArgumentTemplateConstant, outputDirectory)},
				WorkingDirectory: outputDirectory,
			},
		}
	}

	if _, executionError := provisioner.executor.Execute(executionContext, command); executionError != nil {
		return fmt.Errorf(extractArchiveErrorTemplateConstant, archivePath, executionError)
	}
	return nil
}

// Run executes a build command.
func (provisioner *Provisioner) Run(executionContext context.Context, command execshell.ShellCommand) error {
	_, executionError := provisioner.executor.Execute(executionContext, command)
	return executionError
}

// Cleanup removes the downloaded archive and its extraction folder.
func (provisioner *Provisioner) Cleanup(archivePath string, extractedPath string) error {
	if removeError := removeFile(archivePath); removeError != nil {
		return removeError
	}
	return os.RemoveAll(extractedPath)
}
