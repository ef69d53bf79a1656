package installer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/installer"
)

type recordingDownloader struct {
	urls         []string
	destinations []string
	err          error
}

func (downloader *recordingDownloader) Download(executionContext context.Context, sourceURL string, destinationPath string) error {
	downloader.urls = append(downloader.urls, sourceURL)
	downloader.destinations = append(downloader.destinations, destinationPath)
	if downloader.err != nil {
		return downloader.err
	}
	return os.WriteFile(destinationPath, []byte("archive"), 0o600)
}

type recordingExecutor struct {
	commands []execshell.ShellCommand
	effects  map[execshell.CommandName]func(command execshell.ShellCommand) error
	failures map[execshell.CommandName]error
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		effects:  map[execshell.CommandName]func(command execshell.ShellCommand) error{},
		failures: map[execshell.CommandName]error{},
	}
}

func (executor *recordingExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, command)
	if failure, failing := executor.failures[command.Name]; failing {
		return execshell.ExecutionResult{}, failure
	}
	if effect, found := executor.effects[command.Name]; found {
		if effectError := effect(command); effectError != nil {
			return execshell.ExecutionResult{}, effectError
		}
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *recordingExecutor) commandNames() []execshell.CommandName {
	names := make([]execshell.CommandName, 0, len(executor.commands))
	for _, command := range executor.commands {
		names = append(names, command.Name)
	}
	return names
}

// createDirectoryEffect simulates an extraction tool producing directoryPath.
func createDirectoryEffect(directoryPath string) func(command execshell.ShellCommand) error {
	return func(command execshell.ShellCommand) error {
		return os.MkdirAll(directoryPath, 0o755)
	}
}

func newTestProvisioner(testInstance *testing.T, downloader installer.Downloader, executor installer.CommandExecutor, platform installer.Platform) *installer.Provisioner {
	testInstance.Helper()
	provisioner, provisionerError := installer.NewProvisioner(zap.NewNop(), downloader, executor, installer.WithPlatform(platform))
	require.NoError(testInstance, provisionerError)
	return provisioner
}

func writeMarkerFile(testInstance *testing.T, pathElements ...string) {
	testInstance.Helper()
	markerPath := filepath.Join(pathElements...)
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(markerPath), 0o755))
	require.NoError(testInstance, os.WriteFile(markerPath, []byte{}, 0o600))
}
