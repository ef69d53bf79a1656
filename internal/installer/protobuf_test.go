package installer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/installer"
)

func TestProtobufNaming(testInstance *testing.T) {
	require.Equal(testInstance, "protobuf-cpp-3.6.1.tar.gz", installer.ProtobufArchiveName("3.6.1", installer.Platform{}))
	require.Equal(testInstance, "protobuf-cpp-3.6.1.zip", installer.ProtobufArchiveName("3.6.1", installer.Platform{Windows: true}))
	require.Equal(testInstance,
		"https://github.com/google/protobuf/releases/download/v3.6.1/protobuf-cpp-3.6.1.tar.gz",
		installer.ProtobufDownloadURL(installer.DefaultProtobufDownloadBaseURL, "3.6.1", installer.Platform{}),
	)
	require.Equal(testInstance, filepath.Join("out", "bin", "protoc.exe"), installer.ProtobufCompilerPath("out", installer.Platform{Windows: true}))
	require.Equal(testInstance, filepath.Join("out", "bin", "protoc"), installer.ProtobufCompilerPath("out", installer.Platform{}))
}

func TestProtobufInstallerBuildsAndCleansUp(testInstance *testing.T) {
	outputDirectory := filepath.Join(testInstance.TempDir(), "protobuf")
	workingDirectory := testInstance.TempDir()
	extractedPath := filepath.Join(workingDirectory, "protobuf-3.6.1")
	archivePath := filepath.Join(workingDirectory, "protobuf-cpp-3.6.1.tar.gz")

	downloader := &recordingDownloader{}
	executor := newRecordingExecutor()
	executor.effects[execshell.CommandTar] = createDirectoryEffect(filepath.Join(extractedPath, "cmake"))
	protobufInstaller, installerError := installer.NewProtobufInstaller(zap.NewNop(), newTestProvisioner(testInstance, downloader, executor, installer.Platform{}))
	require.NoError(testInstance, installerError)

	result, installError := protobufInstaller.Install(context.Background(), installer.ProtobufOptions{
		OutputDirectory:  outputDirectory,
		Version:          "3.6.1",
		WorkingDirectory: workingDirectory,
	})
	require.NoError(testInstance, installError)
	require.False(testInstance, result.AlreadyInstalled)
	require.Equal(testInstance, outputDirectory, result.InstallPath)

	require.Equal(testInstance, []string{"https://github.com/google/protobuf/releases/download/v3.6.1/protobuf-cpp-3.6.1.tar.gz"}, downloader.urls)
	require.Equal(testInstance, []string{archivePath}, downloader.destinations)
	require.Equal(testInstance, []execshell.CommandName{execshell.CommandTar, execshell.CommandCMake, execshell.CommandCMake}, executor.commandNames())

	configureCommand := executor.commands[1]
	require.Equal(testInstance, []string{".", "-DCMAKE_INSTALL_PREFIX=" + outputDirectory, "-DCMAKE_CXX_STANDARD=14"}, configureCommand.Details.Arguments)
	require.Equal(testInstance, filepath.Join(extractedPath, "cmake"), configureCommand.Details.WorkingDirectory)
	buildCommand := executor.commands[2]
	require.Equal(testInstance, []string{"--build", ".", "--target", "install", "--config", "release"}, buildCommand.Details.Arguments)
	require.Equal(testInstance, filepath.Join(extractedPath, "cmake"), buildCommand.Details.WorkingDirectory)

	require.NoFileExists(testInstance, archivePath)
	require.NoDirExists(testInstance, extractedPath)
}

func TestProtobufInstallerSkipsInstalledCompiler(testInstance *testing.T) {
	outputDirectory := testInstance.TempDir()
	writeMarkerFile(testInstance, outputDirectory, "bin", "protoc")

	downloader := &recordingDownloader{}
	executor := newRecordingExecutor()
	protobufInstaller, installerError := installer.NewProtobufInstaller(zap.NewNop(), newTestProvisioner(testInstance, downloader, executor, installer.Platform{}))
	require.NoError(testInstance, installerError)

	result, installError := protobufInstaller.Install(context.Background(), installer.ProtobufOptions{OutputDirectory: outputDirectory, Version: "3.6.1"})
	require.NoError(testInstance, installError)
	require.True(testInstance, result.AlreadyInstalled)
	require.Empty(testInstance, downloader.urls)
	require.Empty(testInstance, executor.commands)
}

func TestProtobufInstallerStopsOnBuildFailure(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	buildFailure := errors.New("cmake exited with code 1")
	executor := newRecordingExecutor()
	executor.failures[execshell.CommandCMake] = buildFailure
	protobufInstaller, installerError := installer.NewProtobufInstaller(zap.NewNop(), newTestProvisioner(testInstance, &recordingDownloader{}, executor, installer.Platform{}))
	require.NoError(testInstance, installerError)

	_, installError := protobufInstaller.Install(context.Background(), installer.ProtobufOptions{
		OutputDirectory:  filepath.Join(workingDirectory, "out"),
		Version:          "3.6.1",
		WorkingDirectory: workingDirectory,
	})
	require.ErrorIs(testInstance, installError, buildFailure)
	require.Equal(testInstance, []execshell.CommandName{execshell.CommandTar, execshell.CommandCMake}, executor.commandNames())
}

func TestProtobufInstallerValidatesOptions(testInstance *testing.T) {
	protobufInstaller, installerError := installer.NewProtobufInstaller(zap.NewNop(), newTestProvisioner(testInstance, &recordingDownloader{}, newRecordingExecutor(), installer.Platform{}))
	require.NoError(testInstance, installerError)

	_, outputError := protobufInstaller.Install(context.Background(), installer.ProtobufOptions{Version: "3.6.1"})
	require.ErrorIs(testInstance, outputError, installer.ErrProtobufOutputDirectoryRequired)

	_, versionError := protobufInstaller.Install(context.Background(), installer.ProtobufOptions{OutputDirectory: "out"})
	require.ErrorIs(testInstance, versionError, installer.ErrProtobufVersionRequired)

	_, provisionerError := installer.NewProtobufInstaller(zap.NewNop(), nil)
	require.ErrorIs(testInstance, provisionerError, installer.ErrProvisionerNotConfigured)
}
