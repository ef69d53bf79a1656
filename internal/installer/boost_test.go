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

func TestBoostArchiveNaming(testInstance *testing.T) {
	testCases := []struct {
		name            string
		platform        installer.Platform
		expectedArchive string
		expectedURL     string
	}{
		{
			name:            "unix",
			platform:        installer.Platform{},
			expectedArchive: "boost_1_70_0.tar.bz2",
			expectedURL:     "https://archives.boost.io/release/1.70.0/source/boost_1_70_0.tar.bz2",
		},
		{
			name:            "windows",
			platform:        installer.Platform{Windows: true},
			expectedArchive: "boost_1_70_0.7z",
			expectedURL:     "https://archives.boost.io/release/1.70.0/source/boost_1_70_0.7z",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedArchive, installer.BoostArchiveName("1.70.0", testCase.platform))
			require.Equal(testInstance, testCase.expectedURL, installer.BoostDownloadURL(installer.DefaultBoostDownloadBaseURL+"/", "1.70.0", testCase.platform))
		})
	}
	require.Equal(testInstance, "boost_1_70_0", installer.BoostFolderName("1.70.0"))
}

func TestBoostBuildCommands(testInstance *testing.T) {
	boostRoot := filepath.Join("opt", "boost_1_70_0")

	testCases := []struct {
		name              string
		platform          installer.Platform
		toolset           string
		expectedBootstrap string
		expectedArguments []string
	}{
		{
			name:              "gcc",
			platform:          installer.Platform{},
			toolset:           "gcc",
			expectedBootstrap: "bootstrap.sh",
			expectedArguments: []string{
				"toolset=gcc", "link=static", "runtime-link=shared", "variant=release", "address-model=64",
				"define=NO_COMPRESSION=1", "cxxflags=-std=c++17 -fPIC", "boost.locale.icu=off",
				"--with-system", "--with-filesystem",
			},
		},
		{
			name:              "clang",
			platform:          installer.Platform{},
			toolset:           "clang",
			expectedBootstrap: "bootstrap.sh",
			expectedArguments: []string{
				"toolset=clang", "link=static", "runtime-link=shared", "variant=release", "address-model=64",
				"define=NO_COMPRESSION=1", "cxxflags=-std=c++17 -fPIC -stdlib=libc++", "boost.locale.icu=off",
				"linkflags=-stdlib=libc++", "--with-system", "--with-filesystem",
			},
		},
		{
			name:              "msvc",
			platform:          installer.Platform{Windows: true},
			toolset:           "msvc",
			expectedBootstrap: "bootstrap.bat",
			expectedArguments: []string{
				"toolset=msvc", "link=static", "runtime-link=static,shared", "variant=release", "address-model=64",
				"define=NO_COMPRESSION=1", "threadapi=win32", "cxxflags=/std:c++17",
				"--with-system", "--with-filesystem",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			commands := installer.BoostBuildCommands(boostRoot, installer.BoostOptions{
				AddressModel: "64",
				Toolset:      testCase.toolset,
				Variant:      "release",
				Libraries:    []string{"system", "filesystem"},
			}, testCase.platform)

			require.Len(testInstance, commands, 2)
			require.Equal(testInstance, execshell.CommandName(filepath.Join(boostRoot, testCase.expectedBootstrap)), commands[0].Name)
			require.Empty(testInstance, commands[0].Details.Arguments)
			require.Equal(testInstance, boostRoot, commands[0].Details.WorkingDirectory)
			require.Equal(testInstance, execshell.CommandName(filepath.Join(boostRoot, "b2")), commands[1].Name)
			require.Equal(testInstance, testCase.expectedArguments, commands[1].Details.Arguments)
			require.Equal(testInstance, boostRoot, commands[1].Details.WorkingDirectory)
		})
	}
}

func TestBoostInstallerDownloadsExtractsAndBuilds(testInstance *testing.T) {
	directory := testInstance.TempDir()
	boostRoot := filepath.Join(directory, "boost_1_70_0")
	downloader := &recordingDownloader{}
	executor := newRecordingExecutor()
	executor.effects[execshell.CommandTar] = createDirectoryEffect(boostRoot)
	provisioner := newTestProvisioner(testInstance, downloader, executor, installer.Platform{})

	boostInstaller, installerError := installer.NewBoostInstaller(zap.NewNop(), provisioner)
	require.NoError(testInstance, installerError)

	result, installError := boostInstaller.Install(context.Background(), installer.BoostOptions{
		Directory: directory,
		Version:   "1.70.0",
		Libraries: []string{"system"},
	})
	require.NoError(testInstance, installError)
	require.False(testInstance, result.AlreadyInstalled)
	require.Equal(testInstance, boostRoot, result.InstallPath)

	require.Equal(testInstance, []string{"https://archives.boost.io/release/1.70.0/source/boost_1_70_0.tar.bz2"}, downloader.urls)
	require.Equal(testInstance, []string{filepath.Join(directory, "boost_1_70_0.tar.bz2")}, downloader.destinations)
	require.Equal(testInstance, []execshell.CommandName{
		execshell.CommandTar,
		execshell.CommandName(filepath.Join(boostRoot, "bootstrap.sh")),
		execshell.CommandName(filepath.Join(boostRoot, "b2")),
	}, executor.commandNames())

	buildArguments := executor.commands[2].Details.Arguments
	require.Contains(testInstance, buildArguments, "toolset=gcc")
	require.Contains(testInstance, buildArguments, "address-model=32")
	require.Contains(testInstance, buildArguments, "variant=release")
	require.Equal(testInstance, "--with-system", buildArguments[len(buildArguments)-1])
}

func TestBoostInstallerSkipsBuiltLibraries(testInstance *testing.T) {
	directory := testInstance.TempDir()
	writeMarkerFile(testInstance, directory, "boost_1_70_0", "stage", "lib", "libboost_system.a")
	writeMarkerFile(testInstance, directory, "boost_1_70_0", "stage", "lib", "libboost_thread.a")

	downloader := &recordingDownloader{}
	executor := newRecordingExecutor()
	boostInstaller, installerError := installer.NewBoostInstaller(zap.NewNop(), newTestProvisioner(testInstance, downloader, executor, installer.Platform{}))
	require.NoError(testInstance, installerError)

	result, installError := boostInstaller.Install(context.Background(), installer.BoostOptions{
		Directory: directory,
		Version:   "1.70.0",
		Libraries: []string{"system", "thread"},
	})
	require.NoError(testInstance, installError)
	require.True(testInstance, result.AlreadyInstalled)
	require.Empty(testInstance, downloader.urls)
	require.Empty(testInstance, executor.commands)
}

func TestBoostInstallerRebuildsWhenLibraryMissing(testInstance *testing.T) {
	testCases := []struct {
		name     string
		platform installer.Platform
		marker   string
	}{
		{name: "missing_library_file", platform: installer.Platform{}, marker: "libboost_system.a"},
		{name: "windows_never_built", platform: installer.Platform{Windows: true}, marker: "libboost_thread.a"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			directory := testInstance.TempDir()
			writeMarkerFile(testInstance, directory, "boost_1_70_0", "stage", "lib", testCase.marker)

			downloader := &recordingDownloader{}
			boostInstaller, installerError := installer.NewBoostInstaller(zap.NewNop(), newTestProvisioner(testInstance, downloader, newRecordingExecutor(), testCase.platform))
			require.NoError(testInstance, installerError)

			result, installError := boostInstaller.Install(context.Background(), installer.BoostOptions{
				Directory: directory,
				Version:   "1.70.0",
				Libraries: []string{"thread"},
			})
			require.NoError(testInstance, installError)
			require.False(testInstance, result.AlreadyInstalled)
			require.Len(testInstance, downloader.urls, 1)
		})
	}
}

func TestBoostInstallerWithoutLibrariesOnlyExtracts(testInstance *testing.T) {
	directory := testInstance.TempDir()
	executor := newRecordingExecutor()
	boostInstaller, installerError := installer.NewBoostInstaller(zap.NewNop(), newTestProvisioner(testInstance, &recordingDownloader{}, executor, installer.Platform{}))
	require.NoError(testInstance, installerError)

	_, installError := boostInstaller.Install(context.Background(), installer.BoostOptions{Directory: directory, Version: "1.70.0"})
	require.NoError(testInstance, installError)
	require.Equal(testInstance, []execshell.CommandName{execshell.CommandTar}, executor.commandNames())
}

func TestBoostInstallerFailures(testInstance *testing.T) {
	downloadFailure := errors.New("connection reset")

	testCases := []struct {
		name          string
		options       installer.BoostOptions
		downloadError error
		expectedError error
	}{
		{name: "missing_directory", options: installer.BoostOptions{Version: "1.70.0"}, expectedError: installer.ErrBoostDirectoryRequired},
		{name: "missing_version", options: installer.BoostOptions{Directory: "boost"}, expectedError: installer.ErrBoostVersionRequired},
		{name: "download_failure", options: installer.BoostOptions{Version: "1.70.0"}, downloadError: downloadFailure, expectedError: downloadFailure},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			options := testCase.options
			if testCase.downloadError != nil {
				options.Directory = testInstance.TempDir()
			}
			executor := newRecordingExecutor()
			boostInstaller, installerError := installer.NewBoostInstaller(zap.NewNop(), newTestProvisioner(testInstance, &recordingDownloader{err: testCase.downloadError}, executor, installer.Platform{}))
			require.NoError(testInstance, installerError)

			_, installError := boostInstaller.Install(context.Background(), options)
			require.ErrorIs(testInstance, installError, testCase.expectedError)
			require.Empty(testInstance, executor.commands)
		})
	}
}
