package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/ui"
)

const (
	testBuildDirectoryConstant             = "/tmp/protobuf-3.5.1/cmake"
	testExecutionFailureReasonConstant     = "execution failed"
	testStandardErrorMessageConstant       = "make: *** [all] Error 2"
	testStartMessageExpectationConstant    = "Building target install in " + testBuildDirectoryConstant
	testSuccessMessageExpectationConstant  = "Built target install in " + testBuildDirectoryConstant
	testFailureMessageExpectationConstant  = "Failed to build target install in " + testBuildDirectoryConstant + " (exit code 2: " + testStandardErrorMessageConstant + ")"
	testExecutionFailureMessageExpectation = "Unable to build target install in " + testBuildDirectoryConstant + ": " + testExecutionFailureReasonConstant
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandCMake,
		Details: execshell.CommandDetails{
			Arguments:        []string{"--build", ".", "--target", "install", "--config", "release"},
			WorkingDirectory: testBuildDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 2, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleCommandEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestConsoleCommandEventLoggerToleratesNilReceiver(testInstance *testing.T) {
	var eventLogger *ui.ConsoleCommandEventLogger
	require.NotPanics(testInstance, func() {
		eventLogger.CommandStarted(execshell.ShellCommand{Name: execshell.CommandTar})
	})
}

func TestConsoleCommandEventLoggerRespectsLevel(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.WarnLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

	command := execshell.ShellCommand{Name: execshell.CommandTar, Details: execshell.CommandDetails{Arguments: []string{"xf", "/tmp/boost_1_74_0.tar.gz"}}}
	eventLogger.CommandStarted(command)
	eventLogger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 2})

	entries := observedLogs.All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "Failed to extract boost_1_74_0.tar.gz (exit code 2)", entries[0].Message)
}
