package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/relkit/internal/execshell"
)

type runnerFunc func(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)

func (function runnerFunc) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	return function(executionContext, command)
}

func fixedRunner(result execshell.ExecutionResult, runError error, recorded *[]execshell.ShellCommand) runnerFunc {
	return func(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
		if recorded != nil {
			*recorded = append(*recorded, command)
		}
		return result, runError
	}
}

type recordingEventObserver struct {
	events []string
}

func (eventObserver *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	eventObserver.events = append(eventObserver.events, "started:"+string(command.Name))
}

func (eventObserver *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	eventObserver.events = append(eventObserver.events, "completed:"+string(command.Name))
}

func (eventObserver *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	eventObserver.events = append(eventObserver.events, "failed:"+string(command.Name))
}

func TestNewShellExecutorRequiresCollaborators(testInstance *testing.T) {
	_, loggerError := execshell.NewShellExecutor(nil, fixedRunner(execshell.ExecutionResult{}, nil, nil))
	require.ErrorIs(testInstance, loggerError, execshell.ErrLoggerNotConfigured)

	_, runnerError := execshell.NewShellExecutor(zap.NewNop(), nil)
	require.ErrorIs(testInstance, runnerError, execshell.ErrCommandRunnerNotConfigured)

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), fixedRunner(execshell.ExecutionResult{}, nil, nil), nil)
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, executor)
}

func TestShellExecutorLogsLifecycle(testInstance *testing.T) {
	testCases := []struct {
		name           string
		runnerResult   execshell.ExecutionResult
		runnerError    error
		expectedLevels []zapcore.Level
		expectedError  func(testInstance *testing.T, executionError error)
	}{
		{
			name:           "zero_exit",
			runnerResult:   execshell.ExecutionResult{StandardOutput: "abc123\n"},
			expectedLevels: []zapcore.Level{zapcore.InfoLevel, zapcore.InfoLevel},
		},
		{
			name:           "non_zero_exit",
			runnerResult:   execshell.ExecutionResult{StandardError: "gzip: stdin: not in gzip format\n", ExitCode: 2},
			expectedLevels: []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel},
			expectedError: func(testInstance *testing.T, executionError error) {
				var failedError execshell.CommandFailedError
				require.ErrorAs(testInstance, executionError, &failedError)
				require.Equal(testInstance, 2, failedError.Result.ExitCode)
				require.Equal(testInstance, "tar exited with code 2: gzip: stdin: not in gzip format", executionError.Error())
			},
		},
		{
			name:           "runner_failure",
			runnerError:    errors.New("executable file not found"),
			expectedLevels: []zapcore.Level{zapcore.InfoLevel, zapcore.ErrorLevel},
			expectedError: func(testInstance *testing.T, executionError error) {
				var runFailure execshell.CommandExecutionError
				require.ErrorAs(testInstance, executionError, &runFailure)
				require.EqualError(testInstance, errors.Unwrap(executionError), "executable file not found")
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			executor, creationError := execshell.NewShellExecutor(zap.New(observerCore), fixedRunner(testCase.runnerResult, testCase.runnerError, nil))
			require.NoError(testInstance, creationError)

			result, executionError := executor.ExecuteTar(context.Background(), execshell.CommandDetails{
				Arguments:        []string{"xf", "boost_1_74_0.tar.gz"},
				WorkingDirectory: "/opt/third_party",
			})

			if testCase.expectedError == nil {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult, result)
			} else {
				testCase.expectedError(testInstance, executionError)
				require.Equal(testInstance, execshell.ExecutionResult{}, result)
			}

			entries := observedLogs.All()
			require.Len(testInstance, entries, len(testCase.expectedLevels))
			for entryIndex, expectedLevel := range testCase.expectedLevels {
				require.Equal(testInstance, expectedLevel, entries[entryIndex].Level)
			}
			require.Equal(testInstance, "Extracting boost_1_74_0.tar.gz", entries[0].Message)
			require.Equal(testInstance, "/opt/third_party", entries[0].ContextMap()["working_directory"])
		})
	}
}

func TestShellExecutorPrefersObserverOverLogs(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.DebugLevel)
	eventObserver := &recordingEventObserver{}

	executor, creationError := execshell.NewShellExecutor(
		zap.New(observerCore),
		fixedRunner(execshell.ExecutionResult{ExitCode: 1}, nil, nil),
		execshell.WithCommandEventObserver(eventObserver),
	)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteCMake(context.Background(), execshell.CommandDetails{Arguments: []string{"--build", "."}})
	require.Error(testInstance, executionError)

	require.Equal(testInstance, []string{"started:cmake", "completed:cmake"}, eventObserver.events)
	require.Zero(testInstance, observedLogs.Len())
}

func TestShellExecutorWrappersPassDetailsThrough(testInstance *testing.T) {
	details := execshell.CommandDetails{
		Arguments:            []string{"--version"},
		WorkingDirectory:     "/tmp/work",
		EnvironmentVariables: map[string]string{"LC_ALL": "C"},
	}

	wrappers := map[execshell.CommandName]func(executor *execshell.ShellExecutor) (execshell.ExecutionResult, error){
		execshell.CommandGit: func(executor *execshell.ShellExecutor) (execshell.ExecutionResult, error) {
			return executor.ExecuteGit(context.Background(), details)
		},
		execshell.CommandTar: func(executor *execshell.ShellExecutor) (execshell.ExecutionResult, error) {
			return executor.ExecuteTar(context.Background(), details)
		},
		execshell.CommandSevenZip: func(executor *execshell.ShellExecutor) (execshell.ExecutionResult, error) {
			return executor.ExecuteSevenZip(context.Background(), details)
		},
		execshell.CommandCMake: func(executor *execshell.ShellExecutor) (execshell.ExecutionResult, error) {
			return executor.ExecuteCMake(context.Background(), details)
		},
		execshell.CommandName("b2"): func(executor *execshell.ShellExecutor) (execshell.ExecutionResult, error) {
			return executor.Execute(context.Background(), execshell.ShellCommand{Name: "b2", Details: details})
		},
	}

	for expectedName, invoke := range wrappers {
		testInstance.Run(string(expectedName), func(testInstance *testing.T) {
			var recorded []execshell.ShellCommand
			executor, creationError := execshell.NewShellExecutor(zap.NewNop(), fixedRunner(execshell.ExecutionResult{}, nil, &recorded))
			require.NoError(testInstance, creationError)

			_, executionError := invoke(executor)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, []execshell.ShellCommand{{Name: expectedName, Details: details}}, recorded)
		})
	}
}

func TestShellExecutorPassesContextToRunner(testInstance *testing.T) {
	type contextKey struct{}
	executionContext := context.WithValue(context.Background(), contextKey{}, "marker")

	var observedValue any
	runner := runnerFunc(func(runContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
		observedValue = runContext.Value(contextKey{})
		return execshell.ExecutionResult{}, nil
	})

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), runner)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: []string{"rev-parse", "HEAD"}})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "marker", observedValue)
}
