package ui

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/relkit/internal/execshell"
)

// ConsoleCommandEventLogger turns git, tar, 7z and cmake lifecycle events into
// one readable sentence each, such as "Extracting boost_1_74_0.tar.gz", for
// console log output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs an event logger writing to logger, or discarding events when logger is nil.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	eventLogger.write(zapcore.InfoLevel, func(formatter execshell.CommandMessageFormatter) string {
		return formatter.BuildStartedMessage(command)
	})
}

// CommandCompleted implements execshell.CommandEventObserver. Non-zero exits are warnings.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode != 0 {
		eventLogger.write(zapcore.WarnLevel, func(formatter execshell.CommandMessageFormatter) string {
			return formatter.BuildFailureMessage(command, result)
		})
		return
	}
	eventLogger.write(zapcore.InfoLevel, func(formatter execshell.CommandMessageFormatter) string {
		return formatter.BuildSuccessMessage(command, result)
	})
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	eventLogger.write(zapcore.ErrorLevel, func(formatter execshell.CommandMessageFormatter) string {
		return formatter.BuildExecutionFailureMessage(command, failure)
	})
}

// write formats the message only when the level is enabled.
func (eventLogger *ConsoleCommandEventLogger) write(level zapcore.Level, buildMessage func(execshell.CommandMessageFormatter) string) {
	if eventLogger == nil || eventLogger.logger == nil {
		return
	}
	if !eventLogger.logger.Core().Enabled(level) {
		return
	}
	if checkedEntry := eventLogger.logger.Check(level, buildMessage(eventLogger.formatter)); checkedEntry != nil {
		checkedEntry.Write()
	}
}
