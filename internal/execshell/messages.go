package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCatFileSubcommandNameConstant  = "cat-file"
	gitBranchSubcommandNameConstant   = "branch"
	gitContainsFlagConstant           = "--contains"
	tarExtractFlagConstant            = "xf"
	sevenZipExtractSubcommandConstant = "x"
	cmakeBuildFlagConstant            = "--build"
	cmakeTargetFlagConstant           = "--target"
)

const (
	gitCatFileStartTemplateConstant                = "Checking whether commit %s exists in %s"
	gitCatFileSuccessTemplateConstant              = "Commit %s exists in %s"
	gitCatFileFailureTemplateConstant              = "Commit %s is not present in %s (exit code %d%s)"
	gitCatFileExecutionFailureTemplateConstant     = "Unable to check commit %s in %s: %s"
	gitContainsStartTemplateConstant               = "Listing branches containing %s in %s"
	gitContainsSuccessTemplateConstant             = "Listed branches containing %s in %s"
	gitContainsFailureTemplateConstant             = "Failed to list branches containing %s in %s (exit code %d%s)"
	gitContainsExecutionFailureTemplateConstant    = "Unable to list branches containing %s in %s: %s"
	extractStartTemplateConstant                   = "Extracting %s"
	extractSuccessTemplateConstant                 = "Extracted %s"
	extractFailureTemplateConstant                 = "Failed to extract %s (exit code %d%s)"
	extractExecutionFailureTemplateConstant        = "Unable to extract %s: %s"
	cmakeConfigureStartTemplateConstant            = "Configuring CMake project in %s"
	cmakeConfigureSuccessTemplateConstant          = "Configured CMake project in %s"
	cmakeConfigureFailureTemplateConstant          = "Failed to configure CMake project in %s (exit code %d%s)"
	cmakeConfigureExecutionFailureTemplateConstant = "Unable to configure CMake project in %s: %s"
	cmakeBuildStartTemplateConstant                = "Building target %s in %s"
	cmakeBuildSuccessTemplateConstant              = "Built target %s in %s"
	cmakeBuildFailureTemplateConstant              = "Failed to build target %s in %s (exit code %d%s)"
	cmakeBuildExecutionFailureTemplateConstant     = "Unable to build target %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandTar, CommandSevenZip:
		return formatter.describeExtractionMessage(command, result, failure, stage)
	case CommandCMake:
		return formatter.describeCMakeMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch strings.TrimSpace(arguments[0]) {
	case gitCatFileSubcommandNameConstant:
		commit := formatter.lastArgument(arguments)
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(gitCatFileStartTemplateConstant, commit, workingDirectory),
			fmt.Sprintf(gitCatFileSuccessTemplateConstant, commit, workingDirectory),
			func(exitCode int, standardError string) string {
				return fmt.Sprintf(gitCatFileFailureTemplateConstant, commit, workingDirectory, exitCode, standardError)
			},
			func(failureMessage string) string {
				return fmt.Sprintf(gitCatFileExecutionFailureTemplateConstant, commit, workingDirectory, failureMessage)
			},
		)
	case gitBranchSubcommandNameConstant:
		if !containsArgument(arguments, gitContainsFlagConstant) {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		commit := argumentAfter(arguments, gitContainsFlagConstant)
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(gitContainsStartTemplateConstant, commit, workingDirectory),
			fmt.Sprintf(gitContainsSuccessTemplateConstant, commit, workingDirectory),
			func(exitCode int, standardError string) string {
				return fmt.Sprintf(gitContainsFailureTemplateConstant, commit, workingDirectory, exitCode, standardError)
			},
			func(failureMessage string) string {
				return fmt.Sprintf(gitContainsExecutionFailureTemplateConstant, commit, workingDirectory, failureMessage)
			},
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeExtractionMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	subcommand := strings.TrimSpace(arguments[0])
	if subcommand != tarExtractFlagConstant && subcommand != sevenZipExtractSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	archive := filepath.Base(arguments[1])
	return formatter.selectTemplate(stage, result, failure,
		fmt.Sprintf(extractStartTemplateConstant, archive),
		fmt.Sprintf(extractSuccessTemplateConstant, archive),
		func(exitCode int, standardError string) string {
			return fmt.Sprintf(extractFailureTemplateConstant, archive, exitCode, standardError)
		},
		func(failureMessage string) string {
			return fmt.Sprintf(extractExecutionFailureTemplateConstant, archive, failureMessage)
		},
	)
}

func (formatter CommandMessageFormatter) describeCMakeMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, cmakeBuildFlagConstant) {
		target := argumentAfter(arguments, cmakeTargetFlagConstant)
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(cmakeBuildStartTemplateConstant, target, workingDirectory),
			fmt.Sprintf(cmakeBuildSuccessTemplateConstant, target, workingDirectory),
			func(exitCode int, standardError string) string {
				return fmt.Sprintf(cmakeBuildFailureTemplateConstant, target, workingDirectory, exitCode, standardError)
			},
			func(failureMessage string) string {
				return fmt.Sprintf(cmakeBuildExecutionFailureTemplateConstant, target, workingDirectory, failureMessage)
			},
		)
	}

	return formatter.selectTemplate(stage, result, failure,
		fmt.Sprintf(cmakeConfigureStartTemplateConstant, workingDirectory),
		fmt.Sprintf(cmakeConfigureSuccessTemplateConstant, workingDirectory),
		func(exitCode int, standardError string) string {
			return fmt.Sprintf(cmakeConfigureFailureTemplateConstant, workingDirectory, exitCode, standardError)
		},
		func(failureMessage string) string {
			return fmt.Sprintf(cmakeConfigureExecutionFailureTemplateConstant, workingDirectory, failureMessage)
		},
	)
}

func (formatter CommandMessageFormatter) selectTemplate(
	stage messageStage,
	result ExecutionResult,
	failure error,
	startMessage string,
	successMessage string,
	failureMessage func(exitCode int, standardError string) string,
	executionFailureMessage func(failureMessage string) string,
) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return failureMessage(result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return executionFailureMessage(formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	label := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, label)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, label)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, label, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, label, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	commandParts = append(commandParts, command.Details.Arguments...)
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)

	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) lastArgument(arguments []string) string {
	if len(arguments) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return strings.TrimSpace(arguments[len(arguments)-1])
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == expected {
			return true
		}
	}
	return false
}

func argumentAfter(arguments []string, flag string) string {
	for argumentIndex, argument := range arguments {
		if strings.TrimSpace(argument) != flag {
			continue
		}
		if argumentIndex+1 < len(arguments) {
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}
