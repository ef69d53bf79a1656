package percentencode

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant                = "percent-encode [text]"
	commandShortDescriptionConstant   = "Percent-encode text for use in a URL path segment"
	commandLongDescriptionConstant    = "percent-encode escapes every character except letters, digits and _.-~ so the result can be used as a single URL path segment. Without an argument the text is read from standard input and surrounding whitespace is trimmed."
	commandExampleConstant            = "relkit percent-encode feature/login\necho 'release/2.0' | relkit percent-encode"
	inputReadErrorTemplateConstant    = "unable to read text from standard input: %w"
	outputWriteErrorTemplateConstant  = "unable to write encoded text: %w"
	inputReaderMissingMessageConstant = "input reader not configured"
	encodedTextLogMessageConstant     = "Percent-encoded text"
	logFieldInputLengthConstant       = "input_length"
	logFieldOutputLengthConstant      = "output_length"
	maximumArgumentCountConstant      = 1
)

// ErrInputReaderNotConfigured indicates stdin input was needed but no reader was available.
var ErrInputReaderNotConfigured = errors.New(inputReaderMissingMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the percent-encode command.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	// InputReader overrides the command's standard input.
	InputReader io.Reader
}

// Build constructs the percent-encode command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.MaximumNArgs(maximumArgumentCountConstant),
		RunE:    builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	text, inputError := builder.readInput(command, arguments)
	if inputError != nil {
		return inputError
	}

	encodedText := Encode(text)
	builder.resolveLogger().Debug(
		encodedTextLogMessageConstant,
		zap.Int(logFieldInputLengthConstant, len(text)),
		zap.Int(logFieldOutputLengthConstant, len(encodedText)),
	)

	if _, writeError := fmt.Fprintln(command.OutOrStdout(), encodedText); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
	}
	return nil
}

func (builder *CommandBuilder) readInput(command *cobra.Command, arguments []string) (string, error) {
	if len(arguments) > 0 {
		return arguments[0], nil
	}

	inputReader := builder.InputReader
	if inputReader == nil {
		inputReader = command.InOrStdin()
	}
	if inputReader == nil {
		return "", ErrInputReaderNotConfigured
	}

	contents, readError := io.ReadAll(inputReader)
	if readError != nil {
		return "", fmt.Errorf(inputReadErrorTemplateConstant, readError)
	}
	return strings.TrimSpace(string(contents)), nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
