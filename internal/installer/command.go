package installer

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/ui"
)

const (
	requiredFlagMissingTemplateConstant = "--%s is required"
	emptyStringConstant                 = ""
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}

	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func resolveInstallerResolver(configured InstallerResolver, humanReadableLoggingProvider HumanReadableLoggingProvider, logger *zap.Logger) InstallerResolver {
	if configured != nil {
		return configured
	}

	defaultResolver := &DefaultInstallerResolver{}
	if humanReadableLoggingProvider != nil && humanReadableLoggingProvider() {
		defaultResolver.CommandEventObserver = ui.NewConsoleCommandEventLogger(logger)
	}
	return defaultResolver
}

func readStringFlag(command *cobra.Command, flagName string, configurationValue string) (string, error) {
	flagValue, flagError := command.Flags().GetString(flagName)
	if flagError != nil {
		return "", flagError
	}
	return selectStringValue(flagValue, configurationValue), nil
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	return strings.TrimSpace(configurationValue)
}
