package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueValueConstant          = "true"
	toggleFalseValueConstant         = "false"
	toggleTypeNameConstant           = "bool"
	toggleParseErrorTemplateConstant = "invalid toggle value %q (expected yes/no, true/false, on/off or 1/0)"
	toggleDefaultTruePlaceholder     = "<YES|no>"
	toggleDefaultFalsePlaceholder    = "<yes|NO>"
	toggleUsagePlaceholderTemplate   = "`%s`"
	toggleUsageTemplateConstant      = "`%s` %s"
	argumentTerminatorConstant       = "--"
	longFlagPrefixConstant           = "--"
	shortFlagPrefixConstant          = "-"
	flagValueSeparatorConstant       = "="
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"t":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"f":     false,
	"n":     false,
}

// toggleRegistry remembers which flags are toggles so that their values can be
// joined to the flag before pflag sees them.
type toggleRegistry struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

var registeredToggles = &toggleRegistry{
	names:      map[string]struct{}{},
	shorthands: map[string]struct{}{},
}

func (registry *toggleRegistry) register(name string, shorthand string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registry.shorthands[shorthand] = struct{}{}
	}
}

func (registry *toggleRegistry) contains(name string, isShorthand bool) bool {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	if isShorthand {
		_, found := registry.shorthands[name]
		return found
	}
	_, found := registry.names[name]
	return found
}

// AddToggleFlag registers a boolean flag that also accepts yes/no style values,
// both as --flag=value and, after NormalizeToggleArguments, as --flag value.
// A bare --flag means true. target may be nil when callers read the flag through the FlagSet.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleValue{current: defaultValue, target: target}
	if target != nil {
		*target = defaultValue
	}
	flag := flagSet.VarPF(value, name, shorthand, usage)
	flag.NoOptDefVal = toggleTrueValueConstant
	flag.Usage = toggleUsage(usage, defaultValue)

	registeredToggles.register(name, shorthand)
}

// NormalizeToggleArguments joins a registered toggle flag with a following
// non-flag value, so "--dry-run no" becomes "--dry-run=no". Arguments after
// "--" are left untouched.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminatorConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if needsJoinedValue(argument) && index+1 < len(arguments) && !strings.HasPrefix(arguments[index+1], shortFlagPrefixConstant) {
			normalized = append(normalized, argument+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, argument)
	}

	return normalized
}

// needsJoinedValue reports whether argument is a registered toggle without an inline value.
func needsJoinedValue(argument string) bool {
	var flagName string
	isShorthand := false
	switch {
	case strings.HasPrefix(argument, longFlagPrefixConstant):
		flagName = strings.TrimPrefix(argument, longFlagPrefixConstant)
	case strings.HasPrefix(argument, shortFlagPrefixConstant):
		flagName = strings.TrimPrefix(argument, shortFlagPrefixConstant)
		isShorthand = true
		if len(flagName) != 1 {
			return false
		}
	default:
		return false
	}

	if len(flagName) == 0 || strings.Contains(flagName, flagValueSeparatorConstant) {
		return false
	}
	return registeredToggles.contains(flagName, isShorthand)
}

func toggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDefaultFalsePlaceholder
	if defaultValue {
		placeholder = toggleDefaultTruePlaceholder
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsagePlaceholderTemplate, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplateConstant, placeholder, trimmedDescription)
}

// toggleValue implements pflag.Value for yes/no toggles.
type toggleValue struct {
	current bool
	target  *bool
}

func (value *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := ParseToggle(rawValue)
	if parseError != nil {
		return parseError
	}

	value.current = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.current {
		return toggleTrueValueConstant
	}
	return toggleFalseValueConstant
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}

// ParseToggle interprets yes/no, true/false, on/off, 1/0 and their single-letter
// forms, case-insensitively. An empty value means true.
func ParseToggle(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	parsedValue, known := toggleLiterals[normalizedValue]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
	}
	return parsedValue, nil
}
