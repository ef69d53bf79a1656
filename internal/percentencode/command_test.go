package percentencode_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relkit/internal/percentencode"
)

func TestPercentEncodeCommand(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		standardInput  string
		expectedOutput string
	}{
		{
			name:           "argument",
			arguments:      []string{"feature/login"},
			expectedOutput: "feature%2Flogin\n",
		},
		{
			name:           "standard_input_trimmed",
			standardInput:  "  release/2.0\n",
			expectedOutput: "release%2F2.0\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			builder := percentencode.CommandBuilder{InputReader: strings.NewReader(testCase.standardInput)}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			outputBuffer := &bytes.Buffer{}
			command.SetOut(outputBuffer)
			command.SetArgs(append([]string{}, testCase.arguments...))

			require.NoError(testInstance, command.Execute())
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
		})
	}
}

func TestPercentEncodeCommandRejectsExtraArguments(testInstance *testing.T) {
	builder := percentencode.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"one", "two"})
	require.Error(testInstance, command.Execute())
}
