package percentencode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relkit/internal/percentencode"
)

func TestEncode(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "unreserved_passthrough", input: "Release_1.2-rc~3", expected: "Release_1.2-rc~3"},
		{name: "slash_escaped", input: "feature/login", expected: "feature%2Flogin"},
		{name: "space_and_plus", input: "a b+c", expected: "a%20b%2Bc"},
		{name: "reserved_characters", input: "?#&=:@", expected: "%3F%23%26%3D%3A%40"},
		{name: "percent_sign", input: "100%", expected: "100%25"},
		{name: "non_ascii", input: "café", expected: "caf%C3%A9"},
		{name: "empty", input: "", expected: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, percentencode.Encode(testCase.input))
		})
	}
}

func TestEncodeDecodeRoundTrip(testInstance *testing.T) {
	for _, input := range []string{"feature/login", "bugfix/JIRA-12 spaces & symbols", "ветка/тест", "日本語", "emoji 🚀"} {
		decoded, decodeError := percentencode.Decode(percentencode.Encode(input))
		require.NoError(testInstance, decodeError)
		require.Equal(testInstance, input, decoded)
	}
}

func TestDecodeRejectsInvalidEscapes(testInstance *testing.T) {
	_, decodeError := percentencode.Decode("bad%zz")
	require.Error(testInstance, decodeError)
}
