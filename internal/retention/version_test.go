package retention_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relkit/internal/retention"
)

func TestParseVersion(testInstance *testing.T) {
	testCases := []struct {
		name           string
		identifier     retention.VersionIdentifier
		expectedCommit string
		expectedBranch string
	}{
		{
			name:           "describe_output_with_simple_branch",
			identifier:     "1.4.0-12-g1a2b3c4_master",
			expectedCommit: "1a2b3c4",
			expectedBranch: "master",
		},
		{
			name:           "branch_with_slashes_and_underscores",
			identifier:     "0.9.1-3-gdeadbee_feature/add_login",
			expectedCommit: "deadbee",
			expectedBranch: "feature/add_login",
		},
		{
			name:           "branch_with_hyphens",
			identifier:     "2.0.0-0-gcafe123_release-2.0",
			expectedCommit: "cafe123",
			expectedBranch: "release-2.0",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedVersion, parseError := retention.ParseVersion(testCase.identifier)
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.identifier, parsedVersion.Identifier)
			require.Equal(testInstance, testCase.expectedCommit, parsedVersion.CommitHash)
			require.Equal(testInstance, testCase.expectedBranch, parsedVersion.Branch)
		})
	}
}

func TestParseVersionRejectsMalformedIdentifiers(testInstance *testing.T) {
	testCases := []struct {
		name       string
		identifier retention.VersionIdentifier
	}{
		{name: "too_few_segments", identifier: "1.4.0-g1a2b3c4_master"},
		{name: "missing_branch_separator", identifier: "1.4.0-12-g1a2b3c4"},
		{name: "empty_commit_hash", identifier: "1.4.0-12-g_master"},
		{name: "empty_branch", identifier: "1.4.0-12-g1a2b3c4_"},
		{name: "empty_identifier", identifier: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, parseError := retention.ParseVersion(testCase.identifier)
			require.Error(testInstance, parseError)
			require.ErrorIs(testInstance, parseError, retention.ErrMalformedVersion)

			var malformedError retention.MalformedVersionError
			require.ErrorAs(testInstance, parseError, &malformedError)
			require.Equal(testInstance, testCase.identifier, malformedError.Identifier)
		})
	}
}
