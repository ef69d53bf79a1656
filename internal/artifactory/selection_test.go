package artifactory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relkit/internal/artifactory"
)

func TestSelectFoldersForDeletion(testInstance *testing.T) {
	testCases := []struct {
		name             string
		folders          []string
		existingBranches []string
		currentBranch    string
		expected         []string
	}{
		{
			name:             "deleted_and_current_branches",
			folders:          []string{"abc", "def", "ghi"},
			existingBranches: []string{"abc", "ghi"},
			currentBranch:    "abc",
			expected:         []string{"abc", "def"},
		},
		{
			name:             "encoded_branch_names",
			folders:          []string{"feature%2Flogin", "feature%2Fold", "main"},
			existingBranches: []string{"main", "feature/login", "feature/new"},
			currentBranch:    "feature/new",
			expected:         []string{"feature%2Fold"},
		},
		{
			name:             "unencoded_folder_is_never_an_existing_branch",
			folders:          []string{"feature/login"},
			existingBranches: []string{"feature/login"},
			currentBranch:    "main",
			expected:         []string{"feature/login"},
		},
		{
			name:             "all_branches_alive",
			folders:          []string{"main", "develop"},
			existingBranches: []string{"develop", "main"},
			currentBranch:    "release",
			expected:         []string{},
		},
		{
			name:             "no_folders",
			existingBranches: []string{"main"},
			currentBranch:    "main",
			expected:         []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			selected := artifactory.SelectFoldersForDeletion(testCase.folders, testCase.existingBranches, testCase.currentBranch)
			require.Equal(testInstance, testCase.expected, selected)
		})
	}
}
