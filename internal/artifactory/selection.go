package artifactory

import (
	"github.com/temirov/relkit/internal/percentencode"
)

// SelectFoldersForDeletion returns the stored folders, in their original order,
// whose name is not an encoded existing branch or is the encoded current branch.
func SelectFoldersForDeletion(folders []string, existingBranches []string, currentBranch string) []string {
	encodedExistingBranches := make(map[string]struct{}, len(existingBranches))
	for _, branch := range existingBranches {
		encodedExistingBranches[percentencode.Encode(branch)] = struct{}{}
	}
	encodedCurrentBranch := percentencode.Encode(currentBranch)

	selected := make([]string, 0, len(folders))
	for _, folder := range folders {
		_, branchExists := encodedExistingBranches[folder]
		if !branchExists || folder == encodedCurrentBranch {
			selected = append(selected, folder)
		}
	}
	return selected
}
