package execshell

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeEnvironmentInheritsWithoutOverrides(testInstance *testing.T) {
	require.Nil(testInstance, mergeEnvironment(nil))
}

func TestMergeEnvironmentAppendsSortedOverrides(testInstance *testing.T) {
	merged := mergeEnvironment(map[string]string{"RELKIT_B": "2", "RELKIT_A": "1"})

	inherited := len(os.Environ())
	require.Len(testInstance, merged, inherited+2)
	require.Equal(testInstance, []string{"RELKIT_A=1", "RELKIT_B=2"}, merged[inherited:])
}
