// Package artifactory removes per-branch artifact folders from an Artifactory
// repository once their branch is gone, plus the folder of the branch being
// built so that each branch keeps at most one build.
package artifactory
