// Package cli assembles the relkit command tree. It loads layered
// configuration, builds the zap logger and registers the bintray-prune,
// artifactory-prune, install-boost, install-protobuf and percent-encode
// subcommands.
package cli
