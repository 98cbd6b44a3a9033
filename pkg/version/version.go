// Package version exposes build metadata injected via -ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X github.com/AdamSabry1233/Environmental-Footprint-Tracker/pkg/version.version=v0.3.0"
//
//nolint:gochecknoglobals // ldflags targets must be package variables.
var (
	version = "dev"
	commit  = "none"
)

// GetVersion returns the semantic version of the binary, or "dev" for local builds.
func GetVersion() string {
	return version
}

// GetCommit returns the VCS revision the binary was built from.
func GetCommit() string {
	return commit
}
