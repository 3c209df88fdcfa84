package version

// Set at build time with -ldflags "-X github.com/aide-systems/aide-core/internal/version.Version=..."
var (
	Version   = "2.0.0"
	Commit    = "unknown"
	BuildTime = ""
)
