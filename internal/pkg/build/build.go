package build

// Defined on build time:

var (
	GitCommit    = "-"
	BuildVersion = "dev"
	BuildDate    = "-"
)
