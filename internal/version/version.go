package version

const AppName = "FzMusic"

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/keshon/fzmusic/internal/version.Version=v1.2.0" ./cmd/fzmusic
var Version = "dev"
