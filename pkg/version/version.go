package version

// Version is stamped at build time:
// go build -ldflags "-X github.com/kusalwijekoon97/ml-be/pkg/version.Version=1.0.0".
var Version = "dev"
