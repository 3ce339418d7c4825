package hiyadrive

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/Myangsun/HiyaDrive.Version=...".
var Version = "0.3.0-dev"
