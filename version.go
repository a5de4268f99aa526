package jackroute

// Version is the library version reported in every diagnostic report.
// Release builds override it with -ldflags "-X github.com/opd-ai/jackroute.Version=...".
var Version = "v0.3.0"
