package main

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X main.Version=v1.2.3 -X main.Commit=abc123 -X main.BuildTime=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)
