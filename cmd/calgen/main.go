package main

import (
	"os"

	appLog "calgen/internal/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		appLog.Error("calgen failed", err)
		os.Exit(1)
	}
}
