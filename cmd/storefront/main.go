package main

import (
	"os"

	"github.com/aaravmahajanofficial/storefront/internal/cli"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	os.Exit(cli.Main(version))
}
