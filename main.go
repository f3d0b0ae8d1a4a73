package main

import "github.com/museumhop/exhibition-engine/pkg/cli"

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cli.Execute(Version)
}
