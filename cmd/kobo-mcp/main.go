package main

import (
	kobocmd "github.com/bbdaniels/kobo-mcp/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	kobocmd.SetVersionInfo(version, commit)
	kobocmd.Execute()
}
