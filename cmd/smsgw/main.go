package main

import (
	"github.com/turtacn/smsgw/cmd/cli"
)

// main is the entry point for the smsgw command-line tool.
// It delegates all execution to the Execute function provided by the cli package.
func main() {
	cli.Execute()
}
