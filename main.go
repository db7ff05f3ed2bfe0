package main

import (
	"os"

	"github.com/ryangerardwilson/gitguru/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
