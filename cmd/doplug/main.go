package main

import (
	"os"

	"github.com/arthur-debert/doplug/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
