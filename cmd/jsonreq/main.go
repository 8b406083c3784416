package main

import (
	"os"

	"github.com/wesleyorama2/jsonreq/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
