package main

import (
	"os"

	"github.com/stackaudit/stackaudit/internal/adapters/inbound/cli"
)

func main() {
	os.Exit(cli.Execute())
}
