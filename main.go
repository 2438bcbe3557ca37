package main

import (
	"os"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
