package main

import (
	"os"

	"github.com/MeulenG/Puhaa-WoW/cmd/wowcli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
