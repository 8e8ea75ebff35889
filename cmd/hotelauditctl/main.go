package main

import (
	"os"

	"github.com/hotel-audit/hotelaudit/cmd/hotelauditctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
