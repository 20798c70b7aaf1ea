// Command setup runs the interactive wizard that writes a backtest
// configuration file.
package main

import (
	"log"

	"github.com/indexalgo/weeklyshort/internal/setup"
)

func main() {
	if err := setup.RunTUI(); err != nil {
		log.Fatal(err)
	}
}
