package main

import (
	"os"

	"pacas-inventario/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
