// Command bwcc is the BWCC compiler's CLI host.
package main

import (
	"fmt"
	"os"

	"github.com/chinanuke/bwcc/cmd/bwcc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
