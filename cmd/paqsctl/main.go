// Command paqsctl drives a paqs session from the terminal. State is kept in
// a bbolt file so selections and theme pins survive between invocations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
