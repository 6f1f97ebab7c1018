// Command ratapay is the operator CLI for the Ratapay API: it signs requests
// by hand, checks invoice files before they are sent, and calls the API with
// the merchant credentials from the environment.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
