// ABOUTME: Entry point for the morning CLI.
// ABOUTME: Loads .env into the process, then runs the root Cobra command.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
