package main

import (
	"errors"
	"fmt"
	"os"

	"primeforge/cmd/primeforge/commands"
	"primeforge/internal/entropy"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		switch {
		case errors.Is(err, entropy.ErrUnavailable):
			os.Exit(2)
		case errors.Is(err, entropy.ErrShortRead):
			os.Exit(3)
		}
		os.Exit(1)
	}
}
