package main

import (
	"fmt"
	"os"

	"github.com/stxkxs/bluebot/internal/cli"
	boterrors "github.com/stxkxs/bluebot/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if s := boterrors.Suggestion(err); s != "" {
			fmt.Fprintln(os.Stderr, "  →", s)
		}
		os.Exit(1)
	}
}
