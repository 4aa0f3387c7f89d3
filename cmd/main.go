// Command discord-presence shows a Discord rich presence from the command
// line.
//
//	discord-presence run --client-id 425407036495495169 --state "Editing" --details "main.go"
//	discord-presence ping --client-id 425407036495495169
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
