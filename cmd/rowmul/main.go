// SPDX-License-Identifier: MIT

// Command rowmul multiplies two random square matrices by splitting the rows
// of the product among participants.
//
//	rowmul local -p 4 -n 8               # four goroutine participants
//	rowmul serve -p 3 --listen :8080     # coordinator, waits for two peers
//	rowmul join --url ws://host:8080/ws --rank 1
//
// When no dimension is given the coordinator prompts for it on stdin.
package main

import (
	"os"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).root().Execute(); err != nil {
		os.Exit(1)
	}
}
