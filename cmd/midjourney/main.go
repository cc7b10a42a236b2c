// Package main provides the midjourney CLI tool.
//
// Usage:
//
//	midjourney [flags] <command> [args]
//
// Commands:
//
//	imagine    - Generate an image grid from a prompt
//	variation  - Vary one image of a finished grid
//	history    - List and show finished jobs
//	config     - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.midjourney/
//	Use 'midjourney config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/midjourney-go/cmd/midjourney/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
