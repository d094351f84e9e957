// Package main is the entry point for the issue tracker operator CLI.
package main

import (
	"os"

	"github.com/spec-kit/issue-tracker/cmd/trackerctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
