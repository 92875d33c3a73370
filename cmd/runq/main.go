// Package main is the entry point for the runq CLI.
package main

import "github.com/leapstack-labs/runq/internal/cli"

func main() {
	cli.Execute()
}
