// Package main is the entry point for the labcat CLI.
package main

import (
	"github.com/donaldgifford/lab-catalog/cmd/labcat/cmd"
)

func main() {
	cmd.Execute()
}
