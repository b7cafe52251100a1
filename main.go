// Idiomatic entrypoint for Cobra CLI that deletes handling to the Cobra root command in cmd/root.go

package main

import (
	"github.com/inference-sim/pumas-go/cmd"
)

func main() {
	cmd.Execute()
}
