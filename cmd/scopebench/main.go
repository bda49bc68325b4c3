// Command scopebench runs the scopetimer workloads: instrumentation overhead,
// memory footprint of large trees and multi-worker aggregation.
package main

import (
	"os"

	"github.com/onegii/go-scopetimer/cmd/scopebench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
