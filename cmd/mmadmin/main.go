// Command mmadmin provisions admin accounts and applies migrations offline.
package main

import (
	"fmt"
	"os"

	"github.com/and161185/minuteminds/internal/adminctl"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	root := adminctl.NewRootCmd(version, buildDate)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
