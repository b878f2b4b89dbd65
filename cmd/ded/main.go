// ded is a Helm post-renderer that drops duplicate manifests.
package main

import (
	"os"

	"github.com/hupe1980/ded/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
