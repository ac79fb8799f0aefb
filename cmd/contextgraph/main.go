// Command contextgraph is the CLI entrypoint.
package main

import "github.com/chrispaulintheory/ContextGraph/cmd"

func main() {
	cmd.Execute()
}
