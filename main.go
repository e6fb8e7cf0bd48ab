package main

import "github.com/sandwichlabs/mcp-config-extract/cmd"

func main() {
	cmd.Execute()
}
