package main

import "github.com/sockdemon/gutterbot/internal/cli"

func main() {
	cli.Execute()
}
