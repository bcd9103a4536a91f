package main

import "github.com/craftnet/rcon/internal/cli"

func main() {
	cli.Execute()
}
