package main

import "hub-versions/internal/cli"

func main() {
	cli.Execute()
}
