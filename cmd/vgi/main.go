package main

import "vgi/internal/cli"

func main() {
	cli.Execute()
}
