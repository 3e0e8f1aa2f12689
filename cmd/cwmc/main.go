package main

import "github.com/cwmc/portable-launcher/internal/cli"

func main() {
	cli.Execute()
}
