package main

import "github.com/pfrederiksen/gradescope-sync/internal/cli"

func main() {
	cli.Execute()
}
