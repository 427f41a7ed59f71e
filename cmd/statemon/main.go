package main

import "github.com/raybest4u/statemon/cmd/statemon/cmd"

func main() {
	cmd.Execute()
}
