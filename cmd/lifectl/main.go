package main

import "github.com/tahsinratul/life-client/cmd/lifectl/cmd"

func main() {
	cmd.Execute()
}
