package main

import "github.com/assistkit/assistkit/cmd"

func main() {
	cmd.Execute()
}
