package main

import "github.com/kimbia-events/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
