package main

import "github.com/gyanova/gyanova/internal/commands"

func main() {
	commands.Execute()
}
