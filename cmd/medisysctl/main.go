package main

import "github.com/medisys-health/diagnostics/cmd/medisysctl/command"

func main() {
	command.Execute()
}
