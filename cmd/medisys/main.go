package main

import "github.com/medisys-health/diagnostics/api"

func main() {
	api.MainLoop()
}
