package main

import (
	"qrlink/cmd"
	_ "qrlink/cmd/cli"
	_ "qrlink/cmd/server"
)

func main() {
	cmd.Execute()
}
