package main

import (
	"github.com/pickemleague/pickem-server/internal/cli"
)

func main() {
	cli.Execute()
}
