package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/ipp23/interp/internal/maincmd"
)

func main() {
	var c maincmd.Cmd
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
