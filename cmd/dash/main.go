// Command dash jumps in the rhythm platformer on a pinch.
package main

import (
	"github.com/ayusman/cvgames/internal/cli"
	"github.com/ayusman/cvgames/internal/controller"
)

func main() {
	cli.Main(controller.NameDash)
}
