// Command arcade-mouse drives the space shooter with a virtual cursor that
// follows relative hand movement.
package main

import (
	"github.com/ayusman/cvgames/internal/cli"
	"github.com/ayusman/cvgames/internal/controller"
)

func main() {
	cli.Main(controller.NameArcadeMouse)
}
