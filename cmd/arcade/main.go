// Command arcade drives the space shooter with hand position zones and hand
// shapes.
package main

import (
	"github.com/ayusman/cvgames/internal/cli"
	"github.com/ayusman/cvgames/internal/controller"
)

func main() {
	cli.Main(controller.NameArcade)
}
