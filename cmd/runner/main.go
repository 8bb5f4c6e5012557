// Command runner plays the endless runner with the whole body: join hands to
// start, step sideways to change lanes, jump and crouch.
package main

import (
	"github.com/ayusman/cvgames/internal/cli"
	"github.com/ayusman/cvgames/internal/controller"
)

func main() {
	cli.Main(controller.NameRunner)
}
