package main

import (
	basecmd "go.ntppool.org/imagerotate/cmd"
	"go.ntppool.org/imagerotate/server/cmd"
)

func main() {
	basecmd.Run(&cmd.Cmd{}, "imagerotate", "Serve a random image from a tagged catalog")
}
