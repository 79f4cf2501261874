package cmd

import (
	"fmt"

	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/version"

	"go.ntppool.org/imagerotate/selector"
)

func init() {
	logger.ConfigPrefix = "IMAGEROTATE"
}

// Cmd is the command tree for the imagerotate binary.
type Cmd struct {
	Server   ServerCmd            `cmd:"" default:"withargs" help:"run the image server"`
	Check    CheckCmd             `cmd:"" help:"validate an image catalog file"`
	Simulate selector.SimulateCmd `cmd:"" help:"simulate image selection against a catalog"`
	Version  VersionCmd           `cmd:"" help:"print version and build information"`
}

type VersionCmd struct{}

func (cmd VersionCmd) Run() error {
	fmt.Printf("imagerotate %s\n", version.Version())
	return nil
}
