package cmd

import (
	"fmt"

	"go.ntppool.org/common/config/depenv"
)

// ServerCmd configures the image server. Every option can also be set
// with the listed environment variable.
type ServerCmd struct {
	Images         string `default:"images.csv" env:"IMAGEROTATE_IMAGES" help:"Image catalog file" type:"path"`
	Listen         string `default:":8000" env:"IMAGEROTATE_LISTEN" help:"Listen address"`
	Watch          bool   `default:"true" negatable:"" env:"IMAGEROTATE_WATCH" help:"Reload the catalog when the file changes"`
	RecencySize    int    `default:"5" env:"IMAGEROTATE_RECENCY_SIZE" help:"Number of recently shown images to exclude"`
	MetricsPort    int    `default:"9000" env:"IMAGEROTATE_METRICS_PORT" help:"Metrics server port"`
	HealthPort     int    `default:"8080" env:"IMAGEROTATE_HEALTH_PORT" help:"Health check port"`
	DeploymentMode string `default:"devel" env:"DEPLOYMENT_MODE" help:"prod, test or devel"`
}

func (cmd *ServerCmd) Validate() error {
	if cmd.RecencySize < 0 {
		return fmt.Errorf("recency-size must not be negative")
	}
	if _, err := cmd.deploymentEnv(); err != nil {
		return err
	}
	return nil
}

func (cmd *ServerCmd) deploymentEnv() (depenv.DeploymentEnvironment, error) {
	depEnv := depenv.DeploymentEnvironmentFromString(cmd.DeploymentMode)
	if depEnv == depenv.DeployUndefined {
		return depEnv, fmt.Errorf("unknown deployment mode %q", cmd.DeploymentMode)
	}
	return depEnv, nil
}
