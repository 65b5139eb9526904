// Package logger builds the shared zap logger.
package logger

import (
	"go.uber.org/zap"

	"github.com/in-labs/in-server/internal/platform/config"
)

// New returns a logger tuned for the deployment environment: JSON output in
// production, console output everywhere else.
func New(env config.Environment) (*zap.Logger, error) {
	if env == config.EnvProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
