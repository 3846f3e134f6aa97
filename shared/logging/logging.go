package logging

import (
	"go.uber.org/zap"
)

// New builds the service logger. Local environments get the human-readable
// development encoder, everything else logs production JSON.
func New(env, service string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", service)), nil
}
