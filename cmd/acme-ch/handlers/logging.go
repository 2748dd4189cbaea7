package handlers

import (
	"os"

	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/acmech/dataplane/internal/config"
)

// SetupLogging installs the process logger on stderr. Verbose output or
// ACME_CH_DEBUG=true switches to development mode with debug level.
func SetupLogging(verbose bool) {
	opts := zap.Options{
		Development: verbose || os.Getenv(config.EnvDebug) == "true",
		DestWriter:  os.Stderr,
	}
	ctrllog.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
}
