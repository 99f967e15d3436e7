package device

import (
	"strings"

	"github.com/pkg/errors"
)

// Backend names an execution backend.
type Backend string

// Backend constants.
const (
	BackendAuto Backend = "auto"
	BackendHost Backend = "host"
	BackendCUDA Backend = "cuda"
)

// Normalize maps a user supplied backend name onto a known Backend.
// An empty name selects BackendAuto.
func Normalize(name string) (Backend, error) {
	backend := Backend(strings.ToLower(strings.TrimSpace(name)))
	if backend == "" {
		return BackendAuto, nil
	}
	switch backend {
	case BackendAuto, BackendHost, BackendCUDA:
		return backend, nil
	default:
		return "", errors.Errorf("unknown backend %q (expected auto, host, or cuda)", name)
	}
}

// Available returns a comma-separated list of backends usable in this build.
func Available() string {
	return string(BackendHost)
}

// resolve picks the concrete backend for a normalized name.
func resolve(backend Backend) (Backend, error) {
	switch backend {
	case BackendAuto, BackendHost:
		return BackendHost, nil
	case BackendCUDA:
		return "", errors.Wrapf(ErrBackendUnavailable, "backend %q (available: %s)", backend, Available())
	default:
		return "", errors.Errorf("unknown backend %q", backend)
	}
}
