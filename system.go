package hostprobe

import (
	"github.com/spf13/afero"
)

// ServiceState is the state reported by the OS service manager.
type ServiceState int

const (
	ServiceStopped ServiceState = iota
	ServiceRunning
	ServicePending
)

func (s ServiceState) String() string {
	switch s {
	case ServiceRunning:
		return "running"
	case ServicePending:
		return "pending"
	default:
		return "stopped"
	}
}

// System is the set of simple host lookups the probe chains rely on.
type System interface {
	// ServiceState returns the current state of the named service.
	ServiceState(name string) (ServiceState, error)
	// RegistryKeyExists reports whether an HKEY_LOCAL_MACHINE subkey exists.
	RegistryKeyExists(path string) (bool, error)
	// FileExists reports whether path exists.
	FileExists(path string) (bool, error)
}

// hostSystem is the System of the running host. Service and registry lookups
// live in the per-platform files.
type hostSystem struct {
	fs afero.Fs
}

var systemProvider = func() System {
	return &hostSystem{fs: afero.NewOsFs()}
}

func (h *hostSystem) FileExists(path string) (bool, error) {
	ok, err := afero.Exists(h.fs, path)
	if err != nil {
		return false, newError(KindFile, err, "stat %s", path)
	}
	return ok, nil
}
