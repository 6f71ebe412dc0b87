//go:build !windows
// +build !windows

package hostprobe

func (h *hostSystem) ServiceState(name string) (ServiceState, error) {
	return ServiceStopped, newError(KindUnsupported, ErrUnsupportedPlatform, "service manager lookup of %s", name)
}

func (h *hostSystem) RegistryKeyExists(path string) (bool, error) {
	return false, newError(KindUnsupported, ErrUnsupportedPlatform, `registry lookup of HKLM\%s`, path)
}
