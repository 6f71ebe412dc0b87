//go:build !linux && !windows
// +build !linux,!windows

package hostprobe

var newBackend BackendFactory = func() (Backend, error) {
	return nil, newError(KindUnsupported, ErrUnsupportedPlatform, "no hardware query backend")
}
