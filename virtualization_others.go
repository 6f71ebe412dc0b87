//go:build !linux && !windows && !darwin
// +build !linux,!windows,!darwin

package hostprobe

func platformVirtualizationCheck() (bool, string) {
	return false, "virtualization enablement check is not implemented on this OS"
}
