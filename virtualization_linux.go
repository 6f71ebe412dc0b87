//go:build linux
// +build linux

package hostprobe

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	kvmDevice = "/dev/kvm"
	// KVM_GET_API_VERSION
	kvmGetAPIVersion = 0xAE00
	kvmAPIVersion    = 12
)

func platformVirtualizationCheck() (bool, string) {
	if _, err := os.Stat(kvmDevice); err != nil {
		return false, kvmDevice + " does not exist"
	}
	f, err := os.OpenFile(kvmDevice, os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Sprintf("cannot open %s: %v; check permissions and that kvm_intel or kvm_amd is loaded", kvmDevice, err)
	}
	defer f.Close()

	version, err := unix.IoctlRetInt(int(f.Fd()), kvmGetAPIVersion)
	if err != nil {
		return false, fmt.Sprintf("%s opened but KVM_GET_API_VERSION failed: %v", kvmDevice, err)
	}
	if version == kvmAPIVersion {
		return true, fmt.Sprintf("%s is accessible with API version %d (expected); KVM is enabled", kvmDevice, version)
	}
	return true, fmt.Sprintf("%s is accessible with API version %d; KVM is probably enabled", kvmDevice, version)
}
