//go:build darwin
// +build darwin

package hostprobe

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// platformVirtualizationCheck reads kern.hv_support (Hypervisor.framework).
func platformVirtualizationCheck() (bool, string) {
	v, err := unix.SysctlUint32("kern.hv_support")
	if err != nil {
		return false, fmt.Sprintf("sysctl kern.hv_support failed: %v", err)
	}
	if v == 1 {
		return true, "kern.hv_support is 1; Hypervisor.framework is available"
	}
	return false, fmt.Sprintf("kern.hv_support is %d; virtualization is disabled or unsupported", v)
}
