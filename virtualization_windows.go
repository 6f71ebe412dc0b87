//go:build windows
// +build windows

package hostprobe

import (
	"golang.org/x/sys/windows"
)

// PF_VIRT_FIRMWARE_ENABLED, Windows 8 / Server 2012 及以上
const pfVirtFirmwareEnabled = 21

var procIsProcessorFeaturePresent = windows.NewLazySystemDLL("kernel32.dll").NewProc("IsProcessorFeaturePresent")

// platformVirtualizationCheck asks Windows whether firmware enabled
// virtualization. Under a hypervisor (including the root partition of
// Hyper-V) the flag is hidden, so hypervisor presence counts as enabled.
func platformVirtualizationCheck() (bool, string) {
	if err := procIsProcessorFeaturePresent.Find(); err != nil {
		return false, "IsProcessorFeaturePresent unavailable: " + err.Error()
	}
	ret, _, _ := procIsProcessorFeaturePresent.Call(uintptr(pfVirtFirmwareEnabled))
	if ret != 0 {
		return true, "virtualization is enabled in firmware"
	}
	if hypervisorPresent() {
		return true, "firmware flag is hidden under a hypervisor; hypervisor present"
	}
	return false, "virtualization is not enabled in firmware, or the check is not supported"
}
