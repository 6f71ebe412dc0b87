package hostprobe

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// VirtualizationInfo summarizes whether hardware virtualization is available.
//
// CPUSupported only reflects the CPU feature bit; whether firmware and the OS
// actually enabled it is reported separately in OSReportedEnabled.
type VirtualizationInfo struct {
	Arch              string `json:"arch"`
	OS                string `json:"os"`
	CPUVendor         string `json:"cpu_vendor"`
	CPUSupported      bool   `json:"cpu_supported"`
	CPUFeatureName    string `json:"cpu_feature_name"`
	HypervisorPresent bool   `json:"hypervisor_present"`
	OSReportedEnabled bool   `json:"os_reported_enabled"`
	OSCheckDetails    string `json:"os_check_details"`
	OverallStatus     string `json:"overall_status"`

	// Environment tells whether the report may describe a container instead of the host.
	Environment Environment `json:"environment"`
}

var (
	cpuSupport            = cpuVirtualizationSupport
	hypervisorPresent     = func() bool { return cpuid.CPU.Supports(cpuid.HYPERVISOR) }
	osVirtualizationCheck = platformVirtualizationCheck
)

// Virtualization inspects the CPU and asks the OS whether virtualization is enabled.
func Virtualization() *VirtualizationInfo {
	supported, vendor, feature := cpuSupport()
	enabled, details := osVirtualizationCheck()
	info := &VirtualizationInfo{
		Arch:              runtime.GOARCH,
		OS:                runtime.GOOS,
		CPUVendor:         vendor,
		CPUSupported:      supported,
		CPUFeatureName:    feature,
		HypervisorPresent: hypervisorPresent(),
		OSReportedEnabled: enabled,
		OSCheckDetails:    details,
		Environment:       environmentProbe(),
	}
	info.OverallStatus = overallStatus(info)
	return info
}

// cpuVirtualizationSupport checks VMX on Intel and SVM on AMD.
func cpuVirtualizationSupport() (supported bool, vendor, feature string) {
	vendor = cpuid.CPU.VendorString
	switch cpuid.CPU.VendorID {
	case cpuid.Intel:
		return cpuid.CPU.Supports(cpuid.VMX), vendor, "Intel VT-x (VMX)"
	case cpuid.AMD:
		return cpuid.CPU.Supports(cpuid.SVM), vendor, "AMD-V (SVM)"
	default:
		return false, vendor, "unknown"
	}
}

func overallStatus(info *VirtualizationInfo) string {
	switch {
	case info.CPUSupported && info.OSReportedEnabled:
		return "CPU supports virtualization and it appears to be enabled in firmware/OS."
	case info.CPUSupported:
		return fmt.Sprintf("CPU supports virtualization (%s) but the OS reports it disabled or cannot confirm it. Details: %s",
			info.CPUFeatureName, info.OSCheckDetails)
	case info.OSReportedEnabled:
		// 常见于嵌套虚拟化，或 CPU 特性位未向来宾暴露
		return fmt.Sprintf("CPU does not report virtualization support (%s) but the OS reports it enabled; common inside a virtual machine. Details: %s",
			info.CPUFeatureName, info.OSCheckDetails)
	default:
		return fmt.Sprintf("CPU does not support virtualization (%s).", info.CPUFeatureName)
	}
}
