package hostprobe

import (
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Environment tells whether hardware facts reported to this process describe
// the physical host. Inside a container the service manager and registry
// belong to the container, while sysfs and WMI may still show host hardware.
type Environment struct {
	Container           bool   `json:"container"`
	ContainerID         string `json:"container_id,omitempty"`
	HostHardwareVisible bool   `json:"host_hardware_visible"`
}

const (
	minContainerIDLen = 12
	maxContainerIDLen = 64
)

var (
	containerMarkers = []string{"/.dockerenv", "/.dockerinit", "/run/.containerenv"}
	// DMI 可读或能枚举 PCI 设备时，认为进程看得到宿主机硬件
	hostHardwarePaths = []string{"/sys/class/dmi/id/product_uuid", "/sys/bus/pci/devices"}
	containerIDEnv    = []string{"CONTAINER_ID", "DOCKER_CONTAINER_ID"}
)

var environmentProbe = func() Environment {
	return detectEnvironment(afero.NewOsFs(), os.Getenv)
}

// DetectEnvironment inspects the running process.
func DetectEnvironment() Environment {
	return environmentProbe()
}

func detectEnvironment(fs afero.Fs, getenv func(string) string) Environment {
	env := Environment{}
	for _, p := range containerMarkers {
		if ok, _ := afero.Exists(fs, p); ok {
			env.Container = true
			break
		}
	}

	for _, name := range containerIDEnv {
		if id := normalizeContainerID(getenv(name)); id != "" {
			env.ContainerID = id
			break
		}
	}
	if env.ContainerID == "" {
		if data, err := afero.ReadFile(fs, "/proc/self/mountinfo"); err == nil {
			env.ContainerID = containerIDFromMountInfo(string(data))
		}
	}
	if env.ContainerID != "" {
		env.Container = true
	}

	for _, p := range hostHardwarePaths {
		if ok, _ := afero.Exists(fs, p); ok {
			env.HostHardwareVisible = true
			break
		}
	}
	return env
}

// containerIDFromMountInfo looks for runtime directories (docker, containerd,
// cri sandboxes) in the mount roots of /proc/self/mountinfo.
func containerIDFromMountInfo(mountinfo string) string {
	for _, line := range strings.Split(mountinfo, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 10 {
			continue
		}
		root := fields[3]
		if !strings.Contains(root, "/docker/") &&
			!strings.Contains(root, "/containers/") &&
			!strings.Contains(root, "/containerd/") &&
			!strings.Contains(root, "/sandboxes/") {
			continue
		}
		for _, segment := range strings.Split(root, "/") {
			if id := normalizeContainerID(segment); len(id) == maxContainerIDLen {
				return id
			}
		}
	}
	return ""
}

func normalizeContainerID(segment string) string {
	candidate := strings.Trim(strings.TrimSpace(segment), "\"'")
	if candidate == "" {
		return ""
	}
	for _, prefix := range []string{"docker-", "docker:", "cri-containerd-", "containerd://", "crio-", "libpod-"} {
		candidate = strings.TrimPrefix(candidate, prefix)
	}
	candidate = strings.TrimSuffix(candidate, ".scope")
	candidate = strings.Trim(candidate, ":-._")
	if len(candidate) > maxContainerIDLen {
		candidate = candidate[len(candidate)-maxContainerIDLen:]
	}
	if len(candidate) < minContainerIDLen || !isHex(candidate) {
		return ""
	}
	return strings.ToLower(candidate)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return s != ""
}
