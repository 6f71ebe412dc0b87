package hostprobe

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// MethodKind names one way of detecting an optional feature.
type MethodKind string

const (
	// MethodService checks that the feature's service is running.
	MethodService MethodKind = "service"
	// MethodOptionalFeature asks WMI (Win32_OptionalFeature) for the install state.
	MethodOptionalFeature MethodKind = "optional_feature"
	// MethodRegistry checks that the feature's service key is registered.
	MethodRegistry MethodKind = "registry"
)

// DefaultMethodOrder goes from the most specific signal (live service) to the
// weakest (a registry key that may outlive an uninstall).
var DefaultMethodOrder = []MethodKind{MethodService, MethodOptionalFeature, MethodRegistry}

// ParseMethodOrder parses a comma separated list such as "registry,service".
func ParseMethodOrder(s string) ([]MethodKind, error) {
	var out []MethodKind
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		switch k := MethodKind(part); k {
		case MethodService, MethodOptionalFeature, MethodRegistry:
			out = append(out, k)
		default:
			return nil, errors.Newf("hostprobe: unknown probe method %q", part)
		}
	}
	return out, nil
}

// Feature describes a tracked optional OS feature and where to look for it.
type Feature struct {
	// Name is the short registry name, e.g. "wsl".
	Name        string
	DisplayName string
	// Prerequisite is a file that must exist for any other check to matter.
	// Environment variables such as ${SystemRoot} are expanded. Empty disables gating.
	Prerequisite string
	Service      string
	// OptionalFeature is the Win32_OptionalFeature name deciding the WMI method.
	OptionalFeature string
	// Companions are reported in the WMI diagnostic but do not decide it.
	Companions  []string
	RegistryKey string
}

var (
	// HyperV is the Microsoft Hyper-V hypervisor.
	HyperV = Feature{
		Name:            "hyperv",
		DisplayName:     "Hyper-V",
		Prerequisite:    `${SystemRoot}\System32\vmms.exe`,
		Service:         "vmms",
		OptionalFeature: "Microsoft-Hyper-V-All",
		RegistryKey:     `SYSTEM\CurrentControlSet\Services\vmms`,
	}

	// WSL is the Windows Subsystem for Linux. WSL 2 additionally needs
	// VirtualMachinePlatform, which is reported alongside.
	WSL = Feature{
		Name:            "wsl",
		DisplayName:     "Windows Subsystem for Linux",
		Prerequisite:    `${SystemRoot}\System32\wsl.exe`,
		Service:         "LxssManager",
		OptionalFeature: "Microsoft-Windows-Subsystem-Linux",
		Companions:      []string{"VirtualMachinePlatform"},
		RegistryKey:     `SYSTEM\CurrentControlSet\Services\lxss`,
	}
)

var expandPath = func(p string) string {
	if os.Getenv("SystemRoot") == "" && strings.Contains(p, "${SystemRoot}") {
		p = strings.ReplaceAll(p, "${SystemRoot}", `C:\Windows`)
	}
	return os.ExpandEnv(p)
}

// ProbeFeature probes f on the host. order defaults to DefaultMethodOrder.
func ProbeFeature(f Feature, order ...MethodKind) ProbeOutcome {
	return DefaultConfig().ProbeFeature(f, order...)
}

// ProbeHyperV probes Hyper-V with the default method order.
func ProbeHyperV() ProbeOutcome {
	return ProbeFeature(HyperV)
}

// ProbeWSL probes the Windows Subsystem for Linux with the default method order.
func ProbeWSL() ProbeOutcome {
	return ProbeFeature(WSL)
}

// ProbeFeature probes f using the configured System and Backend.
func (c *Config) ProbeFeature(f Feature, order ...MethodKind) ProbeOutcome {
	if len(order) == 0 {
		order = DefaultMethodOrder
	}
	sys := c.system()
	methods := make([]ProbeMethod, 0, len(order))
	for _, kind := range order {
		methods = append(methods, c.method(sys, f, kind))
	}
	if f.Prerequisite == "" {
		return Probe(methods...)
	}
	path := expandPath(f.Prerequisite)
	return ProbeGated(Prerequisite{
		Name: path,
		Check: func() (bool, error) {
			return sys.FileExists(path)
		},
	}, methods...)
}

func (c *Config) method(sys System, f Feature, kind MethodKind) ProbeMethod {
	switch kind {
	case MethodService:
		return ProbeMethod{Name: fmt.Sprintf("service %s", f.Service), Check: serviceCheck(sys, f.Service)}
	case MethodOptionalFeature:
		return ProbeMethod{Name: fmt.Sprintf("optional feature %s", f.OptionalFeature), Check: c.optionalFeatureCheck(f)}
	case MethodRegistry:
		return ProbeMethod{Name: fmt.Sprintf(`registry HKLM\%s`, f.RegistryKey), Check: registryCheck(sys, f.RegistryKey)}
	default:
		return ProbeMethod{Name: string(kind), Check: func() (bool, string, error) {
			return false, "", errors.Newf("unknown probe method %q", string(kind))
		}}
	}
}

func serviceCheck(sys System, name string) CheckFunc {
	return func() (bool, string, error) {
		if name == "" {
			return false, "", errors.New("no service configured")
		}
		state, err := sys.ServiceState(name)
		if err != nil {
			return false, "", err
		}
		return state == ServiceRunning, state.String(), nil
	}
}

func registryCheck(sys System, key string) CheckFunc {
	return func() (bool, string, error) {
		if key == "" {
			return false, "", errors.New("no registry key configured")
		}
		ok, err := sys.RegistryKeyExists(key)
		if err != nil {
			return false, "", err
		}
		if ok {
			return true, "key present", nil
		}
		return false, "key absent", nil
	}
}

// optionalFeatureCheck runs the WMI query on its own isolated worker session.
func (c *Config) optionalFeatureCheck(f Feature) CheckFunc {
	return func() (enabled bool, detail string, err error) {
		if f.OptionalFeature == "" {
			return false, "", errors.New("no optional feature configured")
		}
		s := startSession(c.backend())
		defer func() {
			if cerr := s.close(); cerr != nil && err == nil {
				enabled, detail, err = false, "", cerr
			}
		}()

		names := append([]string{f.OptionalFeature}, f.Companions...)
		resp, err := s.do(queryRequest{kind: kindOptionalFeatures, featureNames: names})
		if err != nil {
			return false, "", err
		}
		return evaluateOptionalFeatures(f, resp.features)
	}
}

func evaluateOptionalFeatures(f Feature, records []OptionalFeature) (bool, string, error) {
	states := make(map[string]OptionalFeature, len(records))
	for _, r := range records {
		states[strings.ToLower(r.Name)] = r
	}
	var details []string
	enabled := false
	for _, name := range append([]string{f.OptionalFeature}, f.Companions...) {
		r, ok := states[strings.ToLower(name)]
		if !ok {
			details = append(details, name+"=not reported")
			continue
		}
		details = append(details, name+"="+r.stateString())
		if name == f.OptionalFeature {
			enabled = r.Enabled()
		}
	}
	return enabled, strings.Join(details, ", "), nil
}
