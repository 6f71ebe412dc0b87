package hostprobe

import (
	"sort"
	"strings"
	"sync"
)

var (
	featuresMu sync.RWMutex
	features   = map[string]Feature{
		HyperV.Name: HyperV,
		WSL.Name:    WSL,
	}
)

// RegisterFeature 注册（或覆盖）一个可探测的可选功能，名称不区分大小写且需唯一。
func RegisterFeature(f Feature) {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	if name == "" {
		return
	}
	f.Name = name
	featuresMu.Lock()
	defer featuresMu.Unlock()
	features[name] = f
}

// LookupFeature returns the feature registered under name.
func LookupFeature(name string) (Feature, bool) {
	featuresMu.RLock()
	defer featuresMu.RUnlock()
	f, ok := features[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Features returns the registered feature names, sorted.
func Features() []string {
	featuresMu.RLock()
	defer featuresMu.RUnlock()
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
