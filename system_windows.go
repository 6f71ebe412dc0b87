//go:build windows
// +build windows

package hostprobe

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// ServiceState 只申请 SC_MANAGER_CONNECT 与 SERVICE_QUERY_STATUS，普通用户即可查询。
// mgr.Connect/OpenService 会申请全部权限，在非管理员下必然失败。
func (h *hostSystem) ServiceState(name string) (ServiceState, error) {
	scm, err := windows.OpenSCManager(nil, nil, windows.SC_MANAGER_CONNECT)
	if err != nil {
		return ServiceStopped, newError(KindService, err, "connect to service manager")
	}
	m := &mgr.Mgr{Handle: scm}
	defer m.Disconnect()

	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return ServiceStopped, newError(KindService, err, "service name %q", name)
	}
	handle, err := windows.OpenService(scm, namePtr, windows.SERVICE_QUERY_STATUS)
	if err != nil {
		return ServiceStopped, newError(KindService, err, "open service %s", name)
	}
	s := &mgr.Service{Name: name, Handle: handle}
	defer s.Close()

	status, err := s.Query()
	if err != nil {
		return ServiceStopped, newError(KindService, err, "query service %s", name)
	}
	switch status.State {
	case svc.Running:
		return ServiceRunning, nil
	case svc.StartPending, svc.ContinuePending, svc.PausePending, svc.StopPending:
		return ServicePending, nil
	default:
		return ServiceStopped, nil
	}
}

func (h *hostSystem) RegistryKeyExists(path string) (bool, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, newError(KindRegistry, err, `open HKLM\%s`, path)
	}
	k.Close()
	return true, nil
}
