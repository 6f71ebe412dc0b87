package hostprobe

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// fakeBackend returns canned records. errs and delays are keyed by query kind.
type fakeBackend struct {
	boards     []BaseBoard
	processors []Processor
	drives     []DiskDrive
	partitions []DiskPartition
	videos     []VideoController
	features   []OptionalFeature

	errs    map[queryKind]error
	delays  map[queryKind]time.Duration
	panicOn map[queryKind]bool

	calls      int32
	closeCalls int32
	lastNames  []string
}

func (f *fakeBackend) hit(k queryKind) error {
	atomic.AddInt32(&f.calls, 1)
	if d, ok := f.delays[k]; ok {
		time.Sleep(d)
	}
	if f.panicOn[k] {
		panic("fake backend exploded on " + k.String())
	}
	return f.errs[k]
}

func (f *fakeBackend) BaseBoards() ([]BaseBoard, error) {
	if err := f.hit(kindBoard); err != nil {
		return nil, err
	}
	return f.boards, nil
}

func (f *fakeBackend) Processors() ([]Processor, error) {
	if err := f.hit(kindProcessor); err != nil {
		return nil, err
	}
	return f.processors, nil
}

func (f *fakeBackend) DiskDrives() ([]DiskDrive, error) {
	if err := f.hit(kindDiskDrives); err != nil {
		return nil, err
	}
	return f.drives, nil
}

func (f *fakeBackend) BootPartitions() ([]DiskPartition, error) {
	if err := f.hit(kindDiskPartitions); err != nil {
		return nil, err
	}
	return f.partitions, nil
}

func (f *fakeBackend) VideoControllers() ([]VideoController, error) {
	if err := f.hit(kindVideoControllers); err != nil {
		return nil, err
	}
	return f.videos, nil
}

func (f *fakeBackend) OptionalFeatures(names ...string) ([]OptionalFeature, error) {
	f.lastNames = names
	if err := f.hit(kindOptionalFeatures); err != nil {
		return nil, err
	}
	return f.features, nil
}

func (f *fakeBackend) Close() error {
	atomic.AddInt32(&f.closeCalls, 1)
	return nil
}

func (f *fakeBackend) factory() BackendFactory {
	return func() (Backend, error) { return f, nil }
}

func failingFactory(err error) BackendFactory {
	return func() (Backend, error) { return nil, err }
}

// fakeSystem answers service and registry lookups from maps and files from a MemMapFs.
type fakeSystem struct {
	hostSystem
	services    map[string]ServiceState
	serviceErr  error
	keys        map[string]bool
	registryErr error

	serviceCalls  int
	registryCalls int
	fileCalls     int
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		hostSystem: hostSystem{fs: afero.NewMemMapFs()},
		services:   map[string]ServiceState{},
		keys:       map[string]bool{},
	}
}

func (s *fakeSystem) ServiceState(name string) (ServiceState, error) {
	s.serviceCalls++
	if s.serviceErr != nil {
		return ServiceStopped, s.serviceErr
	}
	return s.services[name], nil
}

func (s *fakeSystem) RegistryKeyExists(path string) (bool, error) {
	s.registryCalls++
	if s.registryErr != nil {
		return false, s.registryErr
	}
	return s.keys[path], nil
}

func (s *fakeSystem) FileExists(path string) (bool, error) {
	s.fileCalls++
	return s.hostSystem.FileExists(path)
}

func (s *fakeSystem) touch(t *testing.T, path string) {
	t.Helper()
	if err := afero.WriteFile(s.fs, path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

var errAccessDenied = errors.New("access denied")

func stubSystemProvider(t *testing.T, sys System) {
	t.Helper()
	prev := systemProvider
	systemProvider = func() System { return sys }
	t.Cleanup(func() { systemProvider = prev })
}

func stubBackend(t *testing.T, factory BackendFactory) {
	t.Helper()
	prev := newBackend
	newBackend = factory
	t.Cleanup(func() { newBackend = prev })
}

func stubVirtualization(t *testing.T, cpu func() (bool, string, string), osCheck func() (bool, string), hv bool) {
	t.Helper()
	prevCPU, prevOS, prevHV, prevEnv := cpuSupport, osVirtualizationCheck, hypervisorPresent, environmentProbe
	cpuSupport = cpu
	osVirtualizationCheck = osCheck
	hypervisorPresent = func() bool { return hv }
	environmentProbe = func() Environment { return Environment{HostHardwareVisible: true} }
	t.Cleanup(func() {
		cpuSupport, osVirtualizationCheck, hypervisorPresent, environmentProbe = prevCPU, prevOS, prevHV, prevEnv
	})
}

// machine is a complete set of records for a typical desktop.
func machine() *fakeBackend {
	return &fakeBackend{
		boards: []BaseBoard{{
			Manufacturer: strPtr("ASUSTeK COMPUTER INC."),
			Product:      strPtr("PRIME B450M-A"),
			SerialNumber: strPtr("190436731200345"),
		}},
		processors: []Processor{{
			Name:        strPtr("AMD Ryzen 5 3600 6-Core Processor"),
			ProcessorId: strPtr("178BFBFF00870F10"),
		}},
		partitions: []DiskPartition{{DiskIndex: 0, BootPartition: true}},
		drives: []DiskDrive{{
			Model:        strPtr("Samsung SSD 970 EVO Plus 500GB"),
			SerialNumber: strPtr("S4EVNF0M123456"),
			Index:        0,
		}},
		videos: []VideoController{{
			Name:                 strPtr("NVIDIA GeForce RTX 2060"),
			AdapterCompatibility: strPtr("NVIDIA"),
			PNPDeviceID:          strPtr(`PCI\VEN_10DE&DEV_1F08&SUBSYS_86AB1043&REV_A1\4&2D78AB8F&0&0019`),
		}},
	}
}
