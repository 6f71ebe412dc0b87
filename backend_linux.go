//go:build linux
// +build linux

package hostprobe

import (
	"fmt"

	"github.com/jaypipes/ghw"
	"github.com/klauspost/cpuid/v2"
)

var newBackend BackendFactory = newSysfsBackend

// sysfsBackend answers the WMI-shaped queries from sysfs/procfs through ghw.
type sysfsBackend struct {
	opts []*ghw.WithOption
}

func newSysfsBackend() (Backend, error) {
	return &sysfsBackend{opts: []*ghw.WithOption{ghw.WithDisableWarnings()}}, nil
}

func (b *sysfsBackend) BaseBoards() ([]BaseBoard, error) {
	info, err := ghw.Baseboard(b.opts...)
	if err != nil {
		return nil, err
	}
	return boardsFromGHW(info), nil
}

func (b *sysfsBackend) Processors() ([]Processor, error) {
	info, err := ghw.CPU(b.opts...)
	if err != nil {
		return nil, err
	}
	return processorsFromGHW(info, cpuSignature()), nil
}

func (b *sysfsBackend) DiskDrives() ([]DiskDrive, error) {
	info, err := ghw.Block(b.opts...)
	if err != nil {
		return nil, err
	}
	return drivesFromGHW(info), nil
}

func (b *sysfsBackend) BootPartitions() ([]DiskPartition, error) {
	info, err := ghw.Block(b.opts...)
	if err != nil {
		return nil, err
	}
	return bootPartitionsFromGHW(info), nil
}

func (b *sysfsBackend) VideoControllers() ([]VideoController, error) {
	info, err := ghw.GPU(b.opts...)
	if err != nil {
		return nil, err
	}
	return videoControllersFromGHW(info), nil
}

func (b *sysfsBackend) OptionalFeatures(names ...string) ([]OptionalFeature, error) {
	return nil, newError(KindUnsupported, ErrUnsupportedPlatform, "optional features %v", names)
}

func (b *sysfsBackend) Close() error {
	return nil
}

// cpuSignature 以 厂商-族-型号-步进 组合代替 Windows 的 ProcessorId。
func cpuSignature() string {
	c := cpuid.CPU
	if c.VendorString == "" {
		return ""
	}
	return fmt.Sprintf("%s-%x-%x-%x", c.VendorString, c.Family, c.Model, c.Stepping)
}
