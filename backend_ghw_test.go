package hostprobe

import (
	"testing"

	"github.com/jaypipes/ghw/pkg/baseboard"
	"github.com/jaypipes/ghw/pkg/block"
	"github.com/jaypipes/ghw/pkg/cpu"
	"github.com/jaypipes/ghw/pkg/gpu"
	"github.com/jaypipes/ghw/pkg/pci"
	"github.com/jaypipes/ghw/pkg/util"
	"github.com/jaypipes/pcidb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardsFromGHW(t *testing.T) {
	assert.Nil(t, boardsFromGHW(nil))

	boards := boardsFromGHW(&baseboard.Info{
		Vendor:       "ASUSTeK COMPUTER INC.",
		Product:      "PRIME B450M-A",
		SerialNumber: util.UNKNOWN,
	})
	require.Len(t, boards, 1)
	assert.Equal(t, "ASUSTeK COMPUTER INC.", *boards[0].Manufacturer)
	assert.Equal(t, "PRIME B450M-A", *boards[0].Product)
	assert.Nil(t, boards[0].SerialNumber)
}

func TestProcessorsFromGHW(t *testing.T) {
	procs := processorsFromGHW(&cpu.Info{Processors: []*cpu.Processor{
		{ID: 0, Model: "AMD Ryzen 5 3600 6-Core Processor"},
		nil,
	}}, "AuthenticAMD-17-71-0")
	require.Len(t, procs, 1)
	assert.Equal(t, "AMD Ryzen 5 3600 6-Core Processor", *procs[0].Name)
	assert.Equal(t, "AuthenticAMD-17-71-0", *procs[0].ProcessorId)

	procs = processorsFromGHW(&cpu.Info{Processors: []*cpu.Processor{{Model: "x"}}}, "")
	require.Len(t, procs, 1)
	assert.Nil(t, procs[0].ProcessorId)
}

func testBlockInfo() *block.Info {
	loop := &block.Disk{Name: "loop0"}
	nvme := &block.Disk{Name: "nvme0n1", Model: "Samsung SSD 970 EVO Plus 500GB", SerialNumber: "S4EVNF0M123456"}
	nvme.Partitions = []*block.Partition{
		{Disk: nvme, Name: "nvme0n1p1", MountPoint: "/boot/efi"},
		{Disk: nvme, Name: "nvme0n1p2", MountPoint: "/"},
	}
	sda := &block.Disk{Name: "sda", Model: "WDC WD10EZEX", SerialNumber: "WD-1234"}
	sda.Partitions = []*block.Partition{{Disk: sda, Name: "sda1", MountPoint: "/data"}}
	usb := &block.Disk{Name: "sdb", Model: "Flash", SerialNumber: "USB1", BusPath: "pci-0000:00:14.0-usb-0:1:1.0-scsi-0:0:0:0"}
	stick := &block.Disk{Name: "sdc", Model: "Card", IsRemovable: true}
	return &block.Info{Disks: []*block.Disk{loop, nvme, sda, usb, stick}}
}

func TestDrivesFromGHW(t *testing.T) {
	drives := drivesFromGHW(testBlockInfo())
	require.Len(t, drives, 2)
	assert.Equal(t, uint32(0), drives[0].Index)
	assert.Equal(t, "S4EVNF0M123456", *drives[0].SerialNumber)
	assert.Equal(t, uint32(1), drives[1].Index)
	assert.Equal(t, "WD-1234", *drives[1].SerialNumber)

	assert.Nil(t, drivesFromGHW(nil))
}

func TestBootPartitionsFromGHW(t *testing.T) {
	info := testBlockInfo()
	assert.Equal(t, []DiskPartition{{DiskIndex: 0, BootPartition: true}}, bootPartitionsFromGHW(info))

	// 根分区不可见时退回 /boot/efi
	info.Disks[1].Partitions[1].MountPoint = ""
	assert.Equal(t, []DiskPartition{{DiskIndex: 0, BootPartition: true}}, bootPartitionsFromGHW(info))

	info.Disks[1].Partitions[0].MountPoint = ""
	assert.Empty(t, bootPartitionsFromGHW(info))
	assert.Nil(t, bootPartitionsFromGHW(nil))
}

func TestGHWRecordsFeedSystemDiskFactors(t *testing.T) {
	info := testBlockInfo()
	index, ok := systemDiskIndex(bootPartitionsFromGHW(info))
	require.True(t, ok)
	assert.Equal(t, []string{
		"disk_model:samsung ssd 970 evo plus 500gb",
		"disk_serial:s4evnf0m123456",
	}, systemDiskFactors(index, drivesFromGHW(info)))
}

func TestVideoControllersFromGHW(t *testing.T) {
	info := &gpu.Info{GraphicsCards: []*gpu.GraphicsCard{
		{
			Address: "0000:01:00.0",
			DeviceInfo: &pci.Device{
				Vendor:    &pcidb.Vendor{ID: "10de", Name: "NVIDIA Corporation"},
				Product:   &pcidb.Product{ID: "1f08", Name: "TU106 [GeForce RTX 2060 Rev. A]"},
				Subsystem: &pcidb.Product{VendorID: "1043", ID: "86ab", Name: "unknown"},
			},
		},
		{Address: "0000:00:02.0"},
		nil,
	}}

	vcs := videoControllersFromGHW(info)
	require.Len(t, vcs, 2)
	assert.Equal(t, `PCI\VEN_10DE&DEV_1F08&SUBSYS_86AB1043\0000:01:00.0`, *vcs[0].PNPDeviceID)
	assert.Equal(t, "NVIDIA Corporation", *vcs[0].AdapterCompatibility)
	assert.Equal(t, "TU106 [GeForce RTX 2060 Rev. A]", *vcs[0].Name)
	assert.Nil(t, vcs[1].PNPDeviceID)

	factors := videoFactors(vcs)
	require.Len(t, factors, 1)
	assert.Contains(t, factors[0], `gpu0_pnp_id:pci\ven_10de&dev_1f08&subsys_86ab1043\0000:01:00.0`)
}
