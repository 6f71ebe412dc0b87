package hostprobe

import (
	"fmt"
	"strings"

	"github.com/jaypipes/ghw/pkg/baseboard"
	"github.com/jaypipes/ghw/pkg/block"
	"github.com/jaypipes/ghw/pkg/cpu"
	"github.com/jaypipes/ghw/pkg/gpu"
	"github.com/jaypipes/ghw/pkg/util"
)

// 将 ghw 读取到的 sysfs 信息映射成与 WMI 相同的记录，使指纹组装逻辑与平台无关。

// rootMountPoints 按优先级列出用于定位系统盘的挂载点。
var rootMountPoints = []string{"/", "/boot", "/boot/efi"}

// ghwValue 把 ghw 的 "unknown" 视为缺失。
func ghwValue(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == util.UNKNOWN {
		return nil
	}
	return &s
}

func boardsFromGHW(info *baseboard.Info) []BaseBoard {
	if info == nil {
		return nil
	}
	return []BaseBoard{{
		Manufacturer: ghwValue(info.Vendor),
		Product:      ghwValue(info.Product),
		SerialNumber: ghwValue(info.SerialNumber),
	}}
}

// processorsFromGHW maps physical packages. signature stands in for the
// Windows ProcessorId, which Linux does not expose.
func processorsFromGHW(info *cpu.Info, signature string) []Processor {
	if info == nil {
		return nil
	}
	out := make([]Processor, 0, len(info.Processors))
	for _, p := range info.Processors {
		if p == nil {
			continue
		}
		out = append(out, Processor{
			Name:        ghwValue(p.Model),
			ProcessorId: ghwValue(signature),
		})
	}
	return out
}

// diskIndexes numbers disks in the order ghw lists them (sorted /sys/block
// names), skipping pseudo devices. Both disk queries share this numbering.
func diskIndexes(info *block.Info) map[*block.Disk]uint32 {
	idx := make(map[*block.Disk]uint32)
	if info == nil {
		return idx
	}
	var n uint32
	for _, d := range info.Disks {
		if d == nil || isPseudoDisk(d.Name) {
			continue
		}
		idx[d] = n
		n++
	}
	return idx
}

func isPseudoDisk(name string) bool {
	for _, prefix := range []string{"loop", "ram", "zram", "dm-", "md", "sr"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func drivesFromGHW(info *block.Info) []DiskDrive {
	if info == nil {
		return nil
	}
	idx := diskIndexes(info)
	var out []DiskDrive
	for _, d := range info.Disks {
		i, ok := idx[d]
		if !ok || d.IsRemovable || strings.Contains(strings.ToLower(d.BusPath), "usb") {
			continue
		}
		out = append(out, DiskDrive{
			Model:        ghwValue(d.Model),
			SerialNumber: ghwValue(d.SerialNumber),
			Index:        i,
		})
	}
	return out
}

func bootPartitionsFromGHW(info *block.Info) []DiskPartition {
	if info == nil {
		return nil
	}
	idx := diskIndexes(info)
	for _, mp := range rootMountPoints {
		var out []DiskPartition
		for _, d := range info.Disks {
			i, ok := idx[d]
			if !ok {
				continue
			}
			for _, p := range d.Partitions {
				if p != nil && p.MountPoint == mp {
					out = append(out, DiskPartition{DiskIndex: i, BootPartition: true})
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// videoControllersFromGHW builds Windows-style PNP device ids
// (PCI\VEN_xxxx&DEV_xxxx&SUBSYS_xxxxxxxx\address) so the PCI filter applies unchanged.
func videoControllersFromGHW(info *gpu.Info) []VideoController {
	if info == nil {
		return nil
	}
	out := make([]VideoController, 0, len(info.GraphicsCards))
	for _, card := range info.GraphicsCards {
		if card == nil {
			continue
		}
		vc := VideoController{}
		dev := card.DeviceInfo
		if dev == nil || dev.Vendor == nil || dev.Product == nil {
			out = append(out, vc)
			continue
		}
		vc.AdapterCompatibility = ghwValue(dev.Vendor.Name)
		vc.Name = ghwValue(dev.Product.Name)
		subsys := ""
		if dev.Subsystem != nil && dev.Subsystem.ID != "" {
			subsys = "&SUBSYS_" + strings.ToUpper(dev.Subsystem.ID+dev.Subsystem.VendorID)
		}
		vc.PNPDeviceID = strPtr(fmt.Sprintf(`PCI\VEN_%s&DEV_%s%s\%s`,
			strings.ToUpper(dev.Vendor.ID), strings.ToUpper(dev.Product.ID), subsys, card.Address))
		out = append(out, vc)
	}
	return out
}
