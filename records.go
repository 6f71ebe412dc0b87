package hostprobe

// 以下记录类型的字段名与 WMI 属性名保持一致，Windows 后端据此生成 SELECT 列表并按名读取属性。
// 指针字段表示该属性可能为空。

// BaseBoard mirrors Win32_BaseBoard.
type BaseBoard struct {
	Manufacturer *string
	Product      *string
	SerialNumber *string
}

// Processor mirrors Win32_Processor.
type Processor struct {
	Name        *string
	ProcessorId *string //nolint:revive // WMI property name
}

// DiskDrive mirrors Win32_DiskDrive. Backends only report fixed, non-removable drives.
type DiskDrive struct {
	Model        *string
	SerialNumber *string
	Index        uint32
}

// DiskPartition mirrors Win32_DiskPartition. Backends only report boot partitions.
type DiskPartition struct {
	DiskIndex     uint32
	BootPartition bool
}

// VideoController mirrors Win32_VideoController.
type VideoController struct {
	Name                 *string
	AdapterCompatibility *string
	PNPDeviceID          *string
}

// OptionalFeature mirrors Win32_OptionalFeature.
type OptionalFeature struct {
	Name         string
	InstallState uint32
}

// InstallState values of Win32_OptionalFeature.
const (
	InstallStateEnabled  uint32 = 1
	InstallStateDisabled uint32 = 2
	InstallStateAbsent   uint32 = 3
)

// Enabled reports whether the feature is installed and enabled.
func (f OptionalFeature) Enabled() bool {
	return f.InstallState == InstallStateEnabled
}

func (f OptionalFeature) stateString() string {
	switch f.InstallState {
	case InstallStateEnabled:
		return "enabled"
	case InstallStateDisabled:
		return "disabled"
	case InstallStateAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Backend is a connection to the system-management data source.
//
// A Backend is owned by exactly one worker goroutine and is never called from
// anywhere else; implementations need not be safe for concurrent use.
type Backend interface {
	BaseBoards() ([]BaseBoard, error)
	Processors() ([]Processor, error)
	// DiskDrives returns fixed, non-removable drives.
	DiskDrives() ([]DiskDrive, error)
	// BootPartitions returns the partitions flagged as boot partitions.
	BootPartitions() ([]DiskPartition, error)
	VideoControllers() ([]VideoController, error)
	OptionalFeatures(names ...string) ([]OptionalFeature, error)
	Close() error
}

// BackendFactory opens a Backend. It is called on the worker goroutine,
// after that goroutine has been locked to its OS thread.
type BackendFactory func() (Backend, error)

func strPtr(s string) *string {
	return &s
}
