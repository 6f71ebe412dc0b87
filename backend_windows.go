//go:build windows
// +build windows

package hostprobe

import (
	"github.com/StackExchange/wmi"
	"github.com/cockroachdb/errors"
	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	classBaseBoard       = "Win32_BaseBoard"
	classProcessor       = "Win32_Processor"
	classDiskDrive       = "Win32_DiskDrive"
	classDiskPartition   = "Win32_DiskPartition"
	classVideoController = "Win32_VideoController"
	classOptionalFeature = "Win32_OptionalFeature"

	fixedDiskFilter = "WHERE MediaType = 'Fixed hard disk media' AND InterfaceType != 'USB'"
	bootFilter      = "WHERE BootPartition = TRUE"

	// S_FALSE: COM 已在当前线程初始化过
	sFalse = 0x00000001
)

var newBackend BackendFactory = newWMIBackend

// wmiBackend holds one SWbemServices connection created on the worker
// thread. Every call, Close included, must happen on that thread.
type wmiBackend struct {
	locator *ole.IUnknown
	wbem    *ole.IDispatch
	service *ole.IDispatch
}

// newWMIBackend initializes COM on the calling (worker) thread and connects
// to root\cimv2 once for the lifetime of the backend.
func newWMIBackend() (Backend, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return nil, errors.Wrap(err, "initialize COM")
		}
	}
	b := &wmiBackend{}
	if err := b.connect(); err != nil {
		b.release()
		ole.CoUninitialize()
		return nil, err
	}
	return b, nil
}

func (b *wmiBackend) connect() error {
	var err error
	b.locator, err = oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return errors.Wrap(err, "create WMI locator")
	}
	b.wbem, err = b.locator.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return errors.Wrap(err, "query WMI locator interface")
	}
	serviceRaw, err := oleutil.CallMethod(b.wbem, "ConnectServer")
	if err != nil {
		return errors.Wrap(err, "connect to WMI")
	}
	b.service = serviceRaw.ToIDispatch()
	return nil
}

// release 按创建的逆序释放 COM 对象
func (b *wmiBackend) release() {
	if b.service != nil {
		b.service.Release()
		b.service = nil
	}
	if b.wbem != nil {
		b.wbem.Release()
		b.wbem = nil
	}
	if b.locator != nil {
		b.locator.Release()
		b.locator = nil
	}
}

// query runs wql and calls each for every returned object.
func (b *wmiBackend) query(wql string, each func(item *ole.IDispatch) error) error {
	resultRaw, err := oleutil.CallMethod(b.service, "ExecQuery", wql)
	if err != nil {
		return errors.Wrapf(err, "exec %q", wql)
	}
	result := resultRaw.ToIDispatch()
	defer result.Release()

	countVar, err := oleutil.GetProperty(result, "Count")
	if err != nil {
		return errors.Wrap(err, "result count")
	}
	count := int(countVar.Val)
	for i := 0; i < count; i++ {
		itemRaw, err := oleutil.CallMethod(result, "ItemIndex", i)
		if err != nil {
			return errors.Wrapf(err, "result item %d", i)
		}
		item := itemRaw.ToIDispatch()
		err = each(item)
		item.Release()
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *wmiBackend) BaseBoards() ([]BaseBoard, error) {
	var out []BaseBoard
	err := b.query(wmi.CreateQuery(&out, "", classBaseBoard), func(item *ole.IDispatch) error {
		var r BaseBoard
		var err error
		if r.Manufacturer, err = stringProperty(item, "Manufacturer"); err != nil {
			return err
		}
		if r.Product, err = stringProperty(item, "Product"); err != nil {
			return err
		}
		if r.SerialNumber, err = stringProperty(item, "SerialNumber"); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

func (b *wmiBackend) Processors() ([]Processor, error) {
	var out []Processor
	err := b.query(wmi.CreateQuery(&out, "", classProcessor), func(item *ole.IDispatch) error {
		var r Processor
		var err error
		if r.Name, err = stringProperty(item, "Name"); err != nil {
			return err
		}
		if r.ProcessorId, err = stringProperty(item, "ProcessorId"); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

func (b *wmiBackend) DiskDrives() ([]DiskDrive, error) {
	var out []DiskDrive
	err := b.query(wmi.CreateQuery(&out, fixedDiskFilter, classDiskDrive), func(item *ole.IDispatch) error {
		var r DiskDrive
		var err error
		if r.Model, err = stringProperty(item, "Model"); err != nil {
			return err
		}
		if r.SerialNumber, err = stringProperty(item, "SerialNumber"); err != nil {
			return err
		}
		if r.Index, err = uint32Property(item, "Index"); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

func (b *wmiBackend) BootPartitions() ([]DiskPartition, error) {
	var out []DiskPartition
	err := b.query(wmi.CreateQuery(&out, bootFilter, classDiskPartition), func(item *ole.IDispatch) error {
		var r DiskPartition
		var err error
		if r.DiskIndex, err = uint32Property(item, "DiskIndex"); err != nil {
			return err
		}
		if r.BootPartition, err = boolProperty(item, "BootPartition"); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

func (b *wmiBackend) VideoControllers() ([]VideoController, error) {
	var out []VideoController
	err := b.query(wmi.CreateQuery(&out, "", classVideoController), func(item *ole.IDispatch) error {
		var r VideoController
		var err error
		if r.Name, err = stringProperty(item, "Name"); err != nil {
			return err
		}
		if r.AdapterCompatibility, err = stringProperty(item, "AdapterCompatibility"); err != nil {
			return err
		}
		if r.PNPDeviceID, err = stringProperty(item, "PNPDeviceID"); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

func (b *wmiBackend) OptionalFeatures(names ...string) ([]OptionalFeature, error) {
	var out []OptionalFeature
	err := b.query(wmi.CreateQuery(&out, featureNameFilter(names), classOptionalFeature), func(item *ole.IDispatch) error {
		name, err := stringProperty(item, "Name")
		if err != nil {
			return err
		}
		r := OptionalFeature{}
		if name != nil {
			r.Name = *name
		}
		if r.InstallState, err = uint32Property(item, "InstallState"); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

func (b *wmiBackend) Close() error {
	b.release()
	ole.CoUninitialize()
	return nil
}

// stringProperty returns nil for NULL properties.
func stringProperty(item *ole.IDispatch, name string) (*string, error) {
	v, err := oleutil.GetProperty(item, name)
	if err != nil {
		return nil, errors.Wrapf(err, "property %s", name)
	}
	defer v.Clear()
	s, ok := v.Value().(string)
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// uint32Property reads CIM uint32 values, which automation reports as VT_I4.
func uint32Property(item *ole.IDispatch, name string) (uint32, error) {
	v, err := oleutil.GetProperty(item, name)
	if err != nil {
		return 0, errors.Wrapf(err, "property %s", name)
	}
	defer v.Clear()
	switch n := v.Value().(type) {
	case int32:
		return uint32(n), nil
	case uint32:
		return n, nil
	case int64:
		return uint32(n), nil
	case nil:
		return 0, nil
	default:
		return 0, errors.Newf("property %s: unexpected type %T", name, n)
	}
}

func boolProperty(item *ole.IDispatch, name string) (bool, error) {
	v, err := oleutil.GetProperty(item, name)
	if err != nil {
		return false, errors.Wrapf(err, "property %s", name)
	}
	defer v.Clear()
	ok, _ := v.Value().(bool)
	return ok, nil
}
