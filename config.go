package hostprobe

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Category selects which hardware contributes factors to a fingerprint.
type Category string

const (
	CategoryBoard     Category = "board"
	CategoryProcessor Category = "processor"
	CategoryDisk      Category = "disk"
	CategoryGPU       Category = "gpu"
)

// AllCategories lists every category in collection order.
var AllCategories = []Category{CategoryBoard, CategoryProcessor, CategoryDisk, CategoryGPU}

func (c Category) valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategories parses a comma separated list such as "board,disk".
// An empty string selects every category.
func ParseCategories(s string) ([]Category, error) {
	var out []Category
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		c := Category(part)
		if !c.valid() {
			return nil, errors.Newf("hostprobe: unknown category %q", part)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return append([]Category(nil), AllCategories...), nil
	}
	return out, nil
}

// Config 描述一次探测/指纹计算所使用的数据源与范围。
//
// 说明：
//   - Categories 为空时采集全部类别；重复项会被忽略。
//   - Backend 为空时使用当前平台的默认后端（Windows 为 WMI，Linux 为 sysfs）。
//   - System 为空时使用当前主机的服务管理器、注册表与文件系统。
type Config struct {
	Categories []Category
	Backend    BackendFactory
	System     System
}

// DefaultConfig returns a Config collecting every category from the host.
func DefaultConfig() *Config {
	return &Config{Categories: append([]Category(nil), AllCategories...)}
}

var errConfigNil = errors.New("hostprobe: config is nil")

// Validate checks the static configuration only; it never touches the host.
func (c *Config) Validate() error {
	if c == nil {
		return errConfigNil
	}
	for _, cat := range c.Categories {
		if !cat.valid() {
			return errors.Newf("hostprobe: unknown category %q", string(cat))
		}
	}
	return nil
}

// categories returns the selected categories in collection order, deduplicated.
func (c *Config) categories() []Category {
	if len(c.Categories) == 0 {
		return AllCategories
	}
	selected := make(map[Category]bool, len(c.Categories))
	for _, cat := range c.Categories {
		selected[cat] = true
	}
	out := make([]Category, 0, len(selected))
	for _, cat := range AllCategories {
		if selected[cat] {
			out = append(out, cat)
		}
	}
	return out
}

func (c *Config) backend() BackendFactory {
	if c.Backend != nil {
		return c.Backend
	}
	return newBackend
}

func (c *Config) system() System {
	if c.System != nil {
		return c.System
	}
	return systemProvider()
}
