package hostprobe

import "strings"

// placeholders 是主板/BIOS 厂商常见的占位值，大量机器共享，不能进入指纹。
var placeholders = map[string]struct{}{
	"to be filled by o.e.m.": {},
	"default string":         {},
	"none":                   {},
	"00000000":               {},
	"o.e.m.":                 {},
}

// Sanitize normalizes a raw hardware identifier.
//
// The value is trimmed and lower-cased. The second result is false when raw is
// nil, empty after trimming, or one of the well-known OEM placeholder values.
func Sanitize(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}
	v := strings.ToLower(strings.TrimSpace(*raw))
	if v == "" {
		return "", false
	}
	if _, ok := placeholders[v]; ok {
		return "", false
	}
	return v, true
}

// tagged returns "key:value" for a value that survives Sanitize.
func tagged(key string, raw *string) (string, bool) {
	v, ok := Sanitize(raw)
	if !ok {
		return "", false
	}
	return key + ":" + v, true
}
