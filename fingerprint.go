package hostprobe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	factorDelimiter    = "|"
	compositeDelimiter = ";"
	pciDevicePrefix    = `pci\ven_`
)

// Fingerprint is a machine identity derived from durable hardware attributes.
// Factors lists, sorted, every attribute that went into ID so that two runs
// can be compared.
type Fingerprint struct {
	ID      string   `json:"id"`
	Factors []string `json:"factors"`
	// Diagnostics records categories whose query failed and therefore
	// contributed nothing.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// ComputeFingerprint collects the given categories (all of them when none is
// given) from the host and hashes them.
func ComputeFingerprint(categories ...Category) (*Fingerprint, error) {
	return (&Config{Categories: categories}).Fingerprint()
}

// Fingerprint runs one worker session over the configured categories.
//
// A failing query only removes its category from the result. Backend
// initialization failures, channel desync and worker failures abort. The
// worker is always shut down and joined before returning.
func (c *Config) Fingerprint() (fp *Fingerprint, err error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s := startSession(c.backend())
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			fp, err = nil, cerr
		}
	}()

	set := factorSet{}
	var diags []string
	for _, cat := range c.categories() {
		factors, err := collect(s, cat)
		if err != nil {
			if !IsKind(err, KindQuery) {
				return nil, err
			}
			log.Debug().Err(err).Str("category", string(cat)).Msg("hostprobe category skipped")
			diags = append(diags, fmt.Sprintf("%s: %v", cat, err))
			continue
		}
		set.add(factors...)
	}

	if len(set) == 0 {
		return nil, ErrNoFactorsFound
	}
	factors := set.sorted()
	return &Fingerprint{ID: digest(factors), Factors: factors, Diagnostics: diags}, nil
}

func collect(s *session, cat Category) ([]string, error) {
	switch cat {
	case CategoryBoard:
		resp, err := s.do(queryRequest{kind: kindBoard})
		if err != nil {
			return nil, err
		}
		return boardFactors(resp.boards), nil
	case CategoryProcessor:
		resp, err := s.do(queryRequest{kind: kindProcessor})
		if err != nil {
			return nil, err
		}
		return processorFactors(resp.processors), nil
	case CategoryDisk:
		resp, err := s.do(queryRequest{kind: kindDiskPartitions})
		if err != nil {
			return nil, err
		}
		index, ok := systemDiskIndex(resp.partitions)
		if !ok {
			return nil, nil
		}
		resp, err = s.do(queryRequest{kind: kindDiskDrives})
		if err != nil {
			return nil, err
		}
		return systemDiskFactors(index, resp.drives), nil
	case CategoryGPU:
		resp, err := s.do(queryRequest{kind: kindVideoControllers})
		if err != nil {
			return nil, err
		}
		return videoFactors(resp.videos), nil
	default:
		return nil, nil
	}
}

// appendTagged appends key:value when raw survives Sanitize.
func appendTagged(out []string, key string, raw *string) []string {
	if f, ok := tagged(key, raw); ok {
		return append(out, f)
	}
	return out
}

// boardFactors uses the first baseboard only; no board is zero factors.
func boardFactors(boards []BaseBoard) []string {
	if len(boards) == 0 {
		return nil
	}
	b := boards[0]
	var out []string
	out = appendTagged(out, "bios_manufacturer", b.Manufacturer)
	out = appendTagged(out, "bios_model", b.Product)
	out = appendTagged(out, "bios_serial", b.SerialNumber)
	return out
}

func processorFactors(cpus []Processor) []string {
	if len(cpus) == 0 {
		return nil
	}
	p := cpus[0]
	var out []string
	out = appendTagged(out, "cpu_name", p.Name)
	out = appendTagged(out, "cpu_id", p.ProcessorId)
	return out
}

// systemDiskIndex is the disk holding the first boot partition.
func systemDiskIndex(parts []DiskPartition) (uint32, bool) {
	if len(parts) == 0 {
		return 0, false
	}
	return parts[0].DiskIndex, true
}

// systemDiskFactors only looks at the system disk, so plugging in or removing
// other drives never changes the fingerprint.
func systemDiskFactors(index uint32, drives []DiskDrive) []string {
	for _, d := range drives {
		if d.Index != index {
			continue
		}
		var out []string
		out = appendTagged(out, "disk_model", d.Model)
		out = appendTagged(out, "disk_serial", d.SerialNumber)
		return out
	}
	return nil
}

// videoFactors emits one composite factor per PCI adapter. Adapters on other
// buses (remote display, software renderers) are skipped. i is the adapter's
// position in the enumeration, skipped ones included.
func videoFactors(vcs []VideoController) []string {
	var out []string
	for i, vc := range vcs {
		if !isPCIDevice(vc.PNPDeviceID) {
			continue
		}
		var parts []string
		parts = appendTagged(parts, fmt.Sprintf("gpu%d_manufacturer", i), vc.AdapterCompatibility)
		parts = appendTagged(parts, fmt.Sprintf("gpu%d_model", i), vc.Name)
		parts = appendTagged(parts, fmt.Sprintf("gpu%d_pnp_id", i), vc.PNPDeviceID)
		if len(parts) == 0 {
			continue
		}
		sort.Strings(parts)
		out = append(out, strings.Join(parts, compositeDelimiter))
	}
	return out
}

func isPCIDevice(pnpID *string) bool {
	if pnpID == nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(*pnpID)), pciDevicePrefix)
}

// factorSet is an unordered set that is only ever read back sorted.
type factorSet map[string]struct{}

func (s factorSet) add(factors ...string) {
	for _, f := range factors {
		s[f] = struct{}{}
	}
}

func (s factorSet) sorted() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// digest is the lowercase hex SHA-256 of the sorted factors joined with "|".
func digest(sorted []string) string {
	sum := sha256.Sum256([]byte(strings.Join(sorted, factorDelimiter)))
	return hex.EncodeToString(sum[:])
}
