// Package hostprobe answers capability questions about the local machine and
// derives a stable hardware fingerprint from it (without admin privileges
// where the OS allows).
//
// https://github.com/darkit/hostprobe
//
// Three kinds of answers are provided:
//
// Virtualization reports whether the CPU supports hardware virtualization and
// whether firmware and the OS have it enabled.
//
// ProbeFeature (ProbeHyperV, ProbeWSL) decides whether an optional OS feature
// is enabled by trying several independent methods in order (service state,
// Win32_OptionalFeature, registry) and keeps a diagnostic line per attempt.
// No single method is trusted on its own.
//
// ComputeFingerprint hashes sanitized identifiers of the baseboard, CPU,
// system disk and PCI display adapters into a SHA-256 hex id. ProtectedID
// derives an application specific id from it via HMAC-SHA256, so the
// fingerprint itself never has to leave the machine.
//
// All system-management queries (WMI on Windows, sysfs through ghw on Linux)
// run on a dedicated goroutine locked to its OS thread, one request at a time.
//
// Caveat: cloned virtual machines share most hardware identifiers and
// therefore often share a fingerprint.
package hostprobe // import "github.com/darkit/hostprobe"
