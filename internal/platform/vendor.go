// Package platform detects the host facts gpudrv depends on: the GPU
// vendor, the package manager, the effective user and the distribution.
package platform

import (
	"context"
	"strings"

	"github.com/tsukumogami/gpudrv/internal/executor"
)

// Vendor identifies the GPU manufacturer gpudrv manages drivers for.
type Vendor int

const (
	// VendorUnknown means no supported GPU was found.
	VendorUnknown Vendor = iota
	// VendorNVIDIA is an NVIDIA GPU.
	VendorNVIDIA
	// VendorAMD is an AMD (Radeon) GPU.
	VendorAMD
)

// String returns the display name of the vendor.
func (v Vendor) String() string {
	switch v {
	case VendorNVIDIA:
		return "NVIDIA"
	case VendorAMD:
		return "AMD"
	default:
		return "unknown"
	}
}

// Token returns the lowercase name package repositories use for the vendor.
func (v Vendor) Token() string {
	return strings.ToLower(v.String())
}

// Supported reports whether gpudrv can manage drivers for v.
func (v Vendor) Supported() bool {
	return v == VendorNVIDIA || v == VendorAMD
}

// Vendor markers, matched case-sensitively. NVIDIA is checked first.
const (
	markerNVIDIA = "NVIDIA"
	markerAMD    = "AMD"
	markerRadeon = "Radeon"
)

// ParseVendor scans hardware enumeration text for a vendor marker.
// "NVIDIA" wins over "AMD" and "Radeon" regardless of position.
func ParseVendor(text string) Vendor {
	switch {
	case strings.Contains(text, markerNVIDIA):
		return VendorNVIDIA
	case strings.Contains(text, markerAMD), strings.Contains(text, markerRadeon):
		return VendorAMD
	default:
		return VendorUnknown
	}
}

// displayControllerLines keeps the lspci lines describing VGA or 3D
// controllers, compared case-insensitively.
func displayControllerLines(out string) string {
	var kept []string
	for _, line := range strings.Split(out, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "vga") || strings.Contains(lower, "3d") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// LspciCommand is the hardware bus enumeration used by the vendor probe.
var LspciCommand = executor.New("lspci")

// DetectVendor returns the primary GPU vendor.
//
// It runs lspci and scans the display controller lines. When lspci cannot
// be started (pciutils not installed) it falls back to reading PCI vendor
// ids from sysfs under root; an empty root means "/".
func DetectVendor(ctx context.Context, r executor.Runner, root string) Vendor {
	res := r.Run(ctx, LspciCommand)
	if !res.Started() {
		return vendorFromSysfs(root)
	}
	return ParseVendor(displayControllerLines(res.Stdout))
}
