package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// PCI class codes for display controllers (top 16 bits).
const (
	pciClassVGA = "0x0300" // VGA compatible controller
	pciClass3D  = "0x0302" // 3D controller (e.g., NVIDIA Tesla)
)

// PCI vendor IDs for the supported GPU manufacturers.
var pciVendorIDs = map[string]Vendor{
	"0x10de": VendorNVIDIA,
	"0x1002": VendorAMD,
}

// vendorFromSysfs scans /sys/bus/pci/devices under root for display
// controllers. NVIDIA wins over AMD when both are present, matching
// ParseVendor.
func vendorFromSysfs(root string) Vendor {
	if root == "" {
		root = "/"
	}
	pattern := filepath.Join(root, "sys", "bus", "pci", "devices", "*", "class")
	classFiles, err := filepath.Glob(pattern)
	if err != nil {
		return VendorUnknown
	}

	found := VendorUnknown
	for _, classFile := range classFiles {
		classData, err := os.ReadFile(classFile)
		if err != nil {
			continue
		}
		if !isDisplayController(strings.TrimSpace(string(classData))) {
			continue
		}

		vendorData, err := os.ReadFile(filepath.Join(filepath.Dir(classFile), "vendor"))
		if err != nil {
			continue
		}
		switch pciVendorIDs[strings.TrimSpace(string(vendorData))] {
		case VendorNVIDIA:
			return VendorNVIDIA
		case VendorAMD:
			found = VendorAMD
		}
	}
	return found
}

// isDisplayController checks if a PCI class code ("0xCCSSPP") is a VGA or
// 3D controller.
func isDisplayController(classStr string) bool {
	if len(classStr) < 6 {
		return false
	}
	prefix := classStr[:6]
	return prefix == pciClassVGA || prefix == pciClass3D
}
