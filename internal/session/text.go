package session

import (
	"fmt"
	"strings"

	"github.com/tsukumogami/gpudrv/internal/platform"
)

func helpText(v platform.Vendor, m platform.PackageManager) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s Driver Manager Help\n\n", v)
	fmt.Fprintf(&sb, "gpudrv manages %s GPU drivers on this system through **%s**.\n\n", v, m)

	sb.WriteString("## Options\n\n")
	sb.WriteString("| # | Option | Description |\n")
	sb.WriteString("|---|--------|-------------|\n")
	descriptions := []string{
		fmt.Sprintf("Show the loaded %s driver and the installed driver packages.", v),
		fmt.Sprintf("Search the package index for %s driver packages.", v),
		"Choose a driver from the listing and install it.",
		"Choose a driver from the listing and remove it.",
		fmt.Sprintf("Refresh the package index, then upgrade installed %s drivers.", v),
		"Show this help.",
		"Show version and system information.",
		"Leave gpudrv.",
	}
	for i, item := range menuItems {
		fmt.Fprintf(&sb, "| %d | %s | %s |\n", i+1, item, descriptions[i])
	}

	sb.WriteString("\n## Usage\n\n")
	sb.WriteString("- Select an option by entering its number.\n")
	sb.WriteString("- Drivers are chosen by their number in the listing, starting at 1.\n")
	sb.WriteString("- The listing is remembered for the session; *List Available Drivers* refreshes it.\n")

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- An internet connection is needed to search and install.\n")
	sb.WriteString("- Reboot after installing or uninstalling a driver.\n")
	return sb.String()
}

func aboutText(version string, v platform.Vendor, m platform.PackageManager, rel *platform.OSRelease) string {
	if version == "" {
		version = "dev"
	}

	var sb strings.Builder
	sb.WriteString("# gpudrv\n\n")
	sb.WriteString("Install, remove and upgrade GPU drivers with the system package manager.\n\n")
	fmt.Fprintf(&sb, "- **Version:** %s\n", version)
	fmt.Fprintf(&sb, "- **GPU vendor:** %s\n", v)
	fmt.Fprintf(&sb, "- **Package manager:** %s\n", m)
	if rel != nil {
		fmt.Fprintf(&sb, "- **System:** %s\n", rel.Describe())
	}

	sb.WriteString("\n## Features\n\n")
	sb.WriteString("- NVIDIA and AMD drivers on apt, yum and pacman systems\n")
	sb.WriteString("- Show the active driver\n")
	sb.WriteString("- List, install and uninstall drivers\n")
	sb.WriteString("- Update drivers\n")

	sb.WriteString("\n## Note\n\n")
	sb.WriteString("Run gpudrv with sudo, and back up your system before changing drivers.\n")
	return sb.String()
}
