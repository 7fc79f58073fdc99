package platform

import (
	"os"
	"path/filepath"
)

// PackageManager is the system package manager family gpudrv drives.
// The zero value means none was detected.
type PackageManager int

const (
	// Apt is the Debian/Ubuntu package manager.
	Apt PackageManager = iota + 1
	// Yum is the RHEL/Fedora package manager.
	Yum
	// Pacman is the Arch Linux package manager.
	Pacman
)

// String returns the manager's command name.
func (m PackageManager) String() string {
	switch m {
	case Apt:
		return "apt"
	case Yum:
		return "yum"
	case Pacman:
		return "pacman"
	default:
		return "none"
	}
}

// managerProbes lists the binaries checked by DetectPackageManager.
// The order is a compatibility policy: apt, then yum, then pacman.
var managerProbes = []struct {
	manager PackageManager
	path    string
}{
	{Apt, "/usr/bin/apt"},
	{Yum, "/usr/bin/yum"},
	{Pacman, "/usr/bin/pacman"},
}

// DetectPackageManager returns the first manager whose binary exists under
// root. An empty root means "/". Returns ErrUnsupportedPackageManager when
// none is present.
func DetectPackageManager(root string) (PackageManager, error) {
	if root == "" {
		root = "/"
	}
	for _, p := range managerProbes {
		if _, err := os.Stat(filepath.Join(root, p.path)); err == nil {
			return p.manager, nil
		}
	}
	return 0, ErrUnsupportedPackageManager
}
