package platform

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// OSRelease contains parsed values from /etc/os-release.
type OSRelease struct {
	ID         string   // Canonical distro identifier (e.g., "ubuntu", "fedora")
	IDLike     []string // Parent/similar distros (e.g., ["debian"] for Ubuntu)
	VersionID  string   // Version number (e.g., "22.04")
	PrettyName string   // Human-readable name (e.g., "Ubuntu 22.04.4 LTS")
}

// distroToFamily maps distro IDs to the package manager that distro
// ships. Families gpudrv cannot drive map to their own manager name so
// error messages can say what was found.
var distroToFamily = map[string]string{
	"debian": "apt", "ubuntu": "apt", "linuxmint": "apt",
	"pop": "apt", "elementary": "apt", "zorin": "apt",
	"fedora": "yum", "rhel": "yum", "centos": "yum",
	"rocky": "yum", "almalinux": "yum", "ol": "yum",
	"arch": "pacman", "manjaro": "pacman", "endeavouros": "pacman",
	"alpine":   "apk",
	"opensuse": "zypper", "opensuse-leap": "zypper", "opensuse-tumbleweed": "zypper", "sles": "zypper",
}

// ParseOSRelease parses the /etc/os-release file format.
func ParseOSRelease(path string) (*OSRelease, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	release := &OSRelease{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)

		switch key {
		case "ID":
			release.ID = value
		case "ID_LIKE":
			release.IDLike = strings.Fields(value)
		case "VERSION_ID":
			release.VersionID = value
		case "PRETTY_NAME":
			release.PrettyName = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return release, nil
}

// DetectOSRelease reads etc/os-release under root. An empty root means "/".
func DetectOSRelease(root string) (*OSRelease, error) {
	if root == "" {
		root = "/"
	}
	return ParseOSRelease(filepath.Join(root, "etc", "os-release"))
}

// NativeManager returns the package manager command the distro ships,
// following ID_LIKE when ID is not recognised. Returns "" if unknown.
func (r *OSRelease) NativeManager() string {
	if r == nil {
		return ""
	}
	if m, ok := distroToFamily[r.ID]; ok {
		return m
	}
	for _, like := range r.IDLike {
		if m, ok := distroToFamily[like]; ok {
			return m
		}
	}
	return ""
}

// Describe returns a short display name for the distribution.
func (r *OSRelease) Describe() string {
	switch {
	case r == nil:
		return "unknown system"
	case r.PrettyName != "":
		return r.PrettyName
	case r.VersionID != "":
		return r.ID + " " + r.VersionID
	case r.ID != "":
		return r.ID
	default:
		return "unknown system"
	}
}
