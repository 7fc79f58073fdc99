package drivers

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Listing is an ordered list of driver package identifiers, in the order
// the package manager printed them. Menu numbering follows this order.
type Listing []string

// ParseListing takes the first whitespace-delimited token of every
// non-blank line. Order and duplicates are preserved.
func ParseListing(output string) Listing {
	var out Listing
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, fields[0])
	}
	return out
}

// filterLines keeps lines containing token, compared case-insensitively.
func filterLines(output, token string) string {
	token = strings.ToLower(token)
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(strings.ToLower(line), token) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// branchPattern captures the driver branch number in names such as
// nvidia-driver-550, nvidia-driver-550-open or nvidia-driver-550-server.
var branchPattern = regexp.MustCompile(`-(\d+(?:\.\d+){0,2})(?:-|$)`)

// Newest returns the identifier with the highest driver branch number.
// Ties keep the earliest entry. Returns false when no entry carries a
// branch number (e.g. amdgpu meta packages).
func Newest(l Listing) (string, bool) {
	var (
		best    string
		bestVer *semver.Version
	)
	for _, id := range l {
		m := branchPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		v, err := semver.NewVersion(m[1])
		if err != nil {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = id, v
		}
	}
	return best, bestVer != nil
}
