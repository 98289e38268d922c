package toolchain

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"
)

// rustc 1.5.0-nightly (1e2ff1b1c 2015-09-22)
var versionLine = regexp.MustCompile(`^rustc (\S+)(?: \(([0-9a-f]+) (\d{4}-\d{2}-\d{2})\))?`)

// Reported is a compiler's identity as printed by rustc --version
type Reported struct {
	Version string
	Hash    string
	Date    string
}

// ParseVersion parses the output of rustc --version
func ParseVersion(out string) (Reported, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")

	m := versionLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Reported{}, eris.Errorf("unrecognized compiler version %q", line)
	}

	return Reported{Version: m[1], Hash: m[2], Date: m[3]}, nil
}

// versionsMatch compares semantic versions, falling back to text for anything unparsable
func versionsMatch(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)

	if errA != nil || errB != nil {
		return a != "" && a == b
	}

	return va.Equal(vb)
}

// hashesMatch compares commit hashes that may be abbreviated to different lengths
func hashesMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// builtForChannel reports whether version carries the pre-release tag of a
// rolling channel, as in 1.5.0-nightly or 1.4.0-beta.2
func builtForChannel(version, channel string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}

	return strings.HasPrefix(v.Prerelease(), channel)
}
