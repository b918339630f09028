package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
)

// Build metadata, overridable through -ldflags "-X spanres/internal/version.Version=...".
var (
	Version    = "0.1.0-dev"
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = ""
)

var componentColors = [3]*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Semver parses Version. An unparsable override yields 0.0.0.
func Semver() *semver.Version {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return semver.New(0, 0, 0, "", "")
	}
	return v
}

// ReleaseLine is the constraint naming the versions whose cached output
// running can read: same major, or same minor while major is 0.
func ReleaseLine(running *semver.Version) string {
	if running.Major() > 0 {
		return fmt.Sprintf("^%d", running.Major())
	}
	return fmt.Sprintf("~%d.%d", running.Major(), running.Minor())
}

// Accepts reports whether output written by written is readable by running.
// Prereleases are compared on their release part; nothing newer than
// running is accepted.
func Accepts(running, written *semver.Version) bool {
	c, err := semver.NewConstraint(ReleaseLine(running))
	if err != nil {
		return false
	}
	release := *written
	if written.Prerelease() != "" {
		release, _ = written.SetPrerelease("")
	}
	return c.Check(&release) && !written.GreaterThan(running)
}

// Colored renders Version with each numeric component coloured.
func Colored() string {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return Version
	}
	parts := [3]uint64{v.Major(), v.Minor(), v.Patch()}
	out := ""
	for i, n := range parts {
		if i > 0 {
			out += "."
		}
		out += componentColors[i].Sprint(n)
	}
	if pre := v.Prerelease(); pre != "" {
		out += "-" + pre
	}
	return out
}
