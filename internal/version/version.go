// Package version reports the build version of the vidscribe binaries.
package version

import (
	"os/exec"
	"runtime/debug"
	"strings"
)

// Set through -ldflags "-X" by release builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

const fallbackVersion = "0.1.0"

// Resolve returns the version string. Release builds use the ldflags value,
// `go install` builds the module version; otherwise the fallback version gets
// a git-derived suffix when run inside a checkout that is not on a tag.
func Resolve() string {
	base, released := baseVersion(Version, debug.ReadBuildInfo)
	if released {
		return base
	}
	return resolveVersion(base, runGit)
}

// Details adds commit and build date to Resolve when they are known.
func Details() string {
	return details(Resolve(), Commit, Date, debug.ReadBuildInfo)
}

func baseVersion(ldflags string, readBuildInfo func() (*debug.BuildInfo, bool)) (string, bool) {
	if v := strings.TrimPrefix(strings.TrimSpace(ldflags), "v"); v != "" {
		return v, true
	}
	if info, ok := readBuildInfo(); ok && info != nil {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return strings.TrimPrefix(v, "v"), true
		}
	}
	return fallbackVersion, false
}

func details(version, commit, date string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if commit == "" || date == "" {
		if info, ok := readBuildInfo(); ok && info != nil {
			for _, s := range info.Settings {
				switch {
				case s.Key == "vcs.revision" && commit == "":
					commit = s.Value
				case s.Key == "vcs.time" && date == "":
					date = s.Value
				}
			}
		}
	}

	if len(commit) > 12 {
		commit = commit[:12]
	}

	var extra []string
	if commit != "" {
		extra = append(extra, "commit "+commit)
	}
	if date != "" {
		extra = append(extra, "built "+date)
	}
	if len(extra) == 0 {
		return version
	}
	return version + " (" + strings.Join(extra, ", ") + ")"
}

func resolveVersion(base string, git func(...string) (string, error)) string {
	suffix := computeGitSuffix(base, git)
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}

func computeGitSuffix(base string, git func(...string) (string, error)) string {
	if _, err := git("rev-parse", "--git-dir"); err != nil {
		return ""
	}

	if _, err := git("describe", "--tags", "--exact-match"); err == nil {
		return ""
	}

	desc, err := git("describe", "--tags", "--dirty", "--always")
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(desc, "v"+base+"-")
}

func runGit(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
