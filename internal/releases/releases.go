// Package releases fetches IntelliJ IDEA and Android Studio release metadata
// and groups releases by the platform build they ship.
package releases

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// FetchTimeout bounds each feed request.
const FetchTimeout = 30 * time.Second

const userAgent = "idekotlin"

// Channel is a release maturity track.
type Channel string

// Known channels.
const (
	Stable  Channel = "stable"
	Canary  Channel = "canary"
	Beta    Channel = "beta"
	EAP     Channel = "eap"
	RC      Channel = "rc"
	Unknown Channel = "unknown"
)

// AllChannels is the default selection, in flag order.
var AllChannels = []Channel{Stable, Canary, Beta, EAP, RC}

// ChannelSet is a set of requested channels.
type ChannelSet map[Channel]bool

// ParseChannels parses a comma-separated channel list.
func ParseChannels(s string) (ChannelSet, error) {
	set := ChannelSet{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ch := Channel(strings.ToLower(part))
		if !slices.Contains(AllChannels, ch) {
			return nil, fmt.Errorf("unknown channel %q (valid: %s)", part, joinChannels(AllChannels))
		}
		set[ch] = true
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no channels selected")
	}
	return set, nil
}

// Has reports whether ch is selected.
func (s ChannelSet) Has(ch Channel) bool {
	return s[ch]
}

// String lists the selected channels in flag order.
func (s ChannelSet) String() string {
	var chs []Channel
	for _, ch := range AllChannels {
		if s[ch] {
			chs = append(chs, ch)
		}
	}
	return joinChannels(chs)
}

func joinChannels(chs []Channel) string {
	names := make([]string, len(chs))
	for i, ch := range chs {
		names[i] = string(ch)
	}
	return strings.Join(names, ",")
}

// Release is one IDE release as reported by its feed.
type Release struct {
	// Name is the display name, e.g. "IntelliJ IDEA 2025.3.2 (stable)".
	Name string `json:"name"`
	// PlatformBuild is the dot-separated build shared by all IDEs built from
	// the same platform snapshot, e.g. "253.30387.90".
	PlatformBuild string  `json:"platform_build"`
	Channel       Channel `json:"channel"`
	AndroidStudio bool    `json:"android_studio"`
}

// Major returns the platform major, the first component of PlatformBuild.
func (r Release) Major() string {
	return PlatformMajor(r.PlatformBuild)
}

// PlatformMajor returns the first dot-separated component of a build.
func PlatformMajor(build string) string {
	major, _, _ := strings.Cut(build, ".")
	return major
}

// Group is every release sharing one platform build.
type Group struct {
	Build    string
	Releases []Release
}

// Representative is the first release in the group.
func (g Group) Representative() Release {
	return g.Releases[0]
}

// GroupByBuild groups releases by platform build, keeping first-seen order for
// both the groups and their members.
func GroupByBuild(rels []Release) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range rels {
		i, ok := index[r.PlatformBuild]
		if !ok {
			i = len(groups)
			index[r.PlatformBuild] = i
			groups = append(groups, Group{Build: r.PlatformBuild})
		}
		groups[i].Releases = append(groups[i].Releases, r)
	}
	return groups
}

// LatestPerLine keeps the first release seen for each (platform major,
// channel) pair. Feeds list newest first, so that is the latest one.
func LatestPerLine(rels []Release) []Release {
	type key struct {
		major   string
		channel Channel
	}
	seen := make(map[key]bool)
	var out []Release
	for _, r := range rels {
		k := key{r.Major(), r.Channel}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
