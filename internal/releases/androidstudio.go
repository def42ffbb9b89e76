package releases

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/gocolly/colly/v2"
)

// DefaultAndroidStudioURL is the Android Studio update feed.
const DefaultAndroidStudioURL = "https://dl.google.com/android/studio/patches/updates.xml"

// AndroidStudioFeed reads Android Studio releases from updates.xml.
type AndroidStudioFeed struct {
	// URL defaults to DefaultAndroidStudioURL.
	URL string
}

// Fetch returns every Android Studio build on the selected channels.
func (f *AndroidStudioFeed) Fetch(ctx context.Context, channels ChannelSet) ([]Release, error) {
	feedURL := f.URL
	if feedURL == "" {
		feedURL = DefaultAndroidStudioURL
	}

	var rels []Release
	found := false
	c := newCollector(ctx)
	c.OnXML("//channel", func(e *colly.XMLElement) {
		found = true
		node, ok := e.DOM.(*xmlquery.Node)
		if !ok {
			return
		}
		rels = append(rels, channelReleases(node, channels)...)
	})
	if err := c.Visit(feedURL); err != nil {
		return nil, fmt.Errorf("fetching Android Studio releases: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("fetching Android Studio releases: no channel elements in %s", feedURL)
	}
	return rels, nil
}

func channelReleases(channel *xmlquery.Node, channels ChannelSet) []Release {
	ch := androidStudioChannel(channel.SelectAttr("id"))
	if !channels.Has(ch) {
		return nil
	}

	var rels []Release
	for _, build := range xmlquery.Find(channel, "build") {
		apiVersion := build.SelectAttr("apiVersion")
		if apiVersion == "" {
			continue
		}

		display := build.SelectAttr("name")
		if display == "" {
			display = build.SelectAttr("version")
		}
		if display == "" {
			display = build.SelectAttr("number")
		}

		rels = append(rels, Release{
			Name:          fmt.Sprintf("Android Studio %s (%s)", display, ch),
			PlatformBuild: strings.TrimPrefix(apiVersion, "AI-"),
			Channel:       ch,
			AndroidStudio: true,
		})
	}
	return rels
}

// androidStudioChannel maps channel ids such as "AI-1-release" or
// "AI-3-eap" to a Channel. Canary builds are published as "eap".
func androidStudioChannel(id string) Channel {
	switch {
	case strings.Contains(id, "release"):
		return Stable
	case strings.Contains(id, "beta"):
		return Beta
	case strings.Contains(id, "rc"):
		return RC
	case strings.Contains(id, "eap"):
		return Canary
	default:
		return Unknown
	}
}
