package releases

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"
)

// DefaultIntelliJURL is the JetBrains product releases endpoint.
const DefaultIntelliJURL = "https://data.services.jetbrains.com/products/releases"

// IntelliJProductCode selects IntelliJ IDEA Ultimate.
const IntelliJProductCode = "IIU"

const maxFeedSize = 64 << 20

// intellijTypes maps our channels to the feed's release types.
var intellijTypes = map[Channel]string{
	Stable: "release",
	EAP:    "eap",
	RC:     "rc",
}

type intellijRelease struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Type    string `json:"type"`
}

// IntelliJFeed reads IntelliJ IDEA releases from the JetBrains data service.
type IntelliJFeed struct {
	// URL defaults to DefaultIntelliJURL.
	URL string
}

// Fetch returns the latest IntelliJ IDEA release per platform major and
// channel. Channels the feed does not publish (beta, canary) are ignored.
func (f *IntelliJFeed) Fetch(ctx context.Context, channels ChannelSet) ([]Release, error) {
	var types []string
	for _, ch := range AllChannels {
		if t, ok := intellijTypes[ch]; ok && channels.Has(ch) {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return nil, nil
	}

	base := f.URL
	if base == "" {
		base = DefaultIntelliJURL
	}
	feedURL := base + "?code=" + IntelliJProductCode + "&type=" + url.QueryEscape(strings.Join(types, ","))

	var body []byte
	c := newCollector(ctx)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	if err := c.Visit(feedURL); err != nil {
		return nil, fmt.Errorf("fetching IntelliJ releases: %w", err)
	}

	rels, err := parseIntelliJ(body)
	if err != nil {
		return nil, err
	}
	return LatestPerLine(rels), nil
}

func parseIntelliJ(body []byte) ([]Release, error) {
	var products map[string][]intellijRelease
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decoding IntelliJ releases: %w", err)
	}

	var rels []Release
	// The feed is keyed by product code; only IIU is requested.
	for _, items := range products {
		for _, item := range items {
			if item.Build == "" {
				continue
			}
			ch := intellijChannel(item.Type)
			rels = append(rels, Release{
				Name:          fmt.Sprintf("IntelliJ IDEA %s (%s)", item.Version, ch),
				PlatformBuild: item.Build,
				Channel:       ch,
			})
		}
	}
	return rels, nil
}

func intellijChannel(releaseType string) Channel {
	switch releaseType {
	case "", "release":
		return Stable
	case "eap":
		return EAP
	case "rc":
		return RC
	default:
		return Channel(releaseType)
	}
}

func newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
		// The IIU feed carries download metadata for every release.
		colly.MaxBodySize(maxFeedSize),
	)
	c.SetRequestTimeout(FetchTimeout)
	return c
}
