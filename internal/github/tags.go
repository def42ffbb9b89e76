package github

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
)

// TagPrefix is the prefix of IntelliJ IDEA release tags, e.g. "idea/223.8836.41".
const TagPrefix = "idea/"

// BuildTag returns the release tag for a platform build.
func BuildTag(build string) string {
	return TagPrefix + build
}

// NearestTag returns the most recent idea/<major>.* tag, or "" when the major
// line has no tags.
func NearestTag(ctx context.Context, lister TagLister, major string) (string, error) {
	tags, err := lister.MatchingTags(ctx, TagPrefix+major+".")
	if err != nil {
		return "", err
	}
	return HighestTag(tags), nil
}

// HighestTag sorts tags by their dot-separated numeric suffix and returns the
// last one. Non-numeric segments count as 0.
func HighestTag(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	sorted := slices.Clone(tags)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return compareTagKeys(tagKey(a), tagKey(b))
	})
	return sorted[len(sorted)-1]
}

func tagKey(tag string) []int {
	parts := strings.Split(strings.TrimPrefix(tag, TagPrefix), ".")
	key := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			n = 0
		}
		key[i] = n
	}
	return key
}

// compareTagKeys orders keys element-wise; a shorter key that is a prefix of
// a longer one sorts first.
func compareTagKeys(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}
