package sources

import (
	"net/url"
	"os"
	"strings"
)

// ParseInput maps a raw command line input to a source. Existing file paths
// become link lists; everything else is treated as a Coub URL or a bare
// channel name, with an optional "#<sort>" suffix selecting the sort order.
func ParseInput(raw, recoubs string) (Source, error) {
	if _, err := os.Stat(raw); err == nil {
		return LinkList{Path: raw}, nil
	}
	return parseLink(raw, recoubs)
}

// sortSuffixes maps the path suffixes the website uses to the sort orders the
// API understands, per source family.
var sortSuffixes = map[string]map[string]string{
	"channel": {
		"/coubs":   "",
		"/reposts": "",
		"/stories": "",
	},
	"tag": {
		"/likes": "likes_count",
		"/views": "views_count",
		"/fresh": "newest",
	},
	"search": {
		"/likes":    "likes_count",
		"/views":    "views_count",
		"/fresh":    "newest",
		"/channels": "",
	},
	"community": {
		"/rising": "rising",
		"/fresh":  "fresh",
		"/top":    "likes_count",
		"/views":  "views_count",
		"/random": "random",
	},
	"random": {
		"/top": "top",
	},
}

func splitSort(raw string) (string, string) {
	link, sort, _ := strings.Cut(raw, "#")
	return link, sort
}

// stripSuffix removes a recognized trailing path segment from info and maps
// it to a sort order, keeping an explicit "#sort" when one was given.
func stripSuffix(info, sort, family string) (string, string) {
	for suffix, mapped := range sortSuffixes[family] {
		if rest, ok := strings.CutSuffix(info, suffix); ok {
			if sort == "" {
				sort = mapped
			}
			return rest, sort
		}
	}
	return info, sort
}

func parseLink(raw, recoubs string) (Source, error) {
	link, sort := splitSort(raw)

	// Everything after the host, regardless of scheme or www prefix.
	info := link
	if _, after, ok := strings.Cut(link, "coub.com"); ok {
		info = after
	}
	info = strings.Trim(info, "/")
	info = unescape(info)

	switch {
	case strings.HasPrefix(info, "view/"):
		return Item{ID: strings.TrimPrefix(info, "view/")}, nil

	case strings.HasPrefix(info, "tags/"):
		name, chosen := stripSuffix(strings.TrimPrefix(info, "tags/"), sort, "tag")
		return NewTag(name, chosen)

	case strings.HasPrefix(info, "search?q="):
		term, chosen := stripSuffix(strings.TrimPrefix(info, "search?q="), sort, "search")
		return NewSearch(term, chosen)

	case strings.HasPrefix(info, "community/featured"), strings.HasPrefix(info, "featured"):
		return parseFeatured(info, sort)

	case strings.HasPrefix(info, "community/"):
		name, chosen := stripSuffix(strings.TrimPrefix(info, "community/"), sort, "community")
		return NewCommunity(name, chosen)

	case strings.HasPrefix(info, "stories/"):
		return NewStory(strings.TrimPrefix(info, "stories/")), nil

	case strings.HasPrefix(info, "random"):
		_, chosen := stripSuffix(strings.TrimPrefix(info, "random"), sort, "random")
		return NewRandom(chosen)

	case info == "" || info == "hot" || info == "rising" || info == "fresh":
		// The hot section lives at the site root; /rising and /fresh are
		// shortcuts that double as the sort order.
		if sort == "" && info != "" && info != "hot" {
			sort = info
		}
		return NewHotSection(sort)

	default:
		// Channel URLs have no distinguishing path segment; any other name
		// falls through to a channel lookup.
		name, chosen := stripSuffix(info, sort, "channel")
		return NewChannel(name, chosen, recoubs)
	}
}

func parseFeatured(info, sort string) (Source, error) {
	switch {
	case strings.Contains(info, "coubs/top_of_the_month"):
		if sort == "" {
			sort = "top_of_the_month"
		}
	case strings.Contains(info, "coubs/undervalued"):
		if sort == "" {
			sort = "undervalued"
		}
	case strings.Contains(info, "coub_of_the_day"):
		return NewCoubOfTheDay(sort)
	}
	return NewFeatured(sort)
}

// unescape undoes browser-applied percent escaping so names round-trip the
// same whether pasted from the address bar or typed by hand.
func unescape(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}
