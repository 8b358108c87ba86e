package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gyre/internal/coubapi"
	"gyre/internal/services"
)

const (
	defaultPerPage = 25
	storyPerPage   = 20
	// The API serves at most 99 pages for tag, community and hot section
	// timelines regardless of the reported page count.
	timelinePageCap = 99
)

// timelinePage is the shared shape of every paginated listing endpoint.
type timelinePage struct {
	TotalPages int `json:"total_pages"`
	Coubs      []struct {
		Permalink string `json:"permalink"`
		RecoubTo  *struct {
			Permalink string `json:"permalink"`
		} `json:"recoub_to"`
	} `json:"coubs"`
}

// Timeline enumerates one paginated listing. Instances are built through the
// kind constructors below, which pin the endpoint template, the sort
// vocabulary and the page cap.
type Timeline struct {
	kind     string
	name     string
	sort     string
	perPage  int
	pageCap  int
	template string
}

func (t *Timeline) Kind() string { return t.kind }

func (t *Timeline) Describe() string {
	if t.name == "" {
		return t.sort
	}
	return t.name
}

func (t *Timeline) pageURL(base string, page int) string {
	return fmt.Sprintf("%s%s&page=%d", base, t.template, page)
}

// IDs walks the listing page by page. Recoubs resolve to the identifier of
// the original coub so the downloaded file is always the source material.
func (t *Timeline) IDs(ctx context.Context, client *coubapi.Client, limit int) ([]string, error) {
	var first timelinePage
	if err := client.GetJSON(ctx, t.pageURL(client.BaseURL(), 1), &first); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "sources", t.kind, t.Describe(), err)
	}

	pages := first.TotalPages
	if t.pageCap > 0 && pages > t.pageCap {
		pages = t.pageCap
	}
	if limit > 0 {
		if maxPages := (limit + t.perPage - 1) / t.perPage; pages > maxPages {
			pages = maxPages
		}
	}

	ids := appendPageIDs(nil, first)
	for page := 2; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var current timelinePage
		if err := client.GetJSON(ctx, t.pageURL(client.BaseURL(), page), &current); err != nil {
			return nil, services.Wrap(services.ErrUnavailable, "sources", t.kind, t.Describe(), err)
		}
		ids = appendPageIDs(ids, current)
	}

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func appendPageIDs(ids []string, page timelinePage) []string {
	for _, coub := range page.Coubs {
		id := coub.Permalink
		if coub.RecoubTo != nil && coub.RecoubTo.Permalink != "" {
			id = coub.RecoubTo.Permalink
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func pickSort(sort, fallback string, supported []string) (string, error) {
	if sort == "" {
		sort = fallback
	}
	for _, s := range supported {
		if sort == s {
			return sort, nil
		}
	}
	return "", services.Wrap(services.ErrConfiguration, "sources", "sort order",
		fmt.Sprintf("%q not in {%s}", sort, strings.Join(supported, ", ")), nil)
}

// NewChannel enumerates a channel timeline. The recoubs policy decides
// whether reposts are excluded, included or the only content fetched.
func NewChannel(name, sort, recoubs string) (*Timeline, error) {
	chosen, err := pickSort(sort, "newest", []string{"newest", "likes_count", "views_count", "oldest", "random"})
	if err != nil {
		return nil, err
	}
	template := fmt.Sprintf("/api/v2/timeline/channel/%s?per_page=%d", url.PathEscape(name), defaultPerPage)
	switch recoubs {
	case "exclude":
		template += "&type=simples"
	case "only":
		template += "&type=recoubs"
	}
	template += "&order_by=" + chosen
	return &Timeline{kind: "channel", name: name, sort: chosen, perPage: defaultPerPage, template: template}, nil
}

// NewTag enumerates a tag timeline.
func NewTag(name, sort string) (*Timeline, error) {
	chosen, err := pickSort(sort, "newest_popular", []string{"newest_popular", "likes_count", "views_count", "newest"})
	if err != nil {
		return nil, err
	}
	template := fmt.Sprintf("/api/v2/timeline/tag/%s?per_page=%d&order_by=%s",
		url.PathEscape(name), defaultPerPage, chosen)
	return &Timeline{kind: "tag", name: name, sort: chosen, perPage: defaultPerPage, pageCap: timelinePageCap, template: template}, nil
}

// NewSearch enumerates search results for a term.
func NewSearch(term, sort string) (*Timeline, error) {
	chosen, err := pickSort(sort, "relevance", []string{"relevance", "likes_count", "views_count", "newest"})
	if err != nil {
		return nil, err
	}
	template := fmt.Sprintf("/api/v2/search/coubs?q=%s&per_page=%d", url.QueryEscape(term), defaultPerPage)
	if chosen != "relevance" {
		template += "&order_by=" + chosen
	}
	return &Timeline{kind: "search", name: term, sort: chosen, perPage: defaultPerPage, template: template}, nil
}

// NewCommunity enumerates a community timeline. The count sorts ride on the
// fresh listing; random switches to a separate endpoint.
func NewCommunity(name, sort string) (*Timeline, error) {
	chosen, err := pickSort(sort, "monthly", []string{
		"daily", "weekly", "monthly", "quarter", "half",
		"rising", "fresh", "likes_count", "views_count", "random",
	})
	if err != nil {
		return nil, err
	}
	var template string
	switch chosen {
	case "likes_count", "views_count":
		template = fmt.Sprintf("/api/v2/timeline/community/%s/fresh?order_by=%s&per_page=%d",
			url.PathEscape(name), chosen, defaultPerPage)
	case "random":
		template = fmt.Sprintf("/api/v2/timeline/random/%s?per_page=%d", url.PathEscape(name), defaultPerPage)
	default:
		template = fmt.Sprintf("/api/v2/timeline/community/%s/%s?per_page=%d",
			url.PathEscape(name), chosen, defaultPerPage)
	}
	return &Timeline{kind: "community", name: name, sort: chosen, perPage: defaultPerPage, pageCap: timelinePageCap, template: template}, nil
}

// NewFeatured enumerates the editorial explore listing.
func NewFeatured(sort string) (*Timeline, error) {
	chosen, err := pickSort(sort, "recent", []string{"recent", "top_of_the_month", "undervalued"})
	if err != nil {
		return nil, err
	}
	template := "/api/v2/timeline/explore?"
	if chosen != "recent" {
		template += "order_by=" + chosen + "&"
	}
	template += fmt.Sprintf("per_page=%d", defaultPerPage)
	return &Timeline{kind: "featured", sort: chosen, perPage: defaultPerPage, template: template}, nil
}

// NewCoubOfTheDay enumerates past coub-of-the-day picks.
func NewCoubOfTheDay(sort string) (*Timeline, error) {
	chosen, err := pickSort(sort, "recent", []string{"recent", "top", "views_count"})
	if err != nil {
		return nil, err
	}
	template := "/api/v2/timeline/explore/coub_of_the_day?"
	if chosen != "recent" {
		template += "order_by=" + chosen + "&"
	}
	template += fmt.Sprintf("per_page=%d", defaultPerPage)
	return &Timeline{kind: "coub of the day", sort: chosen, perPage: defaultPerPage, template: template}, nil
}

// NewStory enumerates a story. Story URLs carry the numeric id and a title
// slug separated by a dash; only the id part addresses the API.
func NewStory(slug string) *Timeline {
	id, _, _ := strings.Cut(slug, "-")
	template := fmt.Sprintf("/api/v2/stories/%s/coubs?per_page=%d", url.PathEscape(id), storyPerPage)
	return &Timeline{kind: "story", name: slug, perPage: storyPerPage, template: template}
}

// NewHotSection enumerates the hot section.
func NewHotSection(sort string) (*Timeline, error) {
	chosen, err := pickSort(sort, "monthly", []string{
		"daily", "weekly", "monthly", "quarter", "half", "rising", "fresh",
	})
	if err != nil {
		return nil, err
	}
	template := fmt.Sprintf("/api/v2/timeline/subscriptions/%s?per_page=%d", chosen, defaultPerPage)
	return &Timeline{kind: "hot section", sort: chosen, perPage: defaultPerPage, pageCap: timelinePageCap, template: template}, nil
}

// NewRandom enumerates the random listing.
func NewRandom(sort string) (*Timeline, error) {
	chosen, err := pickSort(sort, "popular", []string{"popular", "top"})
	if err != nil {
		return nil, err
	}
	template := "/api/v2/timeline/explore/random?"
	if chosen != "popular" {
		template += "order_by=" + chosen + "&"
	}
	template += fmt.Sprintf("per_page=%d", defaultPerPage)
	return &Timeline{kind: "random coubs", sort: chosen, perPage: defaultPerPage, template: template}, nil
}
