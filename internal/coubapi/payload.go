package coubapi

// Payload models the metadata response for a single coub.
//
// The API is undocumented; field coverage follows observed behavior. Missing
// items are signaled through the error key, not the HTTP status.
type Payload struct {
	Error        string       `json:"error"`
	Title        string       `json:"title"`
	CreatedAt    string       `json:"created_at"`
	Channel      Channel      `json:"channel"`
	Communities  []Community  `json:"communities"`
	Tags         []Tag        `json:"tags"`
	FileVersions FileVersions `json:"file_versions"`
}

type Channel struct {
	Title string `json:"title"`
}

type Community struct {
	Permalink string `json:"permalink"`
}

type Tag struct {
	Title string `json:"title"`
}

// FileVersions groups the three stream families a coub can offer.
type FileVersions struct {
	HTML5  HTML5Versions  `json:"html5"`
	Mobile MobileVersions `json:"mobile"`
	Share  ShareVersion   `json:"share"`
}

// HTML5Versions lists separate video/audio renditions keyed by tier name
// (med/high/higher for video, med/high for audio).
type HTML5Versions struct {
	Video map[string]StreamEntry `json:"video"`
	Audio map[string]StreamEntry `json:"audio"`
}

// StreamEntry is one html5 rendition. Missing streams surface as a zero size
// or, irregularly, as a JSON null.
type StreamEntry struct {
	URL  string `json:"url"`
	Size *int64 `json:"size"`
}

// Present reports whether the entry points at real bytes. Zero, null or
// absent sizes all mean the stream does not exist and must not be selected.
func (e StreamEntry) Present() bool {
	return e.URL != "" && e.Size != nil && *e.Size > 0
}

// MobileVersions lists the mobile audio renditions. These carry no size and
// are trusted to exist when selected.
type MobileVersions struct {
	Audio []string `json:"audio"`
}

// ShareVersion is the combined audio+video rendition. Non-existence shows up
// as null or, rarely, the literal string "{}".
type ShareVersion struct {
	Default string `json:"default"`
}

func (s ShareVersion) Present() bool {
	return s.Default != "" && s.Default != "{}"
}

// Unavailable reports whether the API explicitly signaled a missing item.
func (p *Payload) Unavailable() bool {
	return p.Error != ""
}

// CommunityName returns the primary community permalink, or the "undefined"
// sentinel for the rare coub without one.
func (p *Payload) CommunityName() string {
	if len(p.Communities) > 0 && p.Communities[0].Permalink != "" {
		return p.Communities[0].Permalink
	}
	return "undefined"
}

// TagTitles returns the ordered tag names.
func (p *Payload) TagTitles() []string {
	titles := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		titles = append(titles, tag.Title)
	}
	return titles
}
