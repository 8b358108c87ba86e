package streams

import (
	"gyre/internal/config"
	"gyre/internal/coubapi"
	"gyre/internal/services"
)

// Selection holds the chosen stream URLs for one item. Either field may be
// empty; Select guarantees at least one is set.
type Selection struct {
	VideoURL string
	AudioURL string
}

// videoTierOrder lists the html5 video tiers by ascending quality.
var videoTierOrder = []string{"med", "high", "higher"}

// Select ranks the streams offered by a metadata payload and picks one video
// and/or one audio URL per the configured policy. It is a pure function of
// its inputs: no network, no filesystem.
//
// Unviable combinations (explicit API error, empty candidate lists for the
// requested output) surface as services.ErrUnavailable.
func Select(payload *coubapi.Payload, cfg *config.Config) (Selection, error) {
	if payload.Unavailable() {
		return Selection{}, services.Wrap(services.ErrUnavailable, "streams", "select", "api reported missing item", nil)
	}

	// Share mode looks for exactly one combined rendition and treats it as
	// a video-only selection.
	if cfg.Format.Share {
		if share := payload.FileVersions.Share; share.Present() {
			return Selection{VideoURL: share.Default}, nil
		}
		return Selection{}, services.Wrap(services.ErrUnavailable, "streams", "select", "share rendition missing", nil)
	}

	video, audio := Candidates(payload, cfg)

	if cfg.Format.Video && len(video) == 0 {
		return Selection{}, services.Wrap(services.ErrUnavailable, "streams", "select", "no viable video stream", nil)
	}
	if cfg.AudioOnly() && len(audio) == 0 {
		return Selection{}, services.Wrap(services.ErrUnavailable, "streams", "select", "no viable audio stream", nil)
	}

	var selection Selection
	if cfg.Format.Video && len(video) > 0 {
		selection.VideoURL = pick(video, cfg.Format.VideoQuality)
	}
	if cfg.Format.Audio && len(audio) > 0 {
		selection.AudioURL = pick(audio, cfg.Format.AudioQuality)
	}

	if selection.VideoURL == "" && selection.AudioURL == "" {
		return Selection{}, services.Wrap(services.ErrUnavailable, "streams", "select", "no viable stream combination", nil)
	}
	return selection, nil
}

// Candidates builds the ordered video and audio candidate lists.
//
// Video: html5 tiers inside the inclusive [video_min, video_max] range, in
// ascending quality order, skipping entries with a zero, null or missing
// size.
//
// Audio: html5 med/high plus the first mobile rendition. The aac preference
// decides both ordering and admission: level 0 drops mobile (AAC) audio
// entirely, level 3 drops the html5 (MP3) entries, level 2 and above sorts
// mobile audio last so it wins the "best" pick.
func Candidates(payload *coubapi.Payload, cfg *config.Config) (video []string, audio []string) {
	versions := payload.FileVersions

	minTier := config.VideoTiers[cfg.Format.VideoMin]
	maxTier := config.VideoTiers[cfg.Format.VideoMax]
	for rank, tier := range videoTierOrder {
		if rank < minTier || rank > maxTier {
			continue
		}
		if entry, ok := versions.HTML5.Video[tier]; ok && entry.Present() {
			video = append(video, entry.URL)
		}
	}

	aac := cfg.Format.AACPreference
	type source struct {
		family string
		tier   string
	}
	var order []source
	if aac >= 2 {
		order = []source{{"html5", "med"}, {"html5", "high"}, {"mobile", ""}}
	} else {
		order = []source{{"html5", "med"}, {"mobile", ""}, {"html5", "high"}}
	}

	for _, src := range order {
		if src.family == "mobile" {
			// Mobile audio reports no size; trust the link when the
			// policy admits AAC at all.
			if aac > 0 && len(versions.Mobile.Audio) > 0 && versions.Mobile.Audio[0] != "" {
				audio = append(audio, versions.Mobile.Audio[0])
			}
			continue
		}
		if aac >= 3 {
			continue
		}
		if entry, ok := versions.HTML5.Audio[src.tier]; ok && entry.Present() {
			audio = append(audio, entry.URL)
		}
	}

	return video, audio
}

func pick(candidates []string, quality string) string {
	if quality == "worst" {
		return candidates[0]
	}
	return candidates[len(candidates)-1]
}
