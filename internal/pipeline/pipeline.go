package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gyre/internal/config"
	"gyre/internal/coubapi"
	"gyre/internal/fileutil"
	"gyre/internal/ledger"
	"gyre/internal/logging"
	"gyre/internal/media"
	"gyre/internal/naming"
	"gyre/internal/progress"
	"gyre/internal/services"
	"gyre/internal/streams"
)

// tempSuffix marks in-flight stream transfers. A file keeps the suffix until
// its bytes are fully on disk, so a crash or cancellation never leaves a
// partial file under a final name.
const tempSuffix = ".gyre"

// Pipeline drives one item at a time through fetch, selection, download,
// verification and merge. A single Pipeline is shared by all workers; it holds
// no per-item state.
type Pipeline struct {
	cfg         *config.Config
	api         *coubapi.Client
	ledger      *ledger.Ledger
	jsonLog     *ledger.Appender
	unavailable *ledger.Appender
	logger      *slog.Logger
}

// New wires a pipeline from its collaborators. Sidecar appenders may be
// disabled; the ledger must not be nil.
func New(cfg *config.Config, api *coubapi.Client, led *ledger.Ledger, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:         cfg,
		api:         api,
		ledger:      led,
		jsonLog:     ledger.NewAppender(cfg.Output.JSONPath),
		unavailable: ledger.NewAppender(cfg.Output.UnavailablePath),
		logger:      logging.WithComponent(logger, "pipeline"),
	}
}

// item is the mutable per-run state for one identifier.
type item struct {
	id   string
	name string

	videoURL string
	audioURL string

	videoPath string
	audioPath string
}

// Process runs one identifier to a terminal outcome. The returned error is
// non-nil only for run-fatal conditions (context cancellation, broken archive
// file); per-item failures are expressed through the outcome.
func (p *Pipeline) Process(ctx context.Context, id string) (progress.Outcome, error) {
	it := &item{id: id}

	// First existence check: with the default naming scheme the final name
	// is known before any API request.
	if !p.cfg.CustomTemplate() {
		if p.existing(id) != "" {
			return progress.OutcomeExists, nil
		}
	}

	payload, err := p.api.Metadata(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return progress.OutcomeUnavailable, ctx.Err()
		}
		return p.markUnavailable(it, err)
	}

	selection, err := streams.Select(payload, p.cfg)
	if err != nil {
		return p.markUnavailable(it, err)
	}
	it.videoURL = selection.VideoURL
	it.audioURL = selection.AudioURL

	it.name = naming.Resolve(naming.Metadata{
		ID:        id,
		Title:     payload.Title,
		Creation:  payload.CreatedAt,
		Channel:   payload.Channel.Title,
		Community: payload.CommunityName(),
		Tags:      payload.TagTitles(),
	}, p.cfg.Output.Dir, p.cfg.Output.NameTemplate, p.cfg.Output.TagSeparator, p.cfg.Output.AllowUnicode)

	// Second existence check: custom templates depend on metadata, so the
	// name is only resolvable now.
	if p.cfg.CustomTemplate() {
		if p.existing(it.name) != "" {
			return progress.OutcomeExists, nil
		}
	}

	if it.videoURL != "" {
		it.videoPath = filepath.Join(p.cfg.Output.Dir, it.name+".mp4")
	}
	if it.audioURL != "" {
		it.audioPath = filepath.Join(p.cfg.Output.Dir, it.name+audioExt(it.audioURL))
	}

	if err := p.download(ctx, it); err != nil {
		p.discard(it)
		if ctx.Err() != nil {
			return progress.OutcomeCorrupted, ctx.Err()
		}
		p.logger.Warn("download failed", logging.String("id", id), logging.Error(err))
		return progress.OutcomeCorrupted, nil
	}

	if err := p.verify(ctx, it); err != nil {
		p.discard(it)
		if ctx.Err() != nil {
			return progress.OutcomeCorrupted, ctx.Err()
		}
		p.logger.Warn("verification failed", logging.String("id", id), logging.Error(err))
		return progress.OutcomeCorrupted, nil
	}

	if it.videoPath != "" && it.audioPath != "" && !p.cfg.Format.Share {
		if err := p.merge(ctx, it); err != nil {
			p.discard(it)
			if ctx.Err() != nil {
				return progress.OutcomeCorrupted, ctx.Err()
			}
			p.logger.Warn("merge failed", logging.String("id", id), logging.Error(err))
			return progress.OutcomeCorrupted, nil
		}
	}

	if err := p.record(it, payload); err != nil {
		return progress.OutcomeSuccess, err
	}
	return progress.OutcomeSuccess, nil
}

// markUnavailable classifies an error from the fetch or selection stage. Only
// the unavailable marker is expected here; anything else still ends the item
// but is logged at a higher level.
func (p *Pipeline) markUnavailable(it *item, cause error) (progress.Outcome, error) {
	if !errors.Is(cause, services.ErrUnavailable) {
		p.logger.Warn("metadata failed", logging.String("id", it.id), logging.Error(cause))
	}
	if err := p.unavailable.AppendLine(coubapi.CanonicalURL(it.id)); err != nil {
		return progress.OutcomeUnavailable, err
	}
	return progress.OutcomeUnavailable, nil
}

// existing returns the path of an already-downloaded rendition of name, or ""
// when the item still needs downloading. The candidate extensions depend on
// the selection mode; in audio-only mode both container formats are probed
// unless the encoding preference rules one out.
func (p *Pipeline) existing(name string) string {
	if p.cfg.Output.Overwrite {
		return ""
	}

	var candidates []string
	switch {
	case p.cfg.Format.Share || p.cfg.VideoOnly():
		candidates = []string{name + ".mp4"}
	case p.cfg.AudioOnly():
		if p.cfg.Format.AACPreference > 0 {
			candidates = append(candidates, name+".m4a")
		}
		if p.cfg.Format.AACPreference < 3 {
			candidates = append(candidates, name+".mp3")
		}
	default:
		candidates = []string{name + "." + p.cfg.Output.MergeExt}
	}

	for _, candidate := range candidates {
		path := filepath.Join(p.cfg.Output.Dir, candidate)
		if fileutil.Exists(path) {
			return path
		}
	}
	return ""
}

// download transfers the selected streams concurrently. A failed audio
// transfer is tolerated when video is the primary output; the item then
// continues as video-only, matching how the site itself degrades.
func (p *Pipeline) download(ctx context.Context, it *item) error {
	var wg sync.WaitGroup
	var videoErr, audioErr error

	if it.videoPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			videoErr = downloadStream(ctx, p.api.HTTPClient(), it.videoURL, it.videoPath, p.cfg.Download.ChunkSize)
		}()
	}
	if it.audioPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			audioErr = downloadStream(ctx, p.api.HTTPClient(), it.audioURL, it.audioPath, p.cfg.Download.ChunkSize)
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if videoErr != nil {
		return fmt.Errorf("video stream: %w", videoErr)
	}
	if audioErr != nil {
		if p.cfg.AudioOnly() {
			return fmt.Errorf("audio stream: %w", audioErr)
		}
		p.logger.Warn("dropping broken audio stream",
			logging.String("id", it.id), logging.Error(audioErr))
		os.Remove(it.audioPath)
		it.audioPath = ""
	}
	return nil
}

// verify probes each downloaded stream for structural corruption.
func (p *Pipeline) verify(ctx context.Context, it *item) error {
	if it.videoPath != "" {
		if err := probeStream(ctx, p.cfg.Tools.FFmpeg, it.videoPath, true); err != nil {
			return err
		}
	}
	if it.audioPath != "" {
		if err := probeStream(ctx, p.cfg.Tools.FFmpeg, it.audioPath, false); err != nil {
			return err
		}
	}
	return nil
}

// merge remuxes the stream pair into the final container and removes the
// source streams unless they are kept by configuration.
func (p *Pipeline) merge(ctx context.Context, it *item) error {
	merged := filepath.Join(p.cfg.Output.Dir, it.name+"."+p.cfg.Output.MergeExt)
	err := mergeStreams(ctx, p.cfg.Tools.FFmpeg, media.MergeSpec{
		VideoPath: it.videoPath,
		AudioPath: it.audioPath,
		OutPath:   merged,
		Repeat:    p.cfg.Format.Repeat,
		Duration:  p.cfg.Format.Duration,
	})
	if err != nil {
		return err
	}

	if !p.cfg.Output.Keep {
		if it.videoPath != merged {
			os.Remove(it.videoPath)
		}
		os.Remove(it.audioPath)
	}
	return nil
}

// record persists the success: archive entry first so an interrupt cannot
// strand a finished item outside the ledger, then the JSON sidecar.
func (p *Pipeline) record(it *item, payload *coubapi.Payload) error {
	if err := p.ledger.RecordCompleted(it.id); err != nil {
		return err
	}
	return p.jsonLog.AppendJSON(ledger.ItemRecord{
		ID:        it.id,
		Title:     payload.Title,
		Creation:  payload.CreatedAt,
		Channel:   payload.Channel.Title,
		Community: payload.CommunityName(),
		Tags:      payload.TagTitles(),
	})
}

// discard removes every file the item may have produced, both temps and
// renamed streams. Called on any failure past the download stage.
func (p *Pipeline) discard(it *item) {
	for _, path := range []string{it.videoPath, it.audioPath} {
		if path == "" {
			continue
		}
		_ = fileutil.RemoveIfExists(path)
		_ = fileutil.RemoveIfExists(path + tempSuffix)
	}
}

// audioExt derives the container extension from the stream URL. MP3 audio
// ships as .mp3, AAC as .m4a.
func audioExt(streamURL string) string {
	trimmed := streamURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if ext := filepath.Ext(trimmed); ext != "" {
		return ext
	}
	return ".mp3"
}
