package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ytget/yt-queue/internal/metadata"
	"github.com/ytget/yt-queue/internal/model"
	"github.com/ytget/yt-queue/internal/platform"
	"github.com/ytget/yt-queue/internal/queue"
	"github.com/ytget/yt-queue/internal/resolve"
)

const (
	// eventBufferSize bounds the event channel; the oldest event is dropped
	// when a slow consumer falls behind
	eventBufferSize = 256

	// DefaultMaxParallel keeps processing strictly sequential so probe rate
	// limits hold and log output stays readable
	DefaultMaxParallel = 1
)

// forbiddenFallbackLadder lists the quality tiers tried in order after an
// HTTP 403 rejection, finishing with a plain audio extraction.
var forbiddenFallbackLadder = []model.FormatSpec{
	model.VideoFormat(model.Quality1080p),
	model.VideoFormat(model.Quality720p),
	model.VideoFormat(model.Quality480p),
	model.VideoFormat(model.Quality360p),
	model.AudioOnlyFormat(model.AudioDefault),
}

// Engine processes Pending queue items in order: probe metadata through the
// cache, resolve the effective format, fetch, validate, record the outcome.
// Errors on one item never abort the rest of the queue.
type Engine struct {
	store    *queue.Store
	cache    *metadata.Cache
	resolver *resolve.Resolver
	fetcher  Fetcher

	// probeLimiter paces metadata lookups to one per second
	probeLimiter *rate.Limiter

	events chan Event

	mu          sync.Mutex
	archive     *Archive
	persist     func()
	downloadDir string
	forceSabr   bool
	maxParallel int
	running     bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewEngine creates an execution engine over the given collaborators
func NewEngine(store *queue.Store, cache *metadata.Cache, resolver *resolve.Resolver, fetcher Fetcher, downloadDir string) *Engine {
	return &Engine{
		store:        store,
		cache:        cache,
		resolver:     resolver,
		fetcher:      fetcher,
		probeLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
		events:       make(chan Event, eventBufferSize),
		archive:      NewArchive(downloadDir),
		downloadDir:  downloadDir,
		maxParallel:  DefaultMaxParallel,
	}
}

// Events returns the channel carrying progress, state and log events
func (e *Engine) Events() <-chan Event {
	return e.events
}

// SetPersistFunc sets the snapshot callback invoked after each terminal transition
func (e *Engine) SetPersistFunc(persist func()) {
	e.mu.Lock()
	e.persist = persist
	e.mu.Unlock()
}

// SetDownloadDir changes the destination directory and its archive
func (e *Engine) SetDownloadDir(dir string) {
	e.mu.Lock()
	e.downloadDir = dir
	e.archive = NewArchive(dir)
	e.mu.Unlock()
}

// SetSabrCeiling forwards the restricted-quality boundary to the resolver
func (e *Engine) SetSabrCeiling(q model.Quality) {
	e.resolver.SetSabrCeiling(q)
}

// SetForceSabr toggles the SABR ceiling bypass
func (e *Engine) SetForceSabr(force bool) {
	e.mu.Lock()
	e.forceSabr = force
	e.mu.Unlock()
}

// SetMaxParallel bounds the worker pool for the next Start
func (e *Engine) SetMaxParallel(n int) {
	if n < 1 {
		n = 1
	}
	e.mu.Lock()
	e.maxParallel = n
	e.mu.Unlock()
}

// IsRunning reports whether a processing run is active
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Archive exposes the download archive for Reset bookkeeping
func (e *Engine) Archive() *Archive {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.archive
}

// Start begins processing Pending items in queue order. The run drains the
// queue and stops on its own; Start while running is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.running = true
	e.cancel = cancel
	workers := e.maxParallel
	e.mu.Unlock()

	run := &runState{skip: make(map[string]bool)}

	e.logf(LevelInfo, "Queue processing started")
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.workerLoop(ctx, run)
		}()
	}

	go func() {
		e.wg.Wait()
		e.mu.Lock()
		e.running = false
		e.cancel = nil
		e.mu.Unlock()
		e.logf(LevelInfo, "Queue processing finished")
	}()
}

// Stop requests cancellation. It is honored at the next safe checkpoint:
// between items, or at a progress boundary during an in-flight download.
// Interrupted items revert to Pending.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		e.logf(LevelInfo, "Stop requested")
		cancel()
	}
}

// Wait blocks until the current run finishes
func (e *Engine) Wait() {
	e.wg.Wait()
}

// runState carries per-run bookkeeping shared by the workers
type runState struct {
	mu   sync.Mutex
	skip map[string]bool
}

func (r *runState) markSkipped(id string) {
	r.mu.Lock()
	r.skip[id] = true
	r.mu.Unlock()
}

func (r *runState) skipSet() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.skip))
	for id := range r.skip {
		out[id] = true
	}
	return out
}

// workerLoop claims and processes items until the queue drains or the run is
// cancelled
func (e *Engine) workerLoop(ctx context.Context, run *runState) {
	for {
		if ctx.Err() != nil {
			return
		}
		item, ok := e.store.ClaimNextExcept(run.skipSet())
		if !ok {
			return
		}
		e.publishStateChange(item.ID, model.StatusPending, model.StatusResolving)
		e.processItem(ctx, run, item)
	}
}

// processItem runs the full pipeline for one claimed item. Every exit path
// leaves the item in a well-defined state; failures become transitions plus a
// log event, never a halted queue.
func (e *Engine) processItem(ctx context.Context, run *runState, item model.QueueItem) {
	info, err := e.probe(ctx, item)
	if err != nil {
		if ctx.Err() != nil {
			e.revert(item.ID, model.StatusResolving)
			return
		}
		// Retryable on the next Start; skipped for the rest of this run
		run.markSkipped(item.ID)
		e.store.RevertToPending(item.ID)
		e.logf(LevelWarning, "Metadata lookup failed for %s: %v", item.SourceURL, err)
		return
	}

	if info.IsPlaylist {
		e.expandPlaylist(item, info)
		return
	}

	e.store.UpdateResolved(item.ID, info.VideoID, info.Title, info.DurationSec)

	e.mu.Lock()
	forceSabr := e.forceSabr
	archive := e.archive
	destDir := e.downloadDir
	e.mu.Unlock()

	res := e.resolver.Resolve(info, item.RequestedFormat, forceSabr)
	if res.Blocked {
		e.finishBlocked(item, res.BlockErr)
		return
	}
	e.store.SetEffectiveFormat(item.ID, res.Effective)
	if res.Adjusted {
		e.logf(LevelWarning, "Quality adjusted for %s: requested %s, using %s",
			item.GetDisplayTitle(), item.RequestedFormat, res.Effective)
	}

	if info.VideoID != "" && archive.Contains(info.VideoID) {
		e.transition(item.ID, model.StatusResolving, model.StatusSkipped, "already downloaded")
		e.logf(LevelInfo, "Skipping %s: already in download archive", info.Title)
		e.snapshot()
		return
	}

	if err := e.transitionErr(item.ID, model.StatusResolving, model.StatusDownloading, ""); err != nil {
		return
	}

	result, effective, err := e.fetchWithFallback(ctx, item, res.Effective, destDir)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), ctx.Err() != nil:
			e.revert(item.ID, model.StatusDownloading)
		case IsAgeRestrictedError(err):
			e.transition(item.ID, model.StatusDownloading, model.StatusAgeRestricted, err.Error())
			e.snapshot()
		case IsForbiddenError(err):
			e.transition(item.ID, model.StatusDownloading, model.StatusQualityBlocked, err.Error())
			e.snapshot()
		default:
			e.transition(item.ID, model.StatusDownloading, model.StatusFailed, err.Error())
			e.snapshot()
		}
		e.logf(LevelError, "Download failed for %s: %v", item.GetDisplayTitle(), err)
		return
	}
	if effective != res.Effective {
		e.store.SetEffectiveFormat(item.ID, effective)
	}

	if err := e.validate(ctx, result); err != nil {
		e.transition(item.ID, model.StatusDownloading, model.StatusFailed, err.Error())
		e.logf(LevelError, "Validation failed for %s: %v", item.GetDisplayTitle(), err)
		e.snapshot()
		return
	}

	e.store.SetOutputPath(item.ID, result.FilePath)
	e.transition(item.ID, model.StatusDownloading, model.StatusDone, "")
	if info.VideoID != "" {
		if err := archive.Append(info.VideoID); err != nil {
			e.logf(LevelWarning, "Could not update download archive: %v", err)
		}
	}
	e.logf(LevelInfo, "Completed %s", info.Title)
	e.snapshot()
}

// probe runs the rate-limited metadata lookup
func (e *Engine) probe(ctx context.Context, item model.QueueItem) (*model.VideoInfo, error) {
	if err := e.probeLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	info, hit, err := e.cache.Lookup(ctx, item.SourceURL)
	if err != nil {
		return nil, err
	}
	if hit {
		e.logf(LevelDebug, "Metadata cache hit for %s", item.SourceURL)
	}
	return info, nil
}

// expandPlaylist replaces a playlist placeholder with one Pending item per
// member, preserving the requested format.
func (e *Engine) expandPlaylist(item model.QueueItem, info *model.VideoInfo) {
	e.logf(LevelInfo, "Expanding playlist %s (%d items)", item.SourceURL, len(info.Entries))
	for _, entry := range info.Entries {
		added := e.store.Add(entry.URL, item.RequestedFormat)
		e.store.UpdateResolved(added.ID, entry.VideoID, entry.Title, 0)
		e.publish(Event{Type: EventItemAdded, ItemID: added.ID})
	}
	e.store.Remove([]string{item.ID})
	e.snapshot()
}

// fetchWithFallback runs the download, walking the quality ladder downward
// after 403 rejections. Returns the result and the format that finally worked.
func (e *Engine) fetchWithFallback(ctx context.Context, item model.QueueItem, spec model.FormatSpec, destDir string) (*FetchResult, model.FormatSpec, error) {
	onProgress := func(percent int, speedBps float64, etaSec int) {
		e.publish(Event{
			Type:     EventProgress,
			ItemID:   item.ID,
			Percent:  percent,
			SpeedBps: speedBps,
			ETASec:   etaSec,
		})
	}

	req := FetchRequest{URL: item.SourceURL, Format: spec, DestinationDir: destDir}
	result, err := e.fetcher.Fetch(ctx, req, onProgress)
	if err == nil {
		return result, spec, nil
	}
	if !IsForbiddenError(err) || spec.AudioOnly {
		return nil, spec, err
	}

	// 403 on a video format: retry each lower tier once
	lastErr := err
	for _, fallback := range forbiddenFallbackLadder {
		if ctx.Err() != nil {
			return nil, spec, ctx.Err()
		}
		if !fallback.AudioOnly && fallback.Quality.Rank() <= spec.Quality.Rank() {
			continue
		}
		e.logf(LevelWarning, "Got 403 for %s, retrying at %s", item.GetDisplayTitle(), fallback)
		req.Format = fallback
		result, err = e.fetcher.Fetch(ctx, req, onProgress)
		if err == nil {
			return result, fallback, nil
		}
		lastErr = err
		if !IsForbiddenError(err) {
			return nil, fallback, err
		}
	}
	return nil, spec, lastErr
}

// validate checks the downloaded artifact: non-empty, and when ffprobe is
// installed, a container matching the file extension.
func (e *Engine) validate(ctx context.Context, result *FetchResult) error {
	if result == nil || result.FilePath == "" {
		return fmt.Errorf("%w: no output file reported", ErrValidation)
	}
	stat, err := os.Stat(result.FilePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if stat.Size() == 0 {
		return fmt.Errorf("%w: empty file %s", ErrValidation, result.FilePath)
	}

	if platform.FFprobeAvailable() {
		// A probe that cannot run is inconclusive; only a confirmed
		// container mismatch fails validation
		probe, err := platform.ProbeFile(ctx, result.FilePath)
		if err == nil && !probe.MatchesExtension(result.FilePath) {
			return fmt.Errorf("%w: container %s does not match extension of %s",
				ErrValidation, probe.Container, result.FilePath)
		}
	}
	return nil
}

// finishBlocked records a policy-level block from the resolver
func (e *Engine) finishBlocked(item model.QueueItem, reason error) {
	status := model.StatusQualityBlocked
	if errors.Is(reason, resolve.ErrAgeRestricted) {
		status = model.StatusAgeRestricted
	}
	detail := ""
	if reason != nil {
		detail = reason.Error()
	}
	e.transition(item.ID, model.StatusResolving, status, detail)
	e.logf(LevelWarning, "Blocked %s: %s", item.GetDisplayTitle(), detail)
	e.snapshot()
}

// revert returns an interrupted item to Pending and publishes the change
func (e *Engine) revert(id string, from model.ItemStatus) {
	e.store.RevertToPending(id)
	e.publishStateChange(id, from, model.StatusPending)
}

func (e *Engine) transition(id string, from, to model.ItemStatus, detail string) {
	_ = e.transitionErr(id, from, to, detail)
}

func (e *Engine) transitionErr(id string, from, to model.ItemStatus, detail string) error {
	if err := e.store.SetStatus(id, to, detail); err != nil {
		e.logf(LevelWarning, "State transition rejected: %v", err)
		return err
	}
	e.publishStateChange(id, from, to)
	return nil
}

func (e *Engine) publishStateChange(id string, from, to model.ItemStatus) {
	e.publish(Event{Type: EventItemStateChanged, ItemID: id, OldStatus: from, NewStatus: to})
}

// snapshot triggers a persistence snapshot and announces it
func (e *Engine) snapshot() {
	e.mu.Lock()
	persist := e.persist
	e.mu.Unlock()

	if persist != nil {
		persist()
		e.publish(Event{Type: EventSnapshotSaved})
	}
}

// logf emits a log event for the UI console and mirrors nothing elsewhere;
// the subscriber decides what to show for the configured level
func (e *Engine) logf(level string, format string, args ...any) {
	e.publish(Event{
		Type:    EventLogMessage,
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// publish sends without blocking, dropping the oldest buffered event when the
// channel is full
func (e *Engine) publish(event Event) {
	for {
		select {
		case e.events <- event:
			return
		default:
			select {
			case <-e.events:
			default:
			}
		}
	}
}
