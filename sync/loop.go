// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sync

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingestion"
	"github.com/poiesic/recollect/storage"
)

const (
	// DefaultInterval is the wall-clock delay between poll cycles.
	DefaultInterval = 5 * time.Minute

	// DefaultBatchSize is the maximum number of messages taken off the
	// buffer per cycle.
	DefaultBatchSize = 50

	// DefaultMinBatchMessages is the minimum buffered message count
	// before a batch is ingested; smaller counts stay buffered.
	DefaultMinBatchMessages = 3

	// DefaultPageLimit is the maximum messages requested per page fetch.
	DefaultPageLimit = 100

	// DefaultFetchTimeout bounds a single page fetch.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultIngestTimeout bounds a single batch ingestion.
	DefaultIngestTimeout = 2 * time.Minute
)

// Ingestor accepts a conversation payload for processing and persistence.
// Satisfied by ingestion.Pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, payload ingestion.ConversationPayload) (*core.Conversation, error)
}

// Loop polls one external source channel on a fixed interval and feeds
// batches of filtered messages to the ingestor. It is the only writer of
// the channel's sync cursor.
type Loop struct {
	channel  string
	source   MessageSource
	resolver NameResolver
	ingestor Ingestor
	cursors  storage.CursorRepository
	buffer   *Buffer

	interval         time.Duration
	batchSize        int
	minBatchMessages int
	pageLimit        int
	fetchTimeout     time.Duration
	ingestTimeout    time.Duration

	pool   *ants.Pool
	wg     stdsync.WaitGroup
	mu     stdsync.Mutex
	closed bool

	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the delay between poll cycles.
func WithInterval(interval time.Duration) Option {
	return func(l *Loop) {
		if interval > 0 {
			l.interval = interval
		}
	}
}

// WithBatchSize sets the maximum messages per ingested batch.
func WithBatchSize(size int) Option {
	return func(l *Loop) {
		if size > 0 {
			l.batchSize = size
		}
	}
}

// WithMinBatchMessages sets the minimum buffered message count required
// before a batch is ingested.
func WithMinBatchMessages(minimum int) Option {
	return func(l *Loop) {
		if minimum > 0 {
			l.minBatchMessages = minimum
		}
	}
}

// WithPageLimit sets the maximum messages requested per page fetch.
func WithPageLimit(limit int) Option {
	return func(l *Loop) {
		if limit > 0 {
			l.pageLimit = limit
		}
	}
}

// WithFetchTimeout bounds each page fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(l *Loop) {
		if timeout > 0 {
			l.fetchTimeout = timeout
		}
	}
}

// WithIngestTimeout bounds each batch ingestion.
func WithIngestTimeout(timeout time.Duration) Option {
	return func(l *Loop) {
		if timeout > 0 {
			l.ingestTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// NewLoop creates a sync loop for one source channel. A nil resolver
// leaves author identifiers unresolved.
func NewLoop(channel string, source MessageSource, resolver NameResolver, ingestor Ingestor, cursors storage.CursorRepository, opts ...Option) (*Loop, error) {
	if strings.TrimSpace(channel) == "" {
		return nil, ErrChannelRequired
	}
	if source == nil {
		return nil, ErrSourceRequired
	}
	if ingestor == nil {
		return nil, ErrIngestorRequired
	}
	if cursors == nil {
		return nil, ErrCursorsRequired
	}
	if resolver == nil {
		resolver = identityResolver{}
	}

	l := &Loop{
		channel:          channel,
		source:           source,
		resolver:         resolver,
		ingestor:         ingestor,
		cursors:          cursors,
		buffer:           NewBuffer(),
		interval:         DefaultInterval,
		batchSize:        DefaultBatchSize,
		minBatchMessages: DefaultMinBatchMessages,
		pageLimit:        DefaultPageLimit,
		fetchTimeout:     DefaultFetchTimeout,
		ingestTimeout:    DefaultIngestTimeout,
		logger:           slog.Default().With("component", "sync-loop"),
	}
	for _, opt := range opts {
		opt(l)
	}

	// One worker: batches from the same channel never ingest concurrently
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync pool: %w", err)
	}
	l.pool = pool

	return l, nil
}

// Run polls until ctx is canceled. The first cycle runs immediately; the
// in-flight cycle always completes before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("sync loop started", "channel", l.channel, "interval", l.interval)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	if err := l.RunCycle(ctx); err != nil {
		l.logger.Error("sync cycle failed", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("sync loop stopping", "channel", l.channel)
			return nil
		case <-ticker.C:
			if err := l.RunCycle(ctx); err != nil {
				l.logger.Error("sync cycle failed", "err", err)
			}
		}
	}
}

// RunCycle executes one fetch/filter/batch/ingest/advance pass. A failed
// page fetch is logged and skipped, not returned; the cursor then stays
// put and the page is retried next cycle. Cursor persistence failures are
// returned since a stuck cursor would re-ingest pages indefinitely.
func (l *Loop) RunCycle(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.mu.Unlock()

	log := l.logger.With("cycle", uuid.NewString())

	cursor, err := l.cursors.GetCursor(ctx, l.channel)
	if err != nil {
		return fmt.Errorf("failed to read cursor: %w", err)
	}
	afterToken := ""
	if cursor != nil {
		afterToken = cursor.LastSeen
	}

	fetchCtx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	page, err := l.source.FetchPage(fetchCtx, l.channel, afterToken, l.pageLimit)
	cancel()
	if err != nil {
		log.Warn("page fetch failed, skipping cycle", "after", afterToken, "err", err)
		return nil
	}
	if page == nil || len(page.Messages) == 0 {
		log.Debug("no new messages", "channel", l.channel)
		return nil
	}

	channelName, filtered := l.filterPage(ctx, log, page)
	l.buffer.Append(filtered...)
	log.Debug("page filtered", "fetched", len(page.Messages), "kept", len(filtered), "buffered", l.buffer.Len())

	if l.buffer.Len() >= l.minBatchMessages {
		batch := l.buffer.TakeBatch(l.batchSize)
		l.submitBatch(ctx, log, channelName, batch)
	} else if l.buffer.Len() > 0 {
		log.Info("buffered messages below batch minimum, holding",
			"buffered", l.buffer.Len(), "minimum", l.minBatchMessages)
	}

	if page.LastToken != "" && page.LastToken != afterToken {
		next := &core.SyncCursor{Channel: l.channel, LastSeen: page.LastToken}
		if err := l.cursors.PutCursor(ctx, next); err != nil {
			return fmt.Errorf("failed to persist cursor: %w", err)
		}
		log.Debug("cursor advanced", "last_seen", page.LastToken)
	}

	return nil
}

// filterPage drops system and empty messages and resolves author names,
// caching lookups for the lifetime of the page.
func (l *Loop) filterPage(ctx context.Context, log *slog.Logger, page *Page) (string, []core.Message) {
	resolver := newPageResolver(l.resolver, log)
	channelName := l.channel

	filtered := make([]core.Message, 0, len(page.Messages))
	for _, raw := range page.Messages {
		if raw.ChannelName != "" {
			channelName = raw.ChannelName
		}
		if raw.Kind != KindDefault {
			continue
		}
		contents := strings.TrimSpace(raw.Contents)
		if contents == "" {
			continue
		}

		author := core.AuthorTypeHuman
		if raw.AuthorIsBot {
			author = core.AuthorTypeAI
		}

		filtered = append(filtered, core.Message{
			AuthorName: resolver.resolve(ctx, raw.AuthorId),
			Author:     author,
			Contents:   contents,
			Timestamp:  raw.Timestamp,
		})
	}
	return channelName, filtered
}

// submitBatch hands one batch to the worker pool. Ingestion failures are
// logged, never propagated: the cursor advances regardless.
func (l *Loop) submitBatch(ctx context.Context, log *slog.Logger, channelName string, batch []core.Message) {
	if len(batch) == 0 {
		return
	}

	slices.SortStableFunc(batch, func(a, b core.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	first := batch[0].Timestamp.UTC()
	last := batch[len(batch)-1].Timestamp.UTC()
	payload := ingestion.ConversationPayload{
		ScenarioTitle: fmt.Sprintf("%s %s", channelName, first.Format("2006-01-02 15:04")),
		OriginalTitle: fmt.Sprintf("%s from %s to %s", channelName,
			first.Format(time.RFC3339), last.Format(time.RFC3339)),
		Messages: batch,
	}

	// The ingestion outlives the cycle but not loop shutdown: Close waits
	baseCtx := context.WithoutCancel(ctx)

	l.wg.Add(1)
	err := l.pool.Submit(func() {
		defer l.wg.Done()

		ingestCtx, cancel := context.WithTimeout(baseCtx, l.ingestTimeout)
		defer cancel()

		conversation, err := l.ingestor.Ingest(ingestCtx, payload)
		if err != nil {
			log.Error("batch ingestion failed", "messages", len(batch), "err", err)
			return
		}
		log.Info("ingested batch", "conversation_id", conversation.Id, "messages", len(batch))
	})
	if err != nil {
		l.wg.Done()
		log.Error("failed to submit batch", "messages", len(batch), "err", err)
	}
}

// Buffered reports the number of messages held for future batches.
func (l *Loop) Buffered() int {
	return l.buffer.Len()
}

// Close waits for in-flight ingestions and releases the worker pool.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.wg.Wait()
	l.pool.Release()
	return nil
}

// identityResolver uses raw author identifiers as display names.
type identityResolver struct{}

func (identityResolver) ResolveName(_ context.Context, authorId string) (string, error) {
	return authorId, nil
}
