package vector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/embercloud/ragstore/internal/embedding"
	"github.com/embercloud/ragstore/internal/observability"
	"github.com/embercloud/ragstore/internal/store"
)

// Engine is the exact-scan vector store: it owns an embedding provider
// and an item store, assigns identifiers, persists records, and answers
// queries by scoring every record in the namespace. The full scan is
// O(n*d) per query; QdrantSearcher covers deployments where that no
// longer holds.
type Engine struct {
	provider embedding.Provider
	store    store.Store
	metrics  *observability.ServiceMetrics
	logger   *slog.Logger
}

// NewEngine creates an Engine. metrics and logger may be nil.
func NewEngine(provider embedding.Provider, st store.Store, metrics *observability.ServiceMetrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		provider: provider,
		store:    st,
		metrics:  metrics,
		logger:   logger,
	}
}

// Upsert resolves ids, embeds each non-blank item, and submits all
// records plus their index entries as one atomic batch. The returned
// count is the number of items actually written: blank items and items
// whose embedding failed are skipped and do not count.
func (e *Engine) Upsert(ctx context.Context, namespace string, items []Item) (int, error) {
	if len(items) == 0 {
		return 0, ErrEmptyBatch
	}

	ctx, span := observability.StartUpsertSpan(ctx, namespace, len(items))
	defer span.End()
	start := time.Now()

	var batch store.Batch
	skipped := 0

	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			skipped++
			continue
		}
		id := ResolveID(item.ID, item.Text)

		vec, err := e.embed(ctx, item.Text)
		if err != nil {
			e.logger.Warn("embedding failed, skipping item",
				"namespace", namespace, "id", id, "error", err)
			skipped++
			continue
		}

		fields, err := EncodeRecord(item.Text, item.Metadata, vec)
		if err != nil {
			e.logger.Warn("record encoding failed, skipping item",
				"namespace", namespace, "id", id, "error", err)
			skipped++
			continue
		}

		batch.Writes = append(batch.Writes, store.Write{
			Namespace: namespace,
			ID:        id,
			Fields:    fields,
		})
	}

	written := len(batch.Writes)
	if written > 0 {
		if err := e.applyBatch(ctx, batch); err != nil {
			observability.RecordError(span, err)
			if e.metrics != nil {
				e.metrics.RecordUpsert(time.Since(start), 0, skipped, err)
			}
			return 0, fmt.Errorf("apply batch: %w", err)
		}
	}

	observability.RecordUpsertResult(span, written, skipped)
	if e.metrics != nil {
		e.metrics.RecordUpsert(time.Since(start), written, skipped, nil)
	}
	return written, nil
}

// Query embeds the text once, scans every record in the namespace, and
// returns the topK highest dot products. Stale index entries and
// malformed records are skipped, never surfaced. Equal scores keep
// their enumeration order (stable sort); the enumeration order itself
// is whatever the store yields.
//
// Stored metadata is intentionally not decoded or returned here: the
// query wire contract carries only id, text, and score, matching other
// readers of the same store.
func (e *Engine) Query(ctx context.Context, namespace, text string, topK int) ([]Result, error) {
	if topK <= 0 {
		return []Result{}, nil
	}

	ctx, span := observability.StartQuerySpan(ctx, namespace, topK)
	defer span.End()
	start := time.Now()

	qvec, err := e.embed(ctx, text)
	if err != nil {
		observability.RecordError(span, err)
		return nil, &EmbedError{Err: err}
	}

	ids, err := e.listIDs(ctx, namespace)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("list namespace %q: %w", namespace, err)
	}

	results := make([]Result, 0, len(ids))
	skipped := 0

	for _, id := range ids {
		fields, err := e.store.GetItem(ctx, namespace, id)
		if err != nil {
			observability.RecordError(span, err)
			return nil, fmt.Errorf("read record %q/%q: %w", namespace, id, err)
		}
		if len(fields) == 0 {
			// Stale index entry: the record is gone, the id is not.
			skipped++
			continue
		}

		raw, ok := fields[FieldVector]
		if !ok || len(raw) != len(qvec)*4 {
			e.logger.Warn("skipping malformed record",
				"namespace", namespace, "id", id, "vector_bytes", len(raw))
			skipped++
			continue
		}
		vec, err := DecodeVector(raw)
		if err != nil {
			skipped++
			continue
		}

		results = append(results, Result{
			ID:    id,
			Text:  string(fields[FieldText]),
			Score: dot(qvec, vec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	observability.RecordQueryResult(span, len(ids), skipped, len(results))
	if e.metrics != nil {
		e.metrics.RecordQuery(time.Since(start), len(ids), skipped)
	}
	return results, nil
}

func (e *Engine) applyBatch(ctx context.Context, batch store.Batch) error {
	ctx, span := observability.StartStoreSpan(ctx, "apply")
	defer span.End()
	err := e.store.Apply(ctx, batch)
	observability.RecordError(span, err)
	return err
}

func (e *Engine) listIDs(ctx context.Context, namespace string) ([]string, error) {
	ctx, span := observability.StartStoreSpan(ctx, "list_ids")
	defer span.End()
	ids, err := e.store.ListIDs(ctx, namespace)
	observability.RecordError(span, err)
	return ids, err
}

func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := observability.StartEmbedSpan(ctx, e.provider.Name())
	defer span.End()
	start := time.Now()

	vec, err := e.provider.Embed(ctx, text)
	observability.RecordError(span, err)
	if e.metrics != nil {
		e.metrics.RecordEmbed(time.Since(start), err)
	}
	return vec, err
}

// dot computes the dot product. Both vectors are unit-normalized, so
// this equals cosine similarity.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
