package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/chunker"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driving"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/facets"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/logger"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/querynorm"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/vector"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexOrchestrator = (*IndexingService)(nil)

// embedWorkers bounds concurrent embedding batches.
const embedWorkers = 4

// embedBatchesPerSecond throttles requests to the embedding service.
const embedBatchesPerSecond = 5

// maxLegalTerms caps extracted terms per case.
const maxLegalTerms = 64

// IndexingService builds index snapshots from the case store and swaps
// them into the holder. Builds run one at a time.
type IndexingService struct {
	caseStore  driven.CaseStore
	indexStore driven.IndexStore
	embedding  driven.EmbeddingService
	holder     *index.Holder
	normaliser *querynorm.Normaliser
	cfg        domain.IndexingConfig

	building atomic.Bool
	limiter  *rate.Limiter
}

// NewIndexingService creates an indexing service. The embedding
// service is optional (can be nil); chunks are then indexed without
// vectors and only keyword search works.
func NewIndexingService(
	caseStore driven.CaseStore,
	indexStore driven.IndexStore,
	embedding driven.EmbeddingService,
	holder *index.Holder,
	normaliser *querynorm.Normaliser,
	cfg domain.IndexingConfig,
) *IndexingService {
	return &IndexingService{
		caseStore:  caseStore,
		indexStore: indexStore,
		embedding:  embedding,
		holder:     holder,
		normaliser: normaliser,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(embedBatchesPerSecond), 1),
	}
}

// Build runs a full or incremental build. Incremental builds reuse
// chunks and vectors of cases whose content hashes are unchanged; a
// forced build re-processes everything. The new snapshot replaces the
// active one atomically only after every stage succeeded.
func (s *IndexingService) Build(ctx context.Context, opts driving.BuildOptions) (*domain.IndexingLog, error) {
	if !s.building.CompareAndSwap(false, true) {
		return nil, domain.ErrBuildInProgress
	}
	defer s.building.Store(false)

	logger.Section("Index Build")
	buildLog := &domain.IndexingLog{
		BuildID:   uuid.NewString(),
		Operation: domain.BuildFull,
		StartedAt: time.Now(),
	}

	prev := s.holder.Current()
	if prev != nil && !opts.Force && prev.Config.Version() == s.cfg.Version() {
		buildLog.Operation = domain.BuildIncremental
	}
	logger.Info("Build %s: %s", buildLog.BuildID, buildLog.Operation)

	records, err := s.caseStore.ListCases(ctx)
	if err != nil {
		return s.finishBuild(ctx, buildLog, fmt.Errorf("list cases: %w", err))
	}
	total, err := s.caseStore.CountCases(ctx)
	if err != nil {
		return s.finishBuild(ctx, buildLog, fmt.Errorf("count cases: %w", err))
	}
	logger.Debug("Building from %d cases", len(records))

	removed, err := s.removeStale(ctx, records)
	if err != nil {
		return s.finishBuild(ctx, buildLog, err)
	}
	if removed > 0 {
		logger.Info("Removed %d deleted cases from the index", removed)
	}

	ch := chunker.FromConfig(s.cfg)
	cases := make(map[int64]*domain.SearchMetadata, len(records))
	chunksByCase := make(map[int64][]domain.DocumentChunk, len(records))
	var toEmbed []*domain.DocumentChunk

	changed := s.changedSince(ctx, prev, buildLog.Operation)

	for i := range records {
		rec := &records[i]

		if changed != nil {
			if _, touched := changed[rec.ID]; !touched {
				if old := prev.Metadata(rec.ID); old != nil {
					cases[rec.ID] = old
					chunksByCase[rec.ID] = prevChunks(prev, rec.ID)
					continue
				}
			}
		}

		meta := s.buildMetadata(rec)

		if reused := reusable(prev, meta, buildLog.Operation); reused != nil {
			cases[meta.CaseID] = meta
			chunksByCase[meta.CaseID] = reused
			continue
		}

		chunks := ch.Chunk(rec)
		for j := range chunks {
			toEmbed = append(toEmbed, &chunks[j])
		}
		cases[meta.CaseID] = meta
		chunksByCase[meta.CaseID] = chunks
		buildLog.CasesProcessed++
		buildLog.ChunksCreated += len(chunks)
	}
	logger.Debug("Processed %d cases, %d chunks to embed, %d cases reused",
		buildLog.CasesProcessed, len(toEmbed), len(records)-buildLog.CasesProcessed)

	dimension, skipped, err := s.embedChunks(ctx, toEmbed)
	if err != nil {
		return s.finishBuild(ctx, buildLog, err)
	}
	buildLog.ChunksSkipped = skipped
	buildLog.VectorsCreated = len(toEmbed) - skipped
	if dimension == 0 && prev != nil {
		dimension = prev.Dimension
	}

	snap := assembleSnapshot(prev, s.cfg, cases, chunksByCase, dimension, total)

	if err := s.persist(ctx, snap, chunksByCase); err != nil {
		return s.finishBuild(ctx, buildLog, err)
	}

	s.holder.Swap(snap)
	logger.Info("Snapshot v%d active: %d cases, %d chunks, %d vectors",
		snap.Version, len(snap.Cases), len(snap.Chunks), snap.VectorCount())

	return s.finishBuild(ctx, buildLog, nil)
}

// Restore rebuilds the in-memory snapshot from persisted artefacts so
// a fresh process can search without re-indexing.
func (s *IndexingService) Restore(ctx context.Context) error {
	logger.Section("Index Restore")

	metas, err := s.indexStore.ListMetadata(ctx)
	if err != nil {
		return fmt.Errorf("list metadata: %w", err)
	}
	if len(metas) == 0 {
		logger.Debug("No persisted index to restore")
		return nil
	}
	chunks, err := s.indexStore.ListChunks(ctx)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}
	total, err := s.caseStore.CountCases(ctx)
	if err != nil {
		return fmt.Errorf("count cases: %w", err)
	}

	cases := make(map[int64]*domain.SearchMetadata, len(metas))
	for i := range metas {
		cases[metas[i].CaseID] = &metas[i]
	}
	chunksByCase := make(map[int64][]domain.DocumentChunk)
	dimension := 0
	for _, c := range chunks {
		if dimension == 0 && len(c.Embedding) > 0 {
			dimension = len(c.Embedding)
		}
		chunksByCase[c.CaseID] = append(chunksByCase[c.CaseID], c)
	}

	snap := assembleSnapshot(s.holder.Current(), s.cfg, cases, chunksByCase, dimension, total)
	s.holder.Swap(snap)
	logger.Info("Restored snapshot v%d: %d cases, %d chunks", snap.Version, len(cases), len(chunks))
	return nil
}

// Status reports the active snapshot's health.
func (s *IndexingService) Status(ctx context.Context) (*domain.IndexStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.holder.Current()
	if snap == nil {
		return &domain.IndexStatus{}, nil
	}
	st := snap.Status()
	return &st, nil
}

// buildMetadata derives a case's search metadata: normalised fields,
// legal terms extracted from the judgment text and change-detection
// hashes.
func (s *IndexingService) buildMetadata(rec *domain.CaseRecord) *domain.SearchMetadata {
	norm := s.normaliser.NormaliseText
	meta := &domain.SearchMetadata{
		CaseID:          rec.ID,
		CaseNumber:      norm(rec.CaseNumber),
		Title:           norm(rec.Title),
		Parties:         norm(strings.Join(rec.Parties, "|")),
		Court:           norm(rec.Court),
		Status:          norm(rec.Status),
		Judge:           norm(rec.Judge),
		CaseType:        norm(rec.CaseType),
		InstitutionDate: rec.InstitutionDate,
		DecisionDate:    rec.DecisionDate,
		IsIndexed:       true,
		UpdatedAt:       time.Now(),
	}

	for _, c := range s.normaliser.ExtractCitations(norm(rec.Text)) {
		if !c.Confident() {
			continue
		}
		meta.LegalTerms = append(meta.LegalTerms, c.Canonical)
		if len(meta.LegalTerms) >= maxLegalTerms {
			break
		}
	}
	sort.Strings(meta.LegalTerms)

	meta.ContentHash = digest(meta.CaseNumber, meta.Title, meta.Parties, meta.Court,
		meta.Status, meta.Judge, meta.CaseType)
	meta.TextHash = digest(rec.Text)
	return meta
}

// removeStale deletes persisted artefacts of cases no longer present
// in the case store, so a later Restore cannot resurrect them.
func (s *IndexingService) removeStale(ctx context.Context, records []domain.CaseRecord) (int, error) {
	metas, err := s.indexStore.ListMetadata(ctx)
	if err != nil {
		return 0, fmt.Errorf("list persisted metadata: %w", err)
	}
	live := make(map[int64]struct{}, len(records))
	for i := range records {
		live[records[i].ID] = struct{}{}
	}
	removed := 0
	for i := range metas {
		if _, ok := live[metas[i].CaseID]; ok {
			continue
		}
		if err := s.indexStore.DeleteCase(ctx, metas[i].CaseID); err != nil {
			return removed, fmt.Errorf("delete case %d: %w", metas[i].CaseID, err)
		}
		removed++
	}
	return removed, nil
}

// changedSince returns the IDs of cases touched since the last
// successful build, or nil when every case must be re-examined.
// Untouched cases reuse the previous snapshot's metadata and chunks
// without re-deriving content hashes.
func (s *IndexingService) changedSince(ctx context.Context, prev *index.Snapshot, operation string) map[int64]struct{} {
	if operation != domain.BuildIncremental || prev == nil {
		return nil
	}
	last, err := s.indexStore.LastIndexingLog(ctx)
	if err != nil {
		return nil
	}
	recent, err := s.caseStore.ListCasesUpdatedSince(ctx, last.StartedAt)
	if err != nil {
		logger.Warn("Listing updated cases failed, re-examining all: %v", err)
		return nil
	}
	set := make(map[int64]struct{}, len(recent))
	for i := range recent {
		set[recent[i].ID] = struct{}{}
	}
	return set
}

// reusable returns the previous snapshot's chunks for the case when an
// incremental build can keep them: same metadata and same text.
func reusable(prev *index.Snapshot, meta *domain.SearchMetadata, operation string) []domain.DocumentChunk {
	if operation != domain.BuildIncremental || prev == nil {
		return nil
	}
	old := prev.Metadata(meta.CaseID)
	if old == nil || old.ContentHash != meta.ContentHash || old.TextHash != meta.TextHash {
		return nil
	}
	return prevChunks(prev, meta.CaseID)
}

// prevChunks copies a case's chunks out of the previous snapshot.
func prevChunks(prev *index.Snapshot, caseID int64) []domain.DocumentChunk {
	ids := prev.ChunksByCase[caseID]
	out := make([]domain.DocumentChunk, 0, len(ids))
	for _, id := range ids {
		out = append(out, *prev.Chunks[id])
	}
	return out
}

// embedChunks fills chunk embeddings in place with a bounded worker
// pool. A failed batch skips its chunks instead of failing the build;
// a dimension disagreement fails the build, since mixed dimensions
// would poison the vector scan.
func (s *IndexingService) embedChunks(ctx context.Context, chunks []*domain.DocumentChunk) (int, int, error) {
	if s.embedding == nil || len(chunks) == 0 {
		return 0, 0, nil
	}

	batchSize := s.cfg.EmbeddingBatchSize
	var mu sync.Mutex
	dimension := 0
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}
			vectors, err := s.embedding.EmbedBatch(gctx, texts)
			if err != nil {
				logger.Warn("Embedding batch failed, skipping %d chunks: %v", len(batch), err)
				mu.Lock()
				skipped += len(batch)
				mu.Unlock()
				return nil
			}
			for i, v := range vectors {
				mu.Lock()
				if dimension == 0 {
					dimension = len(v)
				}
				if len(v) != dimension {
					mu.Unlock()
					return fmt.Errorf("%w: chunk %s has %d, expected %d",
						domain.ErrDimensionMismatch, batch[i].ID, len(v), dimension)
				}
				mu.Unlock()
				vector.Normalise(v)
				batch[i].Embedding = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return dimension, skipped, nil
}

// assembleSnapshot freezes the build output into an immutable snapshot.
func assembleSnapshot(
	prev *index.Snapshot,
	cfg domain.IndexingConfig,
	cases map[int64]*domain.SearchMetadata,
	chunksByCase map[int64][]domain.DocumentChunk,
	dimension, totalCases int,
) *index.Snapshot {
	snap := &index.Snapshot{
		Version:       1,
		BuiltAt:       time.Now(),
		Config:        cfg,
		Dimension:     dimension,
		Cases:         cases,
		Chunks:        make(map[string]*domain.DocumentChunk),
		ChunksByCase:  make(map[int64][]string),
		FacetTerms:    make(map[domain.FacetType][]domain.FacetTerm),
		CaseCentroids: make(map[int64][]float32),
		TotalCases:    totalCases,
	}
	if prev != nil {
		snap.Version = prev.Version + 1
	}

	snap.Order = make([]int64, 0, len(cases))
	for id := range cases {
		snap.Order = append(snap.Order, id)
	}
	sort.Slice(snap.Order, func(i, j int) bool { return snap.Order[i] < snap.Order[j] })

	texts := make(map[int64]string, len(cases))
	for _, caseID := range snap.Order {
		chunks := chunksByCase[caseID]
		ids := make([]string, 0, len(chunks))
		var centroid []float32
		var caseText strings.Builder
		vectors := 0
		for i := range chunks {
			c := &chunks[i]
			snap.Chunks[c.ID] = c
			ids = append(ids, c.ID)
			caseText.WriteString(c.Text)
			caseText.WriteByte(' ')
			if len(c.Embedding) > 0 {
				if centroid == nil {
					centroid = make([]float32, len(c.Embedding))
				}
				for j, x := range c.Embedding {
					centroid[j] += x
				}
				vectors++
			}
		}
		snap.ChunksByCase[caseID] = ids
		texts[caseID] = caseText.String()
		if vectors > 0 {
			for j := range centroid {
				centroid[j] /= float32(vectors)
			}
			vector.Normalise(centroid)
			snap.CaseCentroids[caseID] = centroid
		}

		for dim, terms := range facets.GroupTerms(facets.TermsForCase(cases[caseID])) {
			snap.FacetTerms[dim] = append(snap.FacetTerms[dim], terms...)
		}
	}

	snap.Postings = index.BuildPostings(cases, texts)
	return snap
}

// persist writes the snapshot's artefacts through the index store.
// Full builds rewrite every case; incremental builds do too, since
// reused chunks are cheap to upsert and the store stays authoritative.
func (s *IndexingService) persist(ctx context.Context, snap *index.Snapshot, chunksByCase map[int64][]domain.DocumentChunk) error {
	for _, caseID := range snap.Order {
		if err := s.indexStore.SaveMetadata(ctx, snap.Cases[caseID]); err != nil {
			return fmt.Errorf("save metadata for case %d: %w", caseID, err)
		}
		if err := s.indexStore.SaveChunks(ctx, caseID, chunksByCase[caseID]); err != nil {
			return fmt.Errorf("save chunks for case %d: %w", caseID, err)
		}
		if err := s.indexStore.SaveFacetTerms(ctx, caseID, facets.TermsForCase(snap.Cases[caseID])); err != nil {
			return fmt.Errorf("save facet terms for case %d: %w", caseID, err)
		}
	}
	return nil
}

// finishBuild stamps the log, persists it and returns it with the
// original error, if any.
func (s *IndexingService) finishBuild(ctx context.Context, buildLog *domain.IndexingLog, buildErr error) (*domain.IndexingLog, error) {
	buildLog.FinishedAt = time.Now()
	buildLog.Success = buildErr == nil
	if buildErr != nil {
		buildLog.Message = buildErr.Error()
		logger.Warn("Build %s failed: %v", buildLog.BuildID, buildErr)
	} else {
		buildLog.Message = fmt.Sprintf("%d cases, %d chunks, %d vectors, %d skipped",
			buildLog.CasesProcessed, buildLog.ChunksCreated, buildLog.VectorsCreated, buildLog.ChunksSkipped)
		logger.Info("Build %s finished in %s", buildLog.BuildID, buildLog.Duration().Round(time.Millisecond))
	}
	if err := s.indexStore.SaveIndexingLog(ctx, buildLog); err != nil {
		logger.Warn("Saving build log failed: %v", err)
	}
	if buildErr != nil {
		return nil, buildErr
	}
	return buildLog, nil
}

func digest(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(h[:])
}
