package importer

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Rex818/Photo666-sub001/media"
)

// PhaseTimings records how long each stage of a batch import took.
type PhaseTimings struct {
	Scan      string `json:"scan"`
	Hash      string `json:"hash"`
	Classify  string `json:"classify"`
	Import    string `json:"import"`
	Reconcile string `json:"reconcile"`
	Associate string `json:"associate"`
	Total     string `json:"total"`
}

// BatchSummary extends the directory summary with per-phase timings.
type BatchSummary struct {
	Summary
	Timings PhaseTimings `json:"timings"`
}

type hashedFile struct {
	path string
	hash string
	size int64
}

// ImportDirectoryBatch imports a directory through a phased pipeline: scan
// everything first, hash concurrently, classify all hashes against the
// catalog in batched queries, then fan the new files out to import workers
// and the known ones to reconcile workers. Context cancellation stops
// scheduling further work; files already in flight finish and the partial
// tallies are returned alongside the context error.
func (i *Importer) ImportDirectoryBatch(ctx context.Context, root string, recursive bool, albumID uint, tagOpts *TagOptions) (*BatchSummary, error) {
	start := time.Now()
	summary := &BatchSummary{Summary: Summary{AlbumID: albumID}}

	// phase 1: scan
	scanStart := time.Now()
	paths, err := i.scanner.ScanDirectory(root, recursive)
	if err != nil {
		return nil, err
	}
	summary.Timings.Scan = time.Since(scanStart).String()

	if len(paths) == 0 {
		i.log.WithField("directory", root).Info("no supported image files found")
		summary.Timings.Total = time.Since(start).String()
		return summary, nil
	}
	summary.TotalProcessed = len(paths)

	i.log.WithFields(logrus.Fields{
		"directory": root,
		"files":     len(paths),
		"workers":   i.workers,
	}).Info("starting batch import")

	var imported, skipped, errCount int64

	// phase 2: hash concurrently
	hashStart := time.Now()
	hashed := i.hashFiles(ctx, paths, &errCount)
	summary.Timings.Hash = time.Since(hashStart).String()

	// phase 3: classify against the catalog in batched queries
	classifyStart := time.Now()
	hashes := make([]string, 0, len(hashed))
	for _, hf := range hashed {
		hashes = append(hashes, hf.hash)
	}
	existing, err := i.photos.FindExistingHashes(hashes)
	if err != nil {
		return nil, err
	}

	// duplicates inside the batch itself: only the first path per unseen
	// hash is an insert candidate, the rest reconcile after it lands
	var toImport, toReconcile []hashedFile
	seen := make(map[string]bool, len(hashed))
	for _, hf := range hashed {
		if _, known := existing[hf.hash]; known || seen[hf.hash] {
			toReconcile = append(toReconcile, hf)
			continue
		}
		seen[hf.hash] = true
		toImport = append(toImport, hf)
	}
	summary.Timings.Classify = time.Since(classifyStart).String()

	i.log.WithFields(logrus.Fields{
		"new":      len(toImport),
		"existing": len(toReconcile),
	}).Info("batch classified")

	collect := newIDCollector()

	// phase 4: import new files, batchSize at a time
	importStart := time.Now()
	for lo := 0; lo < len(toImport); lo += i.batchSize {
		if ctx.Err() != nil {
			break
		}
		hi := lo + i.batchSize
		if hi > len(toImport) {
			hi = len(toImport)
		}
		i.processFiles(ctx, toImport[lo:hi], tagOpts, collect, &imported, &skipped, &errCount)
	}
	summary.Timings.Import = time.Since(importStart).String()

	// phase 5: reconcile files whose content the catalog already has
	reconcileStart := time.Now()
	i.processFiles(ctx, toReconcile, nil, collect, &imported, &skipped, &errCount)
	summary.Timings.Reconcile = time.Since(reconcileStart).String()

	summary.Imported = int(imported)
	summary.Skipped = int(skipped)
	summary.Errors = int(errCount)

	// phase 6: album association
	associateStart := time.Now()
	i.associateAlbum(&summary.Summary, collect.ids())
	summary.Timings.Associate = time.Since(associateStart).String()
	summary.Timings.Total = time.Since(start).String()

	i.log.WithFields(logrus.Fields{
		"directory": root,
		"imported":  summary.Imported,
		"skipped":   summary.Skipped,
		"errors":    summary.Errors,
		"elapsed":   summary.Timings.Total,
	}).Info("batch import finished")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// hashFiles hashes paths across the worker pool. Unreadable files are
// counted as errors and dropped from the result. Scan order is preserved so
// dedup within the batch is deterministic.
func (i *Importer) hashFiles(ctx context.Context, paths []string, errCount *int64) []hashedFile {
	jobs := make(chan int)
	results := make([]hashedFile, len(paths))
	ok := make([]bool, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < i.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				path := paths[idx]
				info, err := os.Stat(path)
				if err != nil {
					i.log.WithField("path", path).WithError(err).Error("file unreadable")
					atomic.AddInt64(errCount, 1)
					continue
				}
				hash, err := media.FileHash(path)
				if err != nil {
					i.log.WithField("path", path).WithError(err).Error("hashing failed")
					atomic.AddInt64(errCount, 1)
					continue
				}
				results[idx] = hashedFile{path: path, hash: hash, size: info.Size()}
				ok[idx] = true
			}
		}()
	}

	for idx := range paths {
		if ctx.Err() != nil {
			break
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	hashed := make([]hashedFile, 0, len(paths))
	for idx := range paths {
		if ok[idx] {
			hashed = append(hashed, results[idx])
		}
	}
	return hashed
}

// processFiles fans files out to the worker pool, tallying outcomes into the
// atomic counters and collecting produced record ids.
func (i *Importer) processFiles(ctx context.Context, files []hashedFile, tagOpts *TagOptions, collect *idCollector, imported, skipped, errCount *int64) {
	if len(files) == 0 {
		return
	}

	jobs := make(chan hashedFile)
	var wg sync.WaitGroup
	for w := 0; w < i.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for hf := range jobs {
				result, err := i.importWithHash(hf.path, hf.hash, hf.size)
				if err != nil {
					i.log.WithField("path", hf.path).WithError(err).Error("import failed")
					atomic.AddInt64(errCount, 1)
					continue
				}
				collect.add(result.PhotoID)
				if result.Imported {
					atomic.AddInt64(imported, 1)
					if tagOpts != nil && tagOpts.ImportTags {
						if _, err := i.ImportTagsForPhoto(result.PhotoID, hf.path, *tagOpts); err != nil {
							i.log.WithField("path", hf.path).WithError(err).Warn("tag import failed")
						}
					}
				} else {
					atomic.AddInt64(skipped, 1)
				}
			}
		}()
	}

	for _, hf := range files {
		if ctx.Err() != nil {
			break
		}
		jobs <- hf
	}
	close(jobs)
	wg.Wait()
}

// idCollector gathers photo ids from concurrent workers, deduplicated.
type idCollector struct {
	mu   sync.Mutex
	seen map[uint]bool
	list []uint
}

func newIDCollector() *idCollector {
	return &idCollector{seen: make(map[uint]bool)}
}

func (c *idCollector) add(id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seen[id] {
		c.seen[id] = true
		c.list = append(c.list, id)
	}
}

func (c *idCollector) ids() []uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint, len(c.list))
	copy(out, c.list)
	return out
}
