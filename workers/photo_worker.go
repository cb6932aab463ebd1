package workers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Rex818/Photo666-sub001/media"
	"github.com/Rex818/Photo666-sub001/repository"
)

// TaskType constants
const (
	TaskThumbnail  = "thumbnail"
	TaskAIMetadata = "ai_metadata"
)

type PhotoJob struct {
	PhotoID  uint
	Path     string
	TaskType string
}

// thumbnailGenerator is the slice of the thumbnailer the workers need.
type thumbnailGenerator interface {
	Generate(path string) (string, error)
}

// aiExtractor is the slice of the AI metadata reader the workers need.
type aiExtractor interface {
	Extract(path string) (*media.AIMetadata, error)
}

// PhotoProcessor runs deferred per-photo tasks (thumbnail regeneration, AI
// metadata refresh) on a bounded worker pool. The pending map keyed by
// "photoID:taskType" keeps a task from being queued twice while in flight.
type PhotoProcessor struct {
	JobQueue chan PhotoJob
	Photos   repository.PhotoRepositoryInterface
	Thumbs   thumbnailGenerator
	AI       aiExtractor
	Log      *logrus.Logger
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex
}

func NewPhotoProcessor(photos repository.PhotoRepositoryInterface, thumbs thumbnailGenerator, ai aiExtractor, log *logrus.Logger, queueSize, numWorkers int) *PhotoProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	proc := &PhotoProcessor{
		JobQueue: make(chan PhotoJob, queueSize),
		Photos:   photos,
		Thumbs:   thumbs,
		AI:       ai,
		Log:      log,
		StopChan: make(chan struct{}),
		Pending:  make(map[string]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.WithFields(logrus.Fields{"workers": numWorkers, "queue_size": queueSize}).
		Info("photo processing workers started")
	return proc
}

func (pp *PhotoProcessor) worker(id int) {
	defer pp.Wg.Done()

	pp.Log.WithField("worker", id).Debug("photo worker started")
	for {
		select {
		case job, ok := <-pp.JobQueue:
			if !ok {
				pp.Log.WithField("worker", id).Debug("photo worker stopping: queue closed")
				return
			}

			pendingKey := fmt.Sprintf("%d:%s", job.PhotoID, job.TaskType)
			pp.Log.WithFields(logrus.Fields{
				"worker":   id,
				"photo_id": job.PhotoID,
				"task":     job.TaskType,
			}).Debug("processing job")

			switch job.TaskType {
			case TaskThumbnail:
				pp.processThumbnailTask(job)
			case TaskAIMetadata:
				pp.processAIMetadataTask(job)
			default:
				pp.Log.WithFields(logrus.Fields{"worker": id, "task": job.TaskType}).
					Error("unknown task type")
			}

			pp.Mutex.Lock()
			delete(pp.Pending, pendingKey)
			pp.Mutex.Unlock()

		case <-pp.StopChan:
			pp.Log.WithField("worker", id).Debug("photo worker stopping: stop signal")
			return
		}
	}
}

func (pp *PhotoProcessor) processThumbnailTask(job PhotoJob) {
	if _, err := os.Stat(job.Path); err != nil {
		pp.Log.WithField("photo_id", job.PhotoID).WithError(err).
			Warn("skipping thumbnail task, file unavailable")
		return
	}

	thumbPath, err := pp.Thumbs.Generate(job.Path)
	if err != nil {
		pp.Log.WithField("photo_id", job.PhotoID).WithError(err).
			Error("thumbnail generation failed")
		return
	}

	err = pp.Photos.UpdateFields(job.PhotoID, map[string]interface{}{
		"thumbnail_path": thumbPath,
		"date_modified":  time.Now().Unix(),
	})
	if err != nil {
		pp.Log.WithField("photo_id", job.PhotoID).WithError(err).
			Error("failed to store thumbnail path")
	}
}

func (pp *PhotoProcessor) processAIMetadataTask(job PhotoJob) {
	if _, err := os.Stat(job.Path); err != nil {
		pp.Log.WithField("photo_id", job.PhotoID).WithError(err).
			Warn("skipping AI metadata task, file unavailable")
		return
	}

	aiMeta, err := pp.AI.Extract(job.Path)
	if err != nil {
		pp.Log.WithField("photo_id", job.PhotoID).WithError(err).
			Error("AI metadata extraction failed")
		return
	}

	err = pp.Photos.UpdateFields(job.PhotoID, map[string]interface{}{
		"ai_metadata":     aiMeta.JSON(),
		"is_ai_generated": aiMeta.IsAIGenerated,
		"date_modified":   time.Now().Unix(),
	})
	if err != nil {
		pp.Log.WithField("photo_id", job.PhotoID).WithError(err).
			Error("failed to store AI metadata")
	}
}

// QueueJob queues a specific task if not already pending
func (pp *PhotoProcessor) QueueJob(job PhotoJob) bool {
	// composite key: "photoID:taskType"
	pendingKey := fmt.Sprintf("%d:%s", job.PhotoID, job.TaskType)

	pp.Mutex.Lock()
	if pp.Pending[pendingKey] {
		pp.Mutex.Unlock()
		return false
	}

	pp.Pending[pendingKey] = true
	pp.Mutex.Unlock()

	select {
	case pp.JobQueue <- job:
		return true
	default:
		pp.Log.WithFields(logrus.Fields{"photo_id": job.PhotoID, "task": job.TaskType}).
			Warn("photo processing queue full, job dropped")
		pp.Mutex.Lock()
		delete(pp.Pending, pendingKey)
		pp.Mutex.Unlock()
		return false
	}
}

func (pp *PhotoProcessor) Stop() {
	pp.Log.Info("stopping photo processor workers")
	close(pp.StopChan)
	pp.Wg.Wait()
	pp.Log.Info("all photo processor workers stopped")
}
