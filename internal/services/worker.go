package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"prasetya/candidate-evaluator/internal/models"
)

// Worker consumes evaluation tasks and drives the scoring pipeline.
// Each task sequences: mark processing, score CV and project
// concurrently, fuse into the overall result, mark completed. Any
// failure marks the job failed and propagates so the queue's own
// failure bookkeeping still fires. The worker itself never retries.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

type worker struct {
	queue       JobQueue
	jobs        JobService
	scorer      ScoringService
	concurrency int
	jobTimeout  time.Duration
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

// Budget for the terminal status write after a task fails. Independent
// of the task deadline so a timeout cannot strand the job in processing.
const failureWriteTimeout = 10 * time.Second

// Pause between dequeue attempts after a broker error.
const dequeueRetryBackoff = time.Second

func NewWorker(
	queue JobQueue,
	jobs JobService,
	scorer ScoringService,
	concurrency int,
	jobTimeout time.Duration,
) Worker {
	return &worker{
		queue:       queue,
		jobs:        jobs,
		scorer:      scorer,
		concurrency: concurrency,
		jobTimeout:  jobTimeout,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d consumers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.consume(ctx, i+1)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

func (w *worker) consume(ctx context.Context, consumerID int) {
	defer w.wg.Done()
	log.Printf("👷 Consumer #%d started\n", consumerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Consumer #%d stopped\n", consumerID)
			return
		case <-ctx.Done():
			log.Printf("👷 Consumer #%d context cancelled\n", consumerID)
			return
		default:
		}

		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			log.Printf("⚠️  Consumer #%d dequeue failed: %v\n", consumerID, err)
			// Back off so a broker outage does not busy-spin the loop.
			select {
			case <-w.stopChan:
			case <-ctx.Done():
			case <-time.After(dequeueRetryBackoff):
			}
			continue
		}
		if task == nil {
			continue
		}

		if err := w.process(ctx, task); err != nil {
			log.Printf("❌ Consumer #%d failed job %s: %v\n", consumerID, task.JobID, err)
		} else {
			log.Printf("✅ Consumer #%d completed job %s\n", consumerID, task.JobID)
		}
	}
}

// process runs one evaluation task under a bounded deadline so a hung
// external dependency cannot strand a consumer indefinitely.
func (w *worker) process(ctx context.Context, task *TaskPayload) error {
	ctx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	log.Printf("🔄 Processing job %s for %q\n", task.JobID, task.JobTitle)

	if err := w.jobs.UpdateJobStatus(ctx, task.JobID, models.StatusProcessing, nil); err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	if err := w.evaluate(ctx, task); err != nil {
		// Mark the job failed before letting the error propagate. The
		// task context may already be past its deadline here, so the
		// failure write gets its own budget; otherwise a timed-out job
		// would stay in processing forever. If even that write fails,
		// the queue's failure handling is the only remaining backstop.
		failCtx, failCancel := context.WithTimeout(context.Background(), failureWriteTimeout)
		defer failCancel()

		failFields := map[string]interface{}{"error_message": err.Error()}
		if updateErr := w.jobs.UpdateJobStatus(failCtx, task.JobID, models.StatusFailed, failFields); updateErr != nil {
			log.Printf("❌ Failed to mark job %s failed: %v\n", task.JobID, updateErr)
		}
		return err
	}

	return nil
}

func (w *worker) evaluate(ctx context.Context, task *TaskPayload) error {
	var (
		cvResult      *EvaluationResult
		projectResult *EvaluationResult
	)

	// CV and project scoring have no ordering dependency; the overall
	// stage is the join point.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cvResult, err = w.scorer.ScoreCV(gctx, task.CVDocumentID, task.JobTitle, task.JobID)
		return err
	})
	g.Go(func() error {
		var err error
		projectResult, err = w.scorer.ScoreProject(gctx, task.ProjectDocumentID, task.JobTitle, task.JobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	overall, err := w.scorer.ScoreOverall(ctx, cvResult, projectResult, task.JobTitle, task.JobID)
	if err != nil {
		return err
	}

	resultFields := map[string]interface{}{
		"cv_match_rate":              overall.CVMatchRate,
		"cv_feedback":                overall.CVFeedback,
		"cv_calculation_detail":      overall.CVCalculationDetail,
		"project_score":              overall.ProjectScore,
		"project_feedback":           overall.ProjectFeedback,
		"project_calculation_detail": overall.ProjectCalculationDetail,
		"overall_summary":            overall.OverallSummary,
	}

	if err := w.jobs.UpdateJobStatus(ctx, task.JobID, models.StatusCompleted, resultFields); err != nil {
		return fmt.Errorf("failed to save job results: %w", err)
	}

	return nil
}
