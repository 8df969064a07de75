package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"prasetya/candidate-evaluator/internal/models"
	"prasetya/candidate-evaluator/internal/repositories"
)

// JobService owns the evaluation-job lifecycle: it creates and
// enqueues jobs, answers status lookups and applies status
// transitions for the worker.
type JobService interface {
	CreateAndQueueJob(ctx context.Context, cvDocumentID, projectDocumentID uuid.UUID, jobTitle string) (*models.EvaluateResponse, error)
	GetJobStatus(ctx context.Context, id uuid.UUID) (*models.ResultResponse, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, fields map[string]interface{}) error
}

type jobService struct {
	jobRepo repositories.JobRepository
	queue   JobQueue
}

func NewJobService(jobRepo repositories.JobRepository, queue JobQueue) JobService {
	return &jobService{
		jobRepo: jobRepo,
		queue:   queue,
	}
}

// CreateAndQueueJob implements JobService. The row is inserted
// directly in the processing state; there is no separate queued write.
// When the insert fails, nothing is enqueued.
func (s *jobService) CreateAndQueueJob(ctx context.Context, cvDocumentID, projectDocumentID uuid.UUID, jobTitle string) (*models.EvaluateResponse, error) {
	job := &models.EvaluationJob{
		ID:                uuid.New(),
		CVDocumentID:      cvDocumentID,
		ProjectDocumentID: projectDocumentID,
		JobTitle:          jobTitle,
		Status:            models.StatusProcessing,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	task := TaskPayload{
		JobID:             job.ID,
		CVDocumentID:      cvDocumentID,
		ProjectDocumentID: projectDocumentID,
		JobTitle:          jobTitle,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("📥 Job %s created and queued for %q\n", job.ID, jobTitle)

	return &models.EvaluateResponse{
		ID:     job.ID.String(),
		Status: string(models.StatusQueued),
	}, nil
}

// GetJobStatus implements JobService. Result fields are included only
// once the job has completed.
func (s *jobService) GetJobStatus(ctx context.Context, id uuid.UUID) (*models.ResultResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := &models.ResultResponse{
		ID:     job.ID.String(),
		Status: string(job.Status),
	}

	if job.Status == models.StatusCompleted {
		response.Result = &models.EvaluationResultData{
			CVMatchRate:              deref(job.CVMatchRate),
			CVFeedback:               derefStr(job.CVFeedback),
			CVCalculationDetail:      derefStr(job.CVCalculationDetail),
			ProjectScore:             deref(job.ProjectScore),
			ProjectFeedback:          derefStr(job.ProjectFeedback),
			ProjectCalculationDetail: derefStr(job.ProjectCalculationDetail),
			OverallSummary:           derefStr(job.OverallSummary),
		}
	}

	if job.Status == models.StatusFailed && job.ErrorMessage != nil {
		response.ErrorMessage = job.ErrorMessage
	}

	return response, nil
}

// UpdateJobStatus implements JobService.
func (s *jobService) UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, fields map[string]interface{}) error {
	return s.jobRepo.UpdateStatus(ctx, id, status, fields)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
