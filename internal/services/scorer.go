package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"prasetya/candidate-evaluator/internal/apperrors"
	"prasetya/candidate-evaluator/internal/models"
	"prasetya/candidate-evaluator/internal/repositories"
)

// CriteriaScore is one rubric criterion's evaluation. Weight and
// weighted_score arithmetic is trusted to the model; no local
// validation pass normalizes it.
type CriteriaScore struct {
	Criteria      string  `json:"criteria"`
	Reason        string  `json:"reason"`
	Weight        float64 `json:"weight"`
	Score         float64 `json:"score"`
	WeightedScore float64 `json:"weighted_score"`
}

type EvaluationResult struct {
	Criterias []CriteriaScore `json:"criterias"`
}

// OverallEvaluation fuses the CV and project stage results into the
// seven final result fields.
type OverallEvaluation struct {
	CVMatchRate              float64 `json:"cv_match_rate"`
	CVFeedback               string  `json:"cv_feedback"`
	CVCalculationDetail      string  `json:"cv_calculation_detail"`
	ProjectScore             float64 `json:"project_score"`
	ProjectFeedback          string  `json:"project_feedback"`
	ProjectCalculationDetail string  `json:"project_calculation_detail"`
	OverallSummary           string  `json:"overall_summary"`
}

var evaluationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"criterias": {
			Type:        genai.TypeArray,
			Description: "List of evaluation criterias",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"criteria":       {Type: genai.TypeString, Description: "Name of the criteria"},
					"reason":         {Type: genai.TypeString, Description: "Reason for the given score"},
					"weight":         {Type: genai.TypeNumber, Description: "Weight of the criteria between 0 and 1"},
					"score":          {Type: genai.TypeNumber, Description: "Score of the criteria according to the rubric"},
					"weighted_score": {Type: genai.TypeNumber, Description: "Weighted score of the criteria (weight * score)"},
				},
				Required: []string{"criteria", "reason", "weight", "score", "weighted_score"},
			},
		},
	},
	Required: []string{"criterias"},
}

var overallSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"cv_match_rate":              {Type: genai.TypeNumber, Description: "CV match rate as a fraction between 0 and 1"},
		"cv_feedback":                {Type: genai.TypeString, Description: "Feedback on the CV evaluation"},
		"cv_calculation_detail":      {Type: genai.TypeString, Description: "How the CV match rate was calculated"},
		"project_score":              {Type: genai.TypeNumber, Description: "Project score on the rubric's scale"},
		"project_feedback":           {Type: genai.TypeString, Description: "Feedback on the project evaluation"},
		"project_calculation_detail": {Type: genai.TypeString, Description: "How the project score was calculated"},
		"overall_summary":            {Type: genai.TypeString, Description: "Overall candidate summary and recommendation"},
	},
	Required: []string{
		"cv_match_rate", "cv_feedback", "cv_calculation_detail",
		"project_score", "project_feedback", "project_calculation_detail",
		"overall_summary",
	},
}

// EvaluationSink persists the audit record of one completed scoring
// stage. Keeping it behind an interface keeps scoring computation
// testable without a database.
type EvaluationSink interface {
	Record(ctx context.Context, jobID uuid.UUID, evaluationType string, payload interface{}, documentID *uuid.UUID) error
}

type evaluationRecorder struct {
	evalRepo repositories.EvaluationRepository
}

func NewEvaluationRecorder(evalRepo repositories.EvaluationRepository) EvaluationSink {
	return &evaluationRecorder{evalRepo: evalRepo}
}

// Record implements EvaluationSink.
func (r *evaluationRecorder) Record(ctx context.Context, jobID uuid.UUID, evaluationType string, payload interface{}, documentID *uuid.UUID) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal evaluation payload: %v", apperrors.ErrPersistence, err)
	}

	return r.evalRepo.Create(ctx, &models.EvaluationRecord{
		ID:         uuid.New(),
		JobID:      jobID,
		Type:       evaluationType,
		Status:     string(models.StatusCompleted),
		Result:     models.JSONRaw(raw),
		DocumentID: documentID,
		FinishedAt: time.Now(),
	})
}

// ScoringService runs the rubric-driven evaluation stages. Calls
// carrying a job id persist an evaluation record through the sink;
// standalone calls (jobID == uuid.Nil) skip persistence.
type ScoringService interface {
	ScoreCV(ctx context.Context, documentID uuid.UUID, jobTitle string, jobID uuid.UUID) (*EvaluationResult, error)
	ScoreProject(ctx context.Context, documentID uuid.UUID, jobTitle string, jobID uuid.UUID) (*EvaluationResult, error)
	ScoreOverall(ctx context.Context, cvResult, projectResult *EvaluationResult, jobTitle string, jobID uuid.UUID) (*OverallEvaluation, error)
}

type scoringService struct {
	extractor ExtractionService
	knowledge KnowledgeService
	llm       LLMClient
	sink      EvaluationSink
	prompts   *PromptBuilder
}

func NewScoringService(
	extractor ExtractionService,
	knowledge KnowledgeService,
	llm LLMClient,
	sink EvaluationSink,
) ScoringService {
	return &scoringService{
		extractor: extractor,
		knowledge: knowledge,
		llm:       llm,
		sink:      sink,
		prompts:   NewPromptBuilder(),
	}
}

// ScoreCV implements ScoringService.
func (s *scoringService) ScoreCV(ctx context.Context, documentID uuid.UUID, jobTitle string, jobID uuid.UUID) (*EvaluationResult, error) {
	var (
		cv             *CurriculumVitae
		rubric         string
		jobDescription string
	)

	// Extraction does not depend on the rubric or context text, so
	// all three fetches run concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cv, err = s.extractor.ExtractCV(gctx, documentID)
		return err
	})
	g.Go(func() error {
		var err error
		rubric, err = s.knowledge.Query(gctx, s.prompts.CVRubricQuery(jobTitle), DocTypeScoringRubric)
		return err
	})
	g.Go(func() error {
		var err error
		jobDescription, err = s.knowledge.Query(gctx, s.prompts.JobDescriptionQuery(jobTitle), DocTypeJobDescription)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := s.score(ctx, rubric, jobDescription, cv)
	if err != nil {
		return nil, err
	}

	if jobID != uuid.Nil {
		if err := s.sink.Record(ctx, jobID, models.EvaluationTypeCV, result, &documentID); err != nil {
			return nil, err
		}
	}

	log.Printf("🤖 CV scoring finished for document %s (%d criterias)\n", documentID, len(result.Criterias))
	return result, nil
}

// ScoreProject implements ScoringService.
func (s *scoringService) ScoreProject(ctx context.Context, documentID uuid.UUID, jobTitle string, jobID uuid.UUID) (*EvaluationResult, error) {
	var (
		report *ProjectReport
		rubric string
		brief  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.extractor.ExtractProject(gctx, documentID)
		return err
	})
	g.Go(func() error {
		var err error
		rubric, err = s.knowledge.Query(gctx, s.prompts.ProjectRubricQuery(jobTitle), DocTypeScoringRubric)
		return err
	})
	g.Go(func() error {
		var err error
		brief, err = s.knowledge.Query(gctx, s.prompts.CaseStudyBriefQuery(), DocTypeCaseStudyBrief)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := s.score(ctx, rubric, brief, report)
	if err != nil {
		return nil, err
	}

	if jobID != uuid.Nil {
		if err := s.sink.Record(ctx, jobID, models.EvaluationTypeProject, result, &documentID); err != nil {
			return nil, err
		}
	}

	log.Printf("🤖 Project scoring finished for document %s (%d criterias)\n", documentID, len(result.Criterias))
	return result, nil
}

// ScoreOverall implements ScoringService. The overall rubric is not
// scoped by job title.
func (s *scoringService) ScoreOverall(ctx context.Context, cvResult, projectResult *EvaluationResult, jobTitle string, jobID uuid.UUID) (*OverallEvaluation, error) {
	rubric, err := s.knowledge.Query(ctx, s.prompts.OverallRubricQuery(), DocTypeScoringRubric)
	if err != nil {
		return nil, err
	}

	cvJSON, err := json.Marshal(cvResult)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal cv result: %v", apperrors.ErrScoring, err)
	}
	projectJSON, err := json.Marshal(projectResult)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal project result: %v", apperrors.ErrScoring, err)
	}

	prompt := s.prompts.BuildOverallPrompt(rubric, string(cvJSON), string(projectJSON), jobTitle)

	var overall OverallEvaluation
	if err := s.llm.GenerateStructured(ctx, prompt, overallSchema, &overall); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrScoring, err)
	}

	if jobID != uuid.Nil {
		if err := s.sink.Record(ctx, jobID, models.EvaluationTypeOverall, &overall, nil); err != nil {
			return nil, err
		}
	}

	log.Printf("🤖 Overall scoring finished (match rate %.2f, project score %.2f)\n", overall.CVMatchRate, overall.ProjectScore)
	return &overall, nil
}

func (s *scoringService) score(ctx context.Context, rubric, contextText string, document interface{}) (*EvaluationResult, error) {
	documentJSON, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal document: %v", apperrors.ErrScoring, err)
	}

	prompt := s.prompts.BuildScoringPrompt(rubric, contextText, string(documentJSON))

	var result EvaluationResult
	if err := s.llm.GenerateStructured(ctx, prompt, evaluationSchema, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrScoring, err)
	}

	return &result, nil
}
