package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prasetya/candidate-evaluator/internal/apperrors"
	"prasetya/candidate-evaluator/internal/models"
)

func unmarshalStructured(payload string, out interface{}) error {
	if payload == "" {
		payload = "{}"
	}
	return json.Unmarshal([]byte(payload), out)
}

type fakeExtractor struct {
	cv     *CurriculumVitae
	report *ProjectReport
	err    error
}

func (f *fakeExtractor) ExtractCV(ctx context.Context, documentID uuid.UUID) (*CurriculumVitae, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cv, nil
}

func (f *fakeExtractor) ExtractProject(ctx context.Context, documentID uuid.UUID) (*ProjectReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeKnowledge struct {
	mu        sync.Mutex
	summaries map[string]string
	filters   []string
	err       error
}

func (f *fakeKnowledge) Ingest(ctx context.Context, documentType, pdfPath, filename string) (int, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeKnowledge) Query(ctx context.Context, query, typeFilter string) (string, error) {
	f.mu.Lock()
	f.filters = append(f.filters, typeFilter)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.summaries[typeFilter], nil
}

type sinkCall struct {
	jobID          uuid.UUID
	evaluationType string
	documentID     *uuid.UUID
}

type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
	err   error
}

func (f *fakeSink) Record(ctx context.Context, jobID uuid.UUID, evaluationType string, payload interface{}, documentID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, sinkCall{jobID: jobID, evaluationType: evaluationType, documentID: documentID})
	return nil
}

const sampleEvaluationJSON = `{
	"criterias": [
		{"criteria": "Technical Skills", "reason": "strong match", "weight": 0.4, "score": 4, "weighted_score": 1.6},
		{"criteria": "Experience Level", "reason": "mid level", "weight": 0.25, "score": 3, "weighted_score": 0.75}
	]
}`

const sampleOverallJSON = `{
	"cv_match_rate": 0.82,
	"cv_feedback": "solid backend profile",
	"cv_calculation_detail": "weighted sum over four criterias",
	"project_score": 4.2,
	"project_feedback": "clean implementation",
	"project_calculation_detail": "weighted sum over five criterias",
	"overall_summary": "recommended for the next stage"
}`

func newScoringFixture() (*fakeExtractor, *fakeKnowledge, *fakeLLM, *fakeSink, ScoringService) {
	extractor := &fakeExtractor{
		cv:     &CurriculumVitae{Profile: CVProfile{Name: "Jane Smith"}},
		report: &ProjectReport{ProjectTitle: "Evaluation Pipeline"},
	}
	knowledge := &fakeKnowledge{summaries: map[string]string{
		DocTypeScoringRubric:  "rubric summary",
		DocTypeJobDescription: "job description summary",
		DocTypeCaseStudyBrief: "brief summary",
	}}
	llm := &fakeLLM{structuredOut: sampleEvaluationJSON}
	sink := &fakeSink{}
	return extractor, knowledge, llm, sink, NewScoringService(extractor, knowledge, llm, sink)
}

func TestScoreCV_RecordsEvaluationForJob(t *testing.T) {
	t.Parallel()

	_, knowledge, llm, sink, svc := newScoringFixture()

	docID := uuid.New()
	jobID := uuid.New()
	result, err := svc.ScoreCV(context.Background(), docID, "Backend Engineer", jobID)
	require.NoError(t, err)
	require.Len(t, result.Criterias, 2)
	assert.Equal(t, "Technical Skills", result.Criterias[0].Criteria)
	assert.InDelta(t, 1.6, result.Criterias[0].WeightedScore, 1e-9)

	assert.ElementsMatch(t, []string{DocTypeScoringRubric, DocTypeJobDescription}, knowledge.filters)

	require.Len(t, llm.structuredPrompts, 1)
	assert.Contains(t, llm.structuredPrompts[0], "rubric summary")
	assert.Contains(t, llm.structuredPrompts[0], "job description summary")
	assert.Contains(t, llm.structuredPrompts[0], "Jane Smith")

	require.Len(t, sink.calls, 1)
	assert.Equal(t, jobID, sink.calls[0].jobID)
	assert.Equal(t, models.EvaluationTypeCV, sink.calls[0].evaluationType)
	require.NotNil(t, sink.calls[0].documentID)
	assert.Equal(t, docID, *sink.calls[0].documentID)
}

func TestScoreCV_StandaloneSkipsSink(t *testing.T) {
	t.Parallel()

	_, _, _, sink, svc := newScoringFixture()

	_, err := svc.ScoreCV(context.Background(), uuid.New(), "Backend Engineer", uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, sink.calls)
}

func TestScoreProject_RecordsEvaluationForJob(t *testing.T) {
	t.Parallel()

	_, knowledge, llm, sink, svc := newScoringFixture()

	docID := uuid.New()
	jobID := uuid.New()
	result, err := svc.ScoreProject(context.Background(), docID, "Backend Engineer", jobID)
	require.NoError(t, err)
	require.Len(t, result.Criterias, 2)

	assert.ElementsMatch(t, []string{DocTypeScoringRubric, DocTypeCaseStudyBrief}, knowledge.filters)

	require.Len(t, llm.structuredPrompts, 1)
	assert.Contains(t, llm.structuredPrompts[0], "brief summary")
	assert.Contains(t, llm.structuredPrompts[0], "Evaluation Pipeline")

	require.Len(t, sink.calls, 1)
	assert.Equal(t, models.EvaluationTypeProject, sink.calls[0].evaluationType)
	require.NotNil(t, sink.calls[0].documentID)
	assert.Equal(t, docID, *sink.calls[0].documentID)
}

func TestScoreOverall_FusesStageResults(t *testing.T) {
	t.Parallel()

	_, _, llm, sink, svc := newScoringFixture()
	llm.structuredOut = sampleOverallJSON

	cvResult := &EvaluationResult{Criterias: []CriteriaScore{{Criteria: "Technical Skills", Score: 4}}}
	projectResult := &EvaluationResult{Criterias: []CriteriaScore{{Criteria: "Correctness", Score: 5}}}

	jobID := uuid.New()
	overall, err := svc.ScoreOverall(context.Background(), cvResult, projectResult, "Backend Engineer", jobID)
	require.NoError(t, err)

	assert.InDelta(t, 0.82, overall.CVMatchRate, 1e-9)
	assert.InDelta(t, 4.2, overall.ProjectScore, 1e-9)
	assert.Equal(t, "recommended for the next stage", overall.OverallSummary)

	require.Len(t, llm.structuredPrompts, 1)
	assert.Contains(t, llm.structuredPrompts[0], "Technical Skills")
	assert.Contains(t, llm.structuredPrompts[0], "Correctness")

	require.Len(t, sink.calls, 1)
	assert.Equal(t, models.EvaluationTypeOverall, sink.calls[0].evaluationType)
	assert.Nil(t, sink.calls[0].documentID, "overall evaluation is not tied to one document")
}

func TestScoreOverall_StandaloneSkipsSink(t *testing.T) {
	t.Parallel()

	_, _, llm, sink, svc := newScoringFixture()
	llm.structuredOut = sampleOverallJSON

	_, err := svc.ScoreOverall(context.Background(), &EvaluationResult{}, &EvaluationResult{}, "Backend Engineer", uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, sink.calls)
}

func TestScoreCV_ExtractionFailureSkipsScoring(t *testing.T) {
	t.Parallel()

	extractor, _, llm, sink, svc := newScoringFixture()
	extractor.err = errors.New("corrupt document")

	_, err := svc.ScoreCV(context.Background(), uuid.New(), "Backend Engineer", uuid.New())
	require.Error(t, err)
	assert.Empty(t, llm.structuredPrompts)
	assert.Empty(t, sink.calls)
}

func TestScoreCV_RetrievalFailurePropagates(t *testing.T) {
	t.Parallel()

	_, knowledge, _, sink, svc := newScoringFixture()
	knowledge.err = apperrors.ErrRetrieval

	_, err := svc.ScoreCV(context.Background(), uuid.New(), "Backend Engineer", uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrRetrieval)
	assert.Empty(t, sink.calls)
}

func TestScoreCV_SinkFailureFailsCall(t *testing.T) {
	t.Parallel()

	_, _, _, sink, svc := newScoringFixture()
	sink.err = apperrors.ErrPersistence

	_, err := svc.ScoreCV(context.Background(), uuid.New(), "Backend Engineer", uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

type fakeEvaluationRepo struct {
	records []*models.EvaluationRecord
}

func (f *fakeEvaluationRepo) Create(ctx context.Context, record *models.EvaluationRecord) error {
	f.records = append(f.records, record)
	return nil
}

func TestEvaluationRecorder_WritesCompletedRecord(t *testing.T) {
	t.Parallel()

	repo := &fakeEvaluationRepo{}
	sink := NewEvaluationRecorder(repo)

	jobID := uuid.New()
	docID := uuid.New()
	result := &EvaluationResult{Criterias: []CriteriaScore{{Criteria: "Technical Skills", Score: 4}}}
	require.NoError(t, sink.Record(context.Background(), jobID, models.EvaluationTypeCV, result, &docID))

	require.Len(t, repo.records, 1)
	record := repo.records[0]
	assert.Equal(t, jobID, record.JobID)
	assert.Equal(t, models.EvaluationTypeCV, record.Type)
	assert.Equal(t, string(models.StatusCompleted), record.Status)
	require.NotNil(t, record.DocumentID)
	assert.Equal(t, docID, *record.DocumentID)
	assert.False(t, record.FinishedAt.IsZero())

	var decoded EvaluationResult
	require.NoError(t, json.Unmarshal(record.Result, &decoded))
	require.Len(t, decoded.Criterias, 1)
	assert.Equal(t, "Technical Skills", decoded.Criterias[0].Criteria)
}
