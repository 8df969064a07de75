package services

import (
	"fmt"
)

// Document-type tags for indexed reference documents.
const (
	DocTypeScoringRubric  = "scoring_rubric"
	DocTypeJobDescription = "job_description"
	DocTypeCaseStudyBrief = "case_study_brief"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Retrieval queries. The CV-side queries are tailored by job title;
// the overall rubric query deliberately is not.

func (pb *PromptBuilder) CVRubricQuery(jobTitle string) string {
	return fmt.Sprintf("Scoring Rubric for CV evaluation for a %s position", jobTitle)
}

func (pb *PromptBuilder) JobDescriptionQuery(jobTitle string) string {
	return fmt.Sprintf("Job description, requirements and qualifications for %s", jobTitle)
}

func (pb *PromptBuilder) ProjectRubricQuery(jobTitle string) string {
	return fmt.Sprintf("Scoring Rubric for Project deliverables for a %s position", jobTitle)
}

func (pb *PromptBuilder) CaseStudyBriefQuery() string {
	return "Case Study Brief: project requirements, technical specifications and deliverables"
}

func (pb *PromptBuilder) OverallRubricQuery() string {
	return "Overall Scoring Rubric for Candidate Evaluation"
}

// BuildSummarizerPrompt asks the model to compress retrieved chunks
// into a factual summary scoped to the query.
func (pb *PromptBuilder) BuildSummarizerPrompt(query, documents string) string {
	return fmt.Sprintf(`You are a knowledge summarizer. Summarize only the information in the following documents that is directly relevant to the query below.
Do not include unrelated details. Preserve factual accuracy and key terminology.

Query: "%s"

Documents:
%s

Focus on documents that match the query and return a concise factual summary:`, query, documents)
}

// BuildExtractionPrompt instructs the model to populate the target
// schema strictly from the document text.
func (pb *PromptBuilder) BuildExtractionPrompt(kind, documentText string) string {
	return fmt.Sprintf(`You are a precise document parser. Extract the %s information from the document below into the requested structure.

Rules:
- Use only information present in the document. Never fabricate.
- When a field is not present in the document, leave it empty rather than guessing.
- Preserve names, dates and links exactly as written.

Document:
%s`, kind, documentText)
}

// BuildScoringPrompt evaluates extracted document data against a
// rubric, grounded in the retrieved context.
func (pb *PromptBuilder) BuildScoringPrompt(rubric, context, documentJSON string) string {
	return fmt.Sprintf(`You're an expert HR Evaluator. Given the context and scoring rubric below, evaluate the document against each criteria in the rubric.

Scoring Rubric:
%s

Document Scoring Based on:
%s

Document to evaluate:
%s

Provide a thorough evaluation for each criteria mentioned in the rubric.
Be evidence-based: justify every score with material from the document, and penalize claims the document does not support.
Weights must come from the rubric and lie between 0 and 1.`, rubric, context, documentJSON)
}

// BuildOverallPrompt fuses the CV and project stage results into one
// final assessment, constrained to the overall rubric.
func (pb *PromptBuilder) BuildOverallPrompt(rubric, cvResultJSON, projectResultJSON, jobTitle string) string {
	return fmt.Sprintf(`You are an expert technical hiring manager producing the final assessment of a candidate for a %s position.

Overall Scoring Rubric:
%s

CV evaluation result:
%s

Project evaluation result:
%s

Combine both evaluations into the final assessment. Use only the weights and scale defined in the overall rubric above; do not invent criteria.
For the calculation detail fields, show how each number was derived from the per-criteria scores and weights.
cv_match_rate is a fraction between 0 and 1; project_score follows the rubric's scale.
The overall summary should cover strengths, gaps and a hiring recommendation in 3-5 sentences.`, jobTitle, rubric, cvResultJSON, projectResultJSON)
}
