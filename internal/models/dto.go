package models

type UploadResponse struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

type EvaluateRequest struct {
	JobTitle          string `json:"job_title"`
	CVDocumentID      string `json:"cv_document_id"`
	ProjectDocumentID string `json:"project_document_id"`
}

type EvaluateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// EvaluationResultData holds the seven result fields returned once a
// job reaches the completed state.
type EvaluationResultData struct {
	CVMatchRate              float64 `json:"cv_match_rate"`
	CVFeedback               string  `json:"cv_feedback"`
	CVCalculationDetail      string  `json:"cv_calculation_detail"`
	ProjectScore             float64 `json:"project_score"`
	ProjectFeedback          string  `json:"project_feedback"`
	ProjectCalculationDetail string  `json:"project_calculation_detail"`
	OverallSummary           string  `json:"overall_summary"`
}

type ResultResponse struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Result       *EvaluationResultData `json:"result,omitempty"`
	ErrorMessage *string               `json:"error_message,omitempty"`
}

type TestEvaluationRequest struct {
	DocumentID string `json:"document_id"`
	JobTitle   string `json:"job_title"`
}

type IngestResponse struct {
	DocumentType string `json:"document_type"`
	FileName     string `json:"file_name"`
	ChunkCount   int    `json:"chunk_count"`
}

type SearchResponse struct {
	Query   string `json:"query"`
	Filter  string `json:"filter,omitempty"`
	Summary string `json:"summary"`
}
