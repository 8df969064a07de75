package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"prasetya/candidate-evaluator/internal/apperrors"
)

// CurriculumVitae is the fixed extraction target for CV documents.
type CurriculumVitae struct {
	Profile     CVProfile    `json:"profile"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
	Skills      []string     `json:"skills"`
	Languages   []string     `json:"languages"`
}

type CVProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	Summary  string `json:"summary"`
}

type Experience struct {
	Role           string `json:"role"`
	EmploymentType string `json:"employment_type"`
	Company        string `json:"company"`
	Industry       string `json:"industry"`
	Location       string `json:"location"`
	Description    string `json:"description"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

type Education struct {
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	Institution  string `json:"institution"`
	Location     string `json:"location"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// ProjectReport is the fixed extraction target for project documents.
type ProjectReport struct {
	ProjectTitle     string           `json:"project_title"`
	Candidate        ProjectCandidate `json:"candidate"`
	GitHubRepository string           `json:"github_repository"`
	Approaches       []TitledSection  `json:"approaches"`
	Results          []TitledSection  `json:"results"`
	RealResponses    []string         `json:"real_responses"`
	BonusWorks       string           `json:"bonus_works"`
}

type ProjectCandidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TitledSection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var cvSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"profile": {
			Type:        genai.TypeObject,
			Description: "The personal profile of the candidate",
			Properties: map[string]*genai.Schema{
				"name":     {Type: genai.TypeString, Description: "Full name of the candidate"},
				"email":    {Type: genai.TypeString, Description: "Email address"},
				"phone":    {Type: genai.TypeString, Description: "Phone number"},
				"linkedin": {Type: genai.TypeString, Description: "LinkedIn profile URL"},
				"summary":  {Type: genai.TypeString, Description: "Brief summary or objective statement"},
			},
		},
		"experiences": {
			Type:        genai.TypeArray,
			Description: "Professional experiences",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"role":            {Type: genai.TypeString, Description: "Job title or role held"},
					"employment_type": {Type: genai.TypeString, Enum: []string{"Full-time", "Part-time", "Contract", "Internship", "Temporary"}},
					"company":         {Type: genai.TypeString, Description: "Company or organization name"},
					"industry":        {Type: genai.TypeString, Description: "Industry sector of the company"},
					"location":        {Type: genai.TypeString, Description: "Job location (city, country)"},
					"description":     {Type: genai.TypeString, Description: "Role and responsibilities"},
					"start_date":      {Type: genai.TypeString, Description: "Start date (YYYY-MM)"},
					"end_date":        {Type: genai.TypeString, Description: "End date (YYYY-MM) or Present"},
				},
			},
		},
		"education": {
			Type:        genai.TypeArray,
			Description: "Educational qualifications",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"degree":         {Type: genai.TypeString, Description: "Degree or qualification obtained"},
					"field_of_study": {Type: genai.TypeString, Description: "Field of study or major"},
					"institution":    {Type: genai.TypeString, Description: "Name of the institution"},
					"location":       {Type: genai.TypeString, Description: "Institution location (city, country)"},
					"start_date":     {Type: genai.TypeString, Description: "Start date (YYYY-MM)"},
					"end_date":       {Type: genai.TypeString, Description: "End date (YYYY-MM)"},
				},
			},
		},
		"skills": {
			Type:        genai.TypeArray,
			Description: "Relevant skills and competencies",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"languages": {
			Type:        genai.TypeArray,
			Description: "Languages spoken by the candidate",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"profile", "experiences", "education", "skills", "languages"},
}

var projectSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"project_title": {Type: genai.TypeString, Description: "Title of the project"},
		"candidate": {
			Type:        genai.TypeObject,
			Description: "Information about the candidate",
			Properties: map[string]*genai.Schema{
				"name":  {Type: genai.TypeString, Description: "Full name of the candidate"},
				"email": {Type: genai.TypeString, Description: "Email address"},
			},
		},
		"github_repository": {Type: genai.TypeString, Description: "Link to the GitHub repository"},
		"approaches": {
			Type:        genai.TypeArray,
			Description: "Project approaches and designs",
			Items:       titledSectionSchema(),
		},
		"results": {
			Type:        genai.TypeArray,
			Description: "Project results and reflections",
			Items:       titledSectionSchema(),
		},
		"real_responses": {
			Type:        genai.TypeArray,
			Description: "Actual responses quoted from the candidate's system",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"bonus_works": {Type: genai.TypeString, Description: "Any additional bonus work described"},
	},
	Required: []string{"project_title", "candidate", "github_repository", "approaches", "results", "real_responses", "bonus_works"},
}

func titledSectionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
		},
	}
}

// ExtractionService turns a stored document into structured data via a
// schema-constrained model call.
type ExtractionService interface {
	ExtractCV(ctx context.Context, documentID uuid.UUID) (*CurriculumVitae, error)
	ExtractProject(ctx context.Context, documentID uuid.UUID) (*ProjectReport, error)
}

type extractionService struct {
	storage   DocumentStorageService
	pdfParser PDFParserService
	llm       LLMClient
	prompts   *PromptBuilder
}

func NewExtractionService(
	storage DocumentStorageService,
	pdfParser PDFParserService,
	llm LLMClient,
) ExtractionService {
	return &extractionService{
		storage:   storage,
		pdfParser: pdfParser,
		llm:       llm,
		prompts:   NewPromptBuilder(),
	}
}

// ExtractCV implements ExtractionService.
func (e *extractionService) ExtractCV(ctx context.Context, documentID uuid.UUID) (*CurriculumVitae, error) {
	var cv CurriculumVitae
	if err := e.extract(ctx, documentID, "curriculum vitae", cvSchema, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

// ExtractProject implements ExtractionService.
func (e *extractionService) ExtractProject(ctx context.Context, documentID uuid.UUID) (*ProjectReport, error) {
	var report ProjectReport
	if err := e.extract(ctx, documentID, "project report", projectSchema, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (e *extractionService) extract(ctx context.Context, documentID uuid.UUID, kind string, schema *genai.Schema, out interface{}) error {
	storagePath, err := e.storage.GetStoragePath(ctx, documentID)
	if err != nil {
		return err
	}

	tempPath, err := e.storage.DownloadToTempFile(storagePath)
	if err != nil {
		return err
	}
	// The temp handle must be released on every exit path.
	defer e.storage.DeleteTempFile(tempPath)

	text, err := e.pdfParser.ExtractText(tempPath)
	if err != nil {
		return fmt.Errorf("%w: failed to load document text: %v", apperrors.ErrExtraction, err)
	}

	prompt := e.prompts.BuildExtractionPrompt(kind, text)
	if err := e.llm.GenerateStructured(ctx, prompt, schema, out); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrExtraction, err)
	}

	log.Printf("🧾 Extracted %s from document %s\n", kind, documentID)
	return nil
}
