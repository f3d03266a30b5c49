package model

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GenerationRequest is the transient per-call input of the pipeline.
type GenerationRequest struct {
	QueryText         string   `json:"query_text"`
	NumQuestions      int      `json:"num_questions"`
	UseRAG            bool     `json:"use_rag"`
	SelectedDocuments []string `json:"selected_documents,omitempty"`
	TargetOutcome     string   `json:"target_outcome,omitempty"`
}

type GenerationMetadata struct {
	Count             int      `json:"count"`
	Status            string   `json:"status"`
	Message           string   `json:"message,omitempty"`
	EducationLevel    string   `json:"education_level,omitempty"`
	LevelReasoning    string   `json:"level_reasoning,omitempty"`
	SelectedDocuments []string `json:"selected_documents,omitempty"`
	SourcesUsed       []string `json:"sources_used,omitempty"`
	RawResponseTail   string   `json:"raw_response_tail,omitempty"`
}

// GenerationResult is the only artifact the pipeline hands back to callers.
// Callers distinguish success from failure solely via Metadata.Status.
type GenerationResult struct {
	Questions []QA               `json:"questions"`
	Metadata  GenerationMetadata `json:"metadata"`
}

// ErrorResult builds the standard error-shaped result. Questions stays an
// empty (non-nil) slice so the JSON shape is identical to a success result.
func ErrorResult(message string) GenerationResult {
	return GenerationResult{
		Questions: []QA{},
		Metadata: GenerationMetadata{
			Count:   0,
			Status:  StatusError,
			Message: message,
		},
	}
}
