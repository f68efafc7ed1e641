package ai

import "fmt"

// DraftRequest holds the inputs of a document draft.
type DraftRequest struct {
	DocumentType string `json:"document_type"`
	CaseName     string `json:"case_name"`
	ClientName   string `json:"client_name"`
	ClientEmail  string `json:"client_email"`
	Details      string `json:"details"`
}

// DraftPrompt asks for a document of the given type for a case.
func DraftPrompt(r DraftRequest) string {
	return fmt.Sprintf("Draft a %s for the case \"%s\". Client: %s (%s). Details: %s",
		r.DocumentType, r.CaseName, r.ClientName, r.ClientEmail, r.Details)
}

// ResearchPrompt asks for a research summary of query.
func ResearchPrompt(query string) string {
	return "You are a legal research assistant. Provide a concise, accurate summary for the following legal research query, citing relevant statutes or cases if possible.\n\nQuery: " + query
}

// SummaryPrompt asks for an executive summary of a brief.
func SummaryPrompt(text string) string {
	return "Summarize the following legal brief in clear, concise language for a CEO.\n\n" + text
}

// WorkflowPrompt asks for a workflow for the named process or goal.
func WorkflowPrompt(name string) string {
	return "You are a legal operations expert. Suggest a detailed workflow for the following law firm process or goal.\n\nWorkflow Name/Goal: " + name
}

// ChatbotPrompt asks for a client-facing answer to question.
func ChatbotPrompt(question string) string {
	return "You are a legal chatbot. Provide a clear, concise answer to the following question for a law firm client.\n\nQuestion: " + question
}
