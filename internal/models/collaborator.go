package models

import "errors"

var ErrMalformedOutput = errors.New("collaborator returned malformed output")

// StructuredLegalDocument is the machine-readable form of a generated
// legal document. It renders deterministically, so the same structure
// always produces the same text.
type StructuredLegalDocument struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Metadata struct {
		Date       string `json:"date"`
		ClientName string `json:"clientName,omitempty"`
		CaseNumber string `json:"caseNumber,omitempty"`
	} `json:"metadata"`
	Preamble string `json:"preamble"`
	Sections []struct {
		Heading string `json:"heading"`
		Body    string `json:"body"`
	} `json:"sections"`
	Closing string `json:"closing"`
	Notes   string `json:"notes,omitempty"`
}

// Validate checks structural presence, not content quality.
func (d *StructuredLegalDocument) Validate() error {
	if d.Title == "" || d.Preamble == "" || len(d.Sections) == 0 {
		return ErrMalformedOutput
	}
	return nil
}

// GeneratedReportData is the collaborator's draft of an incident
// report from a raw account or a message transcript.
type GeneratedReportData struct {
	Content      string           `json:"content"`
	Category     IncidentCategory `json:"category"`
	Tags         []string         `json:"tags"`
	LegalContext string           `json:"legalContext,omitempty"`
}

func (g *GeneratedReportData) Validate() error {
	if g.Content == "" || g.Category == "" {
		return ErrMalformedOutput
	}
	return nil
}

// AssistantResponse is the legal assistant's turn: always a chat
// message, sometimes with a full structured document attached.
type AssistantResponse struct {
	Type         string                   `json:"type"` // chat or document
	Content      string                   `json:"content"`
	Title        string                   `json:"title,omitempty"`
	DocumentText *StructuredLegalDocument `json:"documentText,omitempty"`
}

func (r *AssistantResponse) Validate() error {
	if r.Content == "" {
		return ErrMalformedOutput
	}
	if r.Type == "document" {
		if r.DocumentText == nil {
			return ErrMalformedOutput
		}
		return r.DocumentText.Validate()
	}
	return nil
}

// MessagingAnalysisReport is the hostility analysis of a conversation
// window.
type MessagingAnalysisReport struct {
	ConflictScore          float64 `json:"conflictScore"`
	ConflictScoreReasoning string  `json:"conflictScoreReasoning"`
	DominantThemes         []struct {
		Theme       string `json:"theme"`
		Description string `json:"description"`
		Frequency   string `json:"frequency"`
	} `json:"dominantThemes"`
	CommunicationDynamics struct {
		Initiator      string `json:"initiator"`
		Responsiveness string `json:"responsiveness"`
		Tone           string `json:"tone"`
	} `json:"communicationDynamics"`
	FlaggedBehaviors []struct {
		Behavior string `json:"behavior"`
		Example  string `json:"example"`
		Impact   string `json:"impact"`
	} `json:"flaggedBehaviors"`
	ActionableRecommendations []string `json:"actionableRecommendations"`
}

func (m *MessagingAnalysisReport) Validate() error {
	if m.ConflictScoreReasoning == "" {
		return ErrMalformedOutput
	}
	return nil
}
