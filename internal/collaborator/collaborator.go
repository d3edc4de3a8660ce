// Package collaborator wraps the reasoning model behind typed
// operations. Instructions and transcripts go in opaque, structured
// JSON comes out, and every output is presence-checked before it is
// allowed to touch local state.
package collaborator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var log = logger.New("COLLABORATOR")

// ChatMessage is one turn in a collaborator dialogue.
type ChatMessage struct {
	Role    string `json:"role"` // user or model
	Content string `json:"content"`
}

// Client talks to the generative model.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg config.CollaboratorConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("collaborator API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collaborator client: %w", err)
	}

	return &Client{client: client, model: cfg.Model}, nil
}

// transcriptContents maps a chat transcript onto model contents. Any
// turn not marked "model" counts as the user's.
func transcriptContents(transcript []ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(transcript))
	for _, msg := range transcript {
		role := genai.Role(genai.RoleUser)
		if msg.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

// generate runs one instruction over a transcript and returns the raw
// text of the model's reply.
func (c *Client) generate(ctx context.Context, instruction string, transcript []ChatMessage, jsonOutput bool) (string, error) {
	contents := transcriptContents(transcript)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}
	if jsonOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("collaborator request failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", models.ErrMalformedOutput
	}
	return text, nil
}

// generateJSON decodes a JSON reply into out. Code fences around the
// payload are tolerated.
func (c *Client) generateJSON(ctx context.Context, instruction string, transcript []ChatMessage, out interface{}) error {
	text, err := c.generate(ctx, instruction, transcript, true)
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	if err := json.Unmarshal([]byte(text), out); err != nil {
		log.Warn("discarding undecodable collaborator output: %v", err)
		return models.ErrMalformedOutput
	}
	return nil
}

func profileContext(profile *models.UserProfile) string {
	if profile == nil {
		return "No case profile on file."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s (%s).", profile.Name, profile.Role)
	if len(profile.Children) > 0 {
		fmt.Fprintf(&b, " Children: %s.", strings.Join(profile.Children, ", "))
	}
	if profile.CauseNumber != "" {
		fmt.Fprintf(&b, " Cause number: %s.", profile.CauseNumber)
	}
	if profile.CourtInfo != "" {
		fmt.Fprintf(&b, " Court: %s.", profile.CourtInfo)
	}
	return b.String()
}

// AutoReply drafts a calm, documentable response to an incoming
// co-parent message.
func (c *Client) AutoReply(ctx context.Context, incoming string, profile *models.UserProfile) (string, error) {
	instruction := "You draft brief, polite, de-escalating replies to co-parent messages. " +
		"Keep to facts and logistics, never take the bait, never admit fault. " +
		"Reply with the message text only. " + profileContext(profile)

	return c.generate(ctx, instruction, []ChatMessage{{Role: "user", Content: incoming}}, false)
}

// GuardianTurn produces the next challenge in the schedule-imbalance
// dialogue.
func (c *Client) GuardianTurn(ctx context.Context, transcript []ChatMessage, profile *models.UserProfile) (string, error) {
	instruction := "You are a child advocacy guardian reviewing a proposed custody schedule that " +
		"gives one parent a small share of overnights. Press the user to justify the arrangement, " +
		"citing attachment concerns. Stay firm but professional. " + profileContext(profile)

	return c.generate(ctx, instruction, transcript, false)
}

// ImbalanceReport turns the guardian dialogue into a structured risk
// assessment document.
func (c *Client) ImbalanceReport(ctx context.Context, transcript []ChatMessage, profile *models.UserProfile) (*models.StructuredLegalDocument, error) {
	instruction := "Summarize this custody-schedule justification dialogue as a formal risk assessment. " +
		"Return JSON with fields: title, subtitle, metadata{date, clientName, caseNumber}, preamble, " +
		"sections[{heading, body}], closing, notes. " + profileContext(profile)

	var doc models.StructuredLegalDocument
	if err := c.generateJSON(ctx, instruction, transcript, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ChatIncidentReport distills a message transcript into an incident
// report draft.
func (c *Client) ChatIncidentReport(ctx context.Context, messages []models.Message, selfID string, profile *models.UserProfile) (*models.GeneratedReportData, error) {
	instruction := "Analyze this co-parenting message log for documentable incidents. " +
		"Return JSON with fields: content (markdown report), category (one of the incident categories), " +
		"tags (string list), legalContext. " + profileContext(profile)

	var report models.GeneratedReportData
	if err := c.generateJSON(ctx, instruction, transcriptFromMessages(messages, selfID), &report); err != nil {
		return nil, err
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}

// MessagingAnalysis scores the hostility of a conversation window.
func (c *Client) MessagingAnalysis(ctx context.Context, messages []models.Message, selfID string, profile *models.UserProfile) (*models.MessagingAnalysisReport, error) {
	instruction := "Analyze communication dynamics in this co-parenting conversation. " +
		"Return JSON with fields: conflictScore (1-10), conflictScoreReasoning, dominantThemes, " +
		"communicationDynamics{initiator, responsiveness, tone}, flaggedBehaviors, actionableRecommendations. " +
		profileContext(profile)

	var report models.MessagingAnalysisReport
	if err := c.generateJSON(ctx, instruction, transcriptFromMessages(messages, selfID), &report); err != nil {
		return nil, err
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}

// AssistantTurn runs one turn of the legal assistant, which may attach
// a full structured document to its reply.
func (c *Client) AssistantTurn(ctx context.Context, transcript []ChatMessage, profile *models.UserProfile) (*models.AssistantResponse, error) {
	instruction := "You are a family-law documentation assistant. Answer the user's question. " +
		"When asked to draft a filing, return type \"document\" with documentText populated; otherwise " +
		"return type \"chat\". Return JSON with fields: type, content, title, documentText. " +
		profileContext(profile)

	var resp models.AssistantResponse
	if err := c.generateJSON(ctx, instruction, transcript, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

func transcriptFromMessages(messages []models.Message, selfID string) []ChatMessage {
	transcript := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		speaker := "Co-parent"
		if m.SenderID == selfID {
			speaker = "Me"
		}
		transcript = append(transcript, ChatMessage{
			Role:    "user",
			Content: fmt.Sprintf("[%s at %s] %s", speaker, m.Timestamp, m.Content),
		})
	}
	return transcript
}
