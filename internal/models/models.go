package models

// User is the session identity returned by the backend on login or
// signup. It is what the session store keeps between requests.
type User struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	LinkedUserID string `json:"linkedUserId,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
}

// UserProfile carries the case context and the billing state. Tokens
// and tier are optional on the wire; absent values are normalized to
// the starter grant and the free tier when the profile is read.
type UserProfile struct {
	Name         string           `json:"name"`
	Role         string           `json:"role" validate:"omitempty,oneof=Mother Father"`
	Children     []string         `json:"children"`
	CauseNumber  string           `json:"causeNumber,omitempty"`
	CourtInfo    string           `json:"courtInfo,omitempty"`
	LinkedUserID string           `json:"linkedUserId,omitempty"`
	Tier         SubscriptionTier `json:"tier,omitempty"`
	Tokens       *int             `json:"tokens,omitempty"`
}

// Report is an incident record. Reports are append-only: once created
// they are never edited in place, only added or removed wholesale.
type Report struct {
	ID           string           `json:"id"`
	CreatedAt    string           `json:"createdAt"`
	Category     IncidentCategory `json:"category" validate:"required"`
	Tags         []string         `json:"tags"`
	Content      string           `json:"content" validate:"required"`
	LegalContext string           `json:"legalContext,omitempty"`
	// Deprecated: evidence now lives in documents.
	Images []string `json:"images,omitempty"`
}

// StoredDocument is an opaque evidentiary or generated file. Data may
// be absent until fetched on demand from the remote store.
type StoredDocument struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name" validate:"required"`
	MimeType       string                   `json:"mimeType"`
	Data           string                   `json:"data,omitempty"`
	CreatedAt      string                   `json:"createdAt"`
	Folder         DocumentFolder           `json:"folder" validate:"required"`
	StructuredData *StructuredLegalDocument `json:"structuredData,omitempty"`
}

// IncidentTemplate is a reusable report scaffold.
type IncidentTemplate struct {
	ID           string           `json:"id"`
	Title        string           `json:"title" validate:"required"`
	Content      string           `json:"content" validate:"required"`
	Category     IncidentCategory `json:"category"`
	Tags         []string         `json:"tags"`
	LegalContext string           `json:"legalContext,omitempty"`
}

// Message is one entry in the linked-account conversation.
type Message struct {
	ID          string `json:"id"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId,omitempty"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
}

// AuditLogEntry records one action taken on a shared event. The audit
// log only ever grows.
type AuditLogEntry struct {
	Action    AuditAction `json:"action"`
	UserID    string      `json:"userId"`
	UserName  string      `json:"userName,omitempty"`
	Timestamp string      `json:"timestamp"`
	Details   string      `json:"details,omitempty"`
}

// SharedEvent is a calendar entry jointly visible to two linked
// accounts. Its id is stable across edits.
type SharedEvent struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Start      string          `json:"start" validate:"required"`
	End        string          `json:"end,omitempty"`
	Category   EventCategory   `json:"category" validate:"required,oneof=parenting school sports medical other"`
	Notes      string          `json:"notes,omitempty"`
	CreatorID  string          `json:"creatorId"`
	AssignedTo string          `json:"assignedTo,omitempty"`
	ChildName  string          `json:"childName,omitempty"`
	AuditLog   []AuditLogEntry `json:"auditLog,omitempty"`
}

// PendingInvite is a link request awaiting a response.
type PendingInvite struct {
	ID            string `json:"id"`
	RequesterID   string `json:"requesterId"`
	RequesterName string `json:"requesterName"`
	CreatedAt     string `json:"createdAt"`
}

// ParentingPlanTemplate describes a custody rotation. Pattern holds
// one slot per day of the cycle: 0 for Parent A, 1 for Parent B.
type ParentingPlanTemplate struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	CycleLengthDays int    `json:"cycleLengthDays"`
	Pattern         []int  `json:"pattern"`
}

// Key implementations let the merge engine treat every replicated
// collection uniformly.

func (r Report) Key() string           { return r.ID }
func (d StoredDocument) Key() string   { return d.ID }
func (t IncidentTemplate) Key() string { return t.ID }
func (m Message) Key() string          { return m.ID }
func (e SharedEvent) Key() string      { return e.ID }
func (p PendingInvite) Key() string    { return p.ID }

// SyncData is the full per-user snapshot the backend returns on sync.
type SyncData struct {
	Reports      []Report           `json:"reports"`
	Documents    []StoredDocument   `json:"documents"`
	Templates    []IncidentTemplate `json:"templates"`
	Profile      *UserProfile       `json:"profile"`
	LinkedUserID string             `json:"linkedUserId,omitempty"`
}
