package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a prefixed uuid, e.g. "evt_5f3a...". The prefix makes
// ids self-describing in logs and in the remote store.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.New().String())
}

// ID prefixes per entity
const (
	PrefixReport   = "rep"
	PrefixDocument = "doc"
	PrefixTemplate = "tpl"
	PrefixEvent    = "evt"
	PrefixPlan     = "plan"
	PrefixMessage  = "msg"
	PrefixTemp     = "temp"
)

// IsTempID reports whether an id was minted for an optimistic message
// insert and has not been confirmed by the backend yet.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, PrefixTemp+"_")
}

type SubscriptionTier string

const (
	TierFree SubscriptionTier = "Free"
	TierPlus SubscriptionTier = "Plus"
	TierPro  SubscriptionTier = "Pro"
)

// IncidentCategory values are display strings. The remote store and the
// UI both key on them, so they stay human-readable.
type IncidentCategory string

const (
	CategoryCommunicationIssue  IncidentCategory = "Communication Issue"
	CategorySchedulingConflict  IncidentCategory = "Scheduling Conflict"
	CategoryFinancialDispute    IncidentCategory = "Financial Dispute"
	CategoryMissedVisitation    IncidentCategory = "Missed Visitation"
	CategoryAlienationConcern   IncidentCategory = "Parental Alienation Concern"
	CategoryChildWellbeing      IncidentCategory = "Child Wellbeing"
	CategoryLegalDocumentation  IncidentCategory = "Legal Documentation"
	CategoryOther               IncidentCategory = "Other"
)

type DocumentFolder string

const (
	FolderDraftedMotions   DocumentFolder = "Drafted Motions"
	FolderForensicAnalyses DocumentFolder = "Forensic Analyses"
	FolderEvidencePackages DocumentFolder = "Evidence Packages"
	FolderUserUploads      DocumentFolder = "User Uploads"
	FolderRiskAssessments  DocumentFolder = "Risk Assessments"
)

type EventCategory string

const (
	EventCategoryParenting EventCategory = "parenting"
	EventCategorySchool    EventCategory = "school"
	EventCategorySports    EventCategory = "sports"
	EventCategoryMedical   EventCategory = "medical"
	EventCategoryOther     EventCategory = "other"
)

type AuditAction string

const (
	AuditActionCreated AuditAction = "created"
	AuditActionEdited  AuditAction = "edited"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusRejected InviteStatus = "REJECTED"
)

// ItemKind names the replicated collections a saveItems call can carry.
type ItemKind string

const (
	ItemKindReports   ItemKind = "reports"
	ItemKindDocuments ItemKind = "documents"
	ItemKindTemplates ItemKind = "templates"
	ItemKindProfile   ItemKind = "profile"
)
