package services

import (
	"context"
	"time"

	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var itemsLog = logger.New("ITEMS")

// ItemService owns the replicated collections: reports, documents,
// templates, and the profile. Writes apply locally first and persist
// in the background; the local copy is authoritative for the session
// and is never rolled back.
type ItemService struct {
	backend   gateway.Backend
	ledger    *LedgerService
	persister Persister
}

func NewItemService(backend gateway.Backend, ledger *LedgerService, persister Persister) *ItemService {
	return &ItemService{backend: backend, ledger: ledger, persister: persister}
}

// Load pulls the full snapshot from the backend and replaces the local
// collections wholesale. Called once per session, right after login.
func (s *ItemService) Load(ctx context.Context, store *state.Store) error {
	userID := store.User().UserID

	data, err := s.backend.Sync(ctx, userID)
	if err != nil {
		return itemsLog.Error("failed to sync data for %s: %v", userID, err)
	}

	store.Update(func(d *state.Data) {
		d.Reports = data.Reports
		d.Documents = data.Documents
		d.Templates = data.Templates
		d.Profile = data.Profile
		if d.Profile != nil {
			if data.LinkedUserID != "" && d.Profile.LinkedUserID == "" {
				d.Profile.LinkedUserID = data.LinkedUserID
			}
			s.ledger.NormalizeProfile(d.Profile)
		}
	})

	itemsLog.Info("synced %d reports, %d documents, %d templates for %s",
		len(data.Reports), len(data.Documents), len(data.Templates), userID)
	return nil
}

// AddReport appends a report and persists the addition. Reports are
// never edited in place.
func (s *ItemService) AddReport(ctx context.Context, store *state.Store, report models.Report) models.Report {
	if report.ID == "" {
		report.ID = models.NewID(models.PrefixReport)
	}
	if report.CreatedAt == "" {
		report.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	var userID string
	store.Update(func(d *state.Data) {
		d.Reports = append(d.Reports, report)
		userID = d.User.UserID
	})

	s.persister.PersistItems(ctx, userID, models.ItemKindReports, []models.Report{report})
	return report
}

// DeleteReport removes a report locally and persists the survivors
// wholesale.
func (s *ItemService) DeleteReport(ctx context.Context, store *state.Store, reportID string) {
	var userID string
	var remaining []models.Report
	store.Update(func(d *state.Data) {
		kept := d.Reports[:0]
		for _, r := range d.Reports {
			if r.ID != reportID {
				kept = append(kept, r)
			}
		}
		d.Reports = kept
		remaining = append([]models.Report(nil), kept...)
		userID = d.User.UserID
	})

	s.persister.PersistItems(ctx, userID, models.ItemKindReports, remaining)
}

// AddDocument appends a document and persists the addition.
func (s *ItemService) AddDocument(ctx context.Context, store *state.Store, doc models.StoredDocument) models.StoredDocument {
	if doc.ID == "" {
		doc.ID = models.NewID(models.PrefixDocument)
	}
	if doc.CreatedAt == "" {
		doc.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	var userID string
	store.Update(func(d *state.Data) {
		d.Documents = append(d.Documents, doc)
		userID = d.User.UserID
	})

	s.persister.PersistItems(ctx, userID, models.ItemKindDocuments, []models.StoredDocument{doc})
	return doc
}

func (s *ItemService) DeleteDocument(ctx context.Context, store *state.Store, docID string) {
	var userID string
	var remaining []models.StoredDocument
	store.Update(func(d *state.Data) {
		kept := d.Documents[:0]
		for _, doc := range d.Documents {
			if doc.ID != docID {
				kept = append(kept, doc)
			}
		}
		d.Documents = kept
		remaining = append([]models.StoredDocument(nil), kept...)
		userID = d.User.UserID
	})

	s.persister.PersistItems(ctx, userID, models.ItemKindDocuments, remaining)
}

// DocumentContent returns a document's payload, fetching it from the
// backend on first view. Synced documents arrive without data; once
// hydrated the payload stays cached on the local copy.
func (s *ItemService) DocumentContent(ctx context.Context, store *state.Store, docID string) (string, error) {
	var cached string
	var found bool
	userID := store.User().UserID

	store.View(func(d *state.Data) {
		for _, doc := range d.Documents {
			if doc.ID == docID {
				cached = doc.Data
				found = true
				return
			}
		}
	})

	if !found {
		return "", itemsLog.Error("document %s not found", docID)
	}
	if cached != "" {
		return cached, nil
	}

	data, err := s.backend.GetDocumentContent(ctx, userID, docID)
	if err != nil {
		return "", err
	}

	store.Update(func(d *state.Data) {
		for i := range d.Documents {
			if d.Documents[i].ID == docID {
				d.Documents[i].Data = data
				return
			}
		}
	})

	return data, nil
}

// SaveTemplate upserts a template by id and persists the change.
func (s *ItemService) SaveTemplate(ctx context.Context, store *state.Store, tpl models.IncidentTemplate) models.IncidentTemplate {
	if tpl.ID == "" {
		tpl.ID = models.NewID(models.PrefixTemplate)
	}

	var userID string
	store.Update(func(d *state.Data) {
		d.Templates = state.MergeByID(d.Templates, []models.IncidentTemplate{tpl})
		userID = d.User.UserID
	})

	s.persister.PersistItems(ctx, userID, models.ItemKindTemplates, []models.IncidentTemplate{tpl})
	return tpl
}

func (s *ItemService) DeleteTemplate(ctx context.Context, store *state.Store, tplID string) {
	var userID string
	var remaining []models.IncidentTemplate
	store.Update(func(d *state.Data) {
		kept := d.Templates[:0]
		for _, t := range d.Templates {
			if t.ID != tplID {
				kept = append(kept, t)
			}
		}
		d.Templates = kept
		remaining = append([]models.IncidentTemplate(nil), kept...)
		userID = d.User.UserID
	})

	s.persister.PersistItems(ctx, userID, models.ItemKindTemplates, remaining)
}

// SaveProfile applies edits to the case profile while preserving the
// billing fields, which the profile form never carries.
func (s *ItemService) SaveProfile(ctx context.Context, store *state.Store, profile models.UserProfile) models.UserProfile {
	var userID string
	var saved models.UserProfile
	store.Update(func(d *state.Data) {
		if d.Profile != nil {
			profile.Tokens = d.Profile.Tokens
			profile.Tier = d.Profile.Tier
			if profile.LinkedUserID == "" {
				profile.LinkedUserID = d.Profile.LinkedUserID
			}
		}
		s.ledger.NormalizeProfile(&profile)
		d.Profile = &profile
		saved = profile
		userID = d.User.UserID
	})

	s.persister.PersistItems(ctx, userID, models.ItemKindProfile, []models.UserProfile{saved})
	return saved
}
