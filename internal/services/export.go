package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spservicesgroupinc-blip/custodyx/internal/models"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var exportLog = logger.New("EXPORT")

// Archiver stores a copy of a generated artifact outside the backend.
// Nil-able: archiving is best effort and off by default.
type Archiver interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// ExportService packages the incident log into evidence artifacts.
type ExportService struct {
	ledger   *LedgerService
	items    *ItemService
	archiver Archiver
}

func NewExportService(ledger *LedgerService, items *ItemService, archiver Archiver) *ExportService {
	return &ExportService{ledger: ledger, items: items, archiver: archiver}
}

// incidentWorkbook lays the reports out one row per incident.
func incidentWorkbook(reports []models.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			exportLog.Error("failed to close workbook: %v", err)
		}
	}()

	sheet := "Sheet1"
	headers := []string{"Created", "Category", "Tags", "Content", "Legal Context"}
	for i, header := range headers {
		col := string(rune('A' + i))
		f.SetCellValue(sheet, col+"1", header)
	}

	for i, r := range reports {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.CreatedAt)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(r.Category))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), joinTags(r.Tags))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Content)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.LegalContext)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer.Bytes(), nil
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}

// EvidencePackage exports the full incident log as an XLSX workbook,
// files it under Evidence Packages, and archives a copy when an
// archiver is configured. The export is billable.
func (s *ExportService) EvidencePackage(ctx context.Context, store *state.Store) (models.StoredDocument, error) {
	var reports []models.Report
	store.View(func(d *state.Data) {
		reports = append([]models.Report(nil), d.Reports...)
	})

	if err := s.ledger.Consume(ctx, store, s.ledger.Costs().CostEvidencePkg); err != nil {
		return models.StoredDocument{}, err
	}

	workbook, err := incidentWorkbook(reports)
	if err != nil {
		return models.StoredDocument{}, err
	}

	now := time.Now().UTC()
	doc := models.StoredDocument{
		Name:      fmt.Sprintf("Evidence Package - %s.xlsx", now.Format("2006-01-02")),
		MimeType:  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:      base64.StdEncoding.EncodeToString(workbook),
		CreatedAt: now.Format(time.RFC3339),
		Folder:    models.FolderEvidencePackages,
	}
	doc = s.items.AddDocument(ctx, store, doc)

	if s.archiver != nil {
		key := fmt.Sprintf("evidence/%s/%s", store.User().UserID, doc.ID)
		if url, err := s.archiver.Upload(ctx, key, workbook, doc.MimeType); err != nil {
			exportLog.Warn("evidence archive failed for %s: %v", doc.ID, err)
		} else {
			exportLog.Success("evidence package archived at %s", url)
		}
	}

	return doc, nil
}

// documentFromStructured renders a structured document into a stored
// one, keeping the structured form attached for later re-rendering.
func documentFromStructured(title string, structured *models.StructuredLegalDocument) models.StoredDocument {
	if title == "" {
		title = structured.Title
	}

	raw, err := json.MarshalIndent(structured, "", "  ")
	if err != nil {
		raw = []byte("{}")
	}

	now := time.Now().UTC()
	return models.StoredDocument{
		Name:           fmt.Sprintf("%s - %s.txt", title, now.Format("2006-01-02")),
		MimeType:       "text/plain",
		Data:           base64.StdEncoding.EncodeToString(raw),
		CreatedAt:      now.Format(time.RFC3339),
		Folder:         models.FolderDraftedMotions,
		StructuredData: structured,
	}
}
