package statement

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kdunlop/statement-scan/internal/extract"
	"github.com/kdunlop/statement-scan/internal/scanning"
)

// IDGenerator generates unique IDs for uploads and reports
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the wall clock
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service drives the upload workflow: store the original file, run OCR,
// classify the extracted lines into transaction candidates, and on
// request submit those candidates to the transaction store.
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	persister   *BulkPersister
	classifier  *extract.Classifier
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with the default classifier, ID
// generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, persister *BulkPersister) *Service {
	return NewServiceWithDeps(
		db, scanner, storage, persister,
		extract.NewClassifier(extract.NewLineParser()),
		&uuidGenerator{}, &defaultTimeSource{},
	)
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(
	db DB,
	scanner scanning.Scanner,
	storage Storage,
	persister *BulkPersister,
	classifier *extract.Classifier,
	idGen IDGenerator,
	timeSrc TimeSource,
) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		persister:   persister,
		classifier:  classifier,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters
// and truncating length; phone-generated names get very long
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = strings.TrimSpace(reg.ReplaceAllString(base, " "))

	const maxLen = 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "upload"
	}

	return base + ext
}

// ProcessUpload stores the file, runs the OCR scanner over it and
// classifies the result into transaction candidates. An OCR failure is
// a hard failure of the whole upload; an upload that yields no
// candidates is not an error, the caller decides how to present it.
func (s *Service) ProcessUpload(filename string, data []byte, contentType string) (*Upload, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	result, err := s.scanner.ExtractText(data, contentType)
	if err != nil {
		slog.Error("Failed to extract text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// No candidates without text; drop the stored file too.
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	candidates := s.classifier.Classify(result.LineItems())

	upload := &Upload{
		ID:          id,
		Filename:    savedPath,
		ContentType: contentType,
		Text:        result.Text,
		Candidates:  candidates,
		CreatedAt:   now,
	}

	if err := s.db.SaveUpload(upload); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving upload to database: %w", err)
	}

	slog.Info("Processed upload",
		"upload_id", id,
		"lines", len(result.LineItems()),
		"candidates", len(candidates),
	)

	return upload, nil
}

// SaveExtracted submits the candidates of a processed upload to the
// transaction store and records the aggregate report. The report comes
// back even when every save failed; only a missing upload is an error.
func (s *Service) SaveExtracted(ctx context.Context, uploadID string) (*SaveReport, error) {
	upload, err := s.db.GetUpload(uploadID)
	if err != nil {
		return nil, fmt.Errorf("getting upload: %w", err)
	}

	report := s.persister.PersistAll(ctx, upload.Candidates)
	report.ID = s.idGenerator.Generate()
	report.UploadID = upload.ID
	report.CreatedAt = s.timeSource.Now()

	if err := s.db.SaveReport(&report); err != nil {
		// The saves already settled; the report is still worth returning.
		slog.Warn("Failed to store save report", "upload_id", uploadID, "error", err)
	}

	if report.Failed > 0 {
		slog.Warn("Some transactions failed to save",
			"upload_id", uploadID,
			"succeeded", report.Succeeded,
			"failed", report.Failed,
		)
	}

	return &report, nil
}

// GetUpload retrieves an upload by ID
func (s *Service) GetUpload(id string) (*Upload, error) {
	upload, err := s.db.GetUpload(id)
	if err != nil {
		return nil, fmt.Errorf("getting upload: %w", err)
	}
	return upload, nil
}

// ListUploads returns all uploads
func (s *Service) ListUploads() ([]*Upload, error) {
	uploads, err := s.db.ListUploads()
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	return uploads, nil
}

// DeleteUpload removes an upload and its stored file
func (s *Service) DeleteUpload(id string) error {
	upload, err := s.db.GetUpload(id)
	if err != nil {
		return fmt.Errorf("getting upload for deletion: %w", err)
	}

	if err := s.storage.Delete(upload.Filename); err != nil {
		slog.Warn("Failed to delete file", "filename", upload.Filename, "error", err)
	}

	if err := s.db.DeleteUpload(id); err != nil {
		return fmt.Errorf("deleting upload from database: %w", err)
	}
	return nil
}

// GetUploadFile retrieves the original file for an upload
func (s *Service) GetUploadFile(id string) ([]byte, string, error) {
	upload, err := s.db.GetUpload(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting upload: %w", err)
	}

	data, err := s.storage.Get(upload.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting upload file: %w", err)
	}

	return data, upload.ContentType, nil
}

// GetReport retrieves a save report by ID
func (s *Service) GetReport(id string) (*SaveReport, error) {
	report, err := s.db.GetReport(id)
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return report, nil
}

// ListReports returns all save reports
func (s *Service) ListReports() ([]*SaveReport, error) {
	reports, err := s.db.ListReports()
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return reports, nil
}
