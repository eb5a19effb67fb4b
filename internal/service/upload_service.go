package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/observability"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

// FileStorage abstracts the attachment store. The byte transfer itself lives
// outside the core; the core only validates, records and authorizes.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService validates and records attachment uploads and authorizes
// downloads through the access evaluator.
type UploadService interface {
	Store(ctx context.Context, file *multipart.FileHeader, courseID *uint, principal models.Principal) (dto.UploadResponse, error)
	Download(ctx context.Context, id uint, principal models.Principal) (dto.UploadResponse, error)
}

type uploadService struct {
	storage FileStorage
	repo    repository.UploadRepository
	access  AccessEvaluator
	maxSize int64
	logger  zerolog.Logger
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, repo repository.UploadRepository, access AccessEvaluator, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploadService{
		storage: storage,
		repo:    repo,
		access:  access,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "upload_service").Logger(),
	}
}

func (s *uploadService) Store(ctx context.Context, file *multipart.FileHeader, courseID *uint, principal models.Principal) (dto.UploadResponse, error) {
	if file == nil {
		return dto.UploadResponse{}, apperr.New(apperr.KindValidation, "file is required")
	}

	if file.Size > s.maxSize {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return dto.UploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	if !isAllowedType(mime.String()) {
		observability.UploadsRejected().WithLabelValues("type").Inc()
		return dto.UploadResponse{}, fmt.Errorf("%w: %s", ErrUploadTypeNotAllowed, mime.String())
	}

	name := sanitizeFileName(file.Filename)
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadsRejected().WithLabelValues("storage").Inc()
		return dto.UploadResponse{}, err
	}

	checksum := sha256.Sum256(buf.Bytes())
	record := models.UploadRecord{
		FileName:   name,
		URL:        url,
		MimeType:   mime.String(),
		SizeBytes:  int64(buf.Len()),
		Checksum:   hex.EncodeToString(checksum[:]),
		UploaderID: principal.ID,
		CourseID:   courseID,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return dto.UploadResponse{}, err
	}

	observability.UploadsTotal().WithLabelValues(mime.String()).Inc()
	s.logger.Info().Uint("upload_id", record.ID).Str("file_name", name).Msg("upload stored")

	return newUploadResponse(record), nil
}

// Download authorizes access to a stored file and returns its metadata,
// including the URL the host service streams from.
func (s *uploadService) Download(ctx context.Context, id uint, principal models.Principal) (dto.UploadResponse, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UploadResponse{}, apperr.New(apperr.KindNotFound, "file %d not found", id)
		}
		return dto.UploadResponse{}, err
	}

	if err := s.access.CanDownloadUpload(ctx, principal, record); err != nil {
		return dto.UploadResponse{}, err
	}

	return newUploadResponse(record), nil
}

func newUploadResponse(record models.UploadRecord) dto.UploadResponse {
	return dto.UploadResponse{
		ID:        record.ID,
		FileName:  record.FileName,
		URL:       record.URL,
		MimeType:  record.MimeType,
		SizeBytes: record.SizeBytes,
		Checksum:  record.Checksum,
		CreatedAt: record.CreatedAt,
	}
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func isAllowedType(mime string) bool {
	switch strings.ToLower(mime) {
	case "application/pdf", "application/zip", "application/x-zip-compressed", "text/plain; charset=utf-8", "text/plain":
		return true
	}
	return strings.HasPrefix(strings.ToLower(mime), "image/")
}
