package upload

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"tradelink/internal/domain"
)

const keyPrefix = "uploads/"

// contentTypes is the extension whitelist for chat attachments.
var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"webm": "audio/webm",
	"pdf":  "application/pdf",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"zip":  "application/zip",
}

// Ticket is what a client needs to PUT a file and then reference it.
type Ticket struct {
	UploadID    string    `json:"upload_id"`
	UploadURL   string    `json:"upload_url"`
	PublicURL   string    `json:"public_url"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Service struct {
	db        *gorm.DB
	presigner Presigner
	ttl       time.Duration
	log       zerolog.Logger
}

// NewService accepts a nil presigner; every issue call then reports
// ErrStorageDisabled.
func NewService(db *gorm.DB, presigner Presigner, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		db:        db,
		presigner: presigner,
		ttl:       ttl,
		log:       log.With().Str("component", "upload").Logger(),
	}
}

func ContentTypeFor(ext string) (string, bool) {
	ct, ok := contentTypes[normalizeExt(ext)]
	return ct, ok
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func (s *Service) Issue(ctx context.Context, userID int64, ext string) (*Ticket, error) {
	if s.presigner == nil {
		return nil, ErrStorageDisabled
	}
	ext = normalizeExt(ext)
	contentType, ok := contentTypes[ext]
	if !ok {
		return nil, ErrExtensionNotAllowed
	}

	id := uuid.NewString()
	key := keyPrefix + id + "." + ext
	signed, err := s.presigner.PresignPut(key, contentType, s.ttl)
	if err != nil {
		return nil, err
	}

	record := &domain.Upload{
		ID:          id,
		UserID:      userID,
		ObjectKey:   key,
		URL:         s.presigner.PublicURL(key),
		ContentType: contentType,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}

	s.log.Debug().Int64("user_id", userID).Str("key", key).Msg("upload url issued")
	return &Ticket{
		UploadID:    id,
		UploadURL:   signed,
		PublicURL:   record.URL,
		ObjectKey:   key,
		ContentType: contentType,
		ExpiresAt:   time.Now().UTC().Add(s.ttl),
	}, nil
}

// ListMine returns the caller's issued uploads, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Upload, error) {
	var uploads []domain.Upload
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&uploads).Error
	return uploads, err
}
