package service

import (
	"context"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/storage"
	"github.com/stockpile-hq/stockpile/internal/validation"
)

// FileService stores uploads for file attributes in object storage and
// records the object key as the value's link.
type FileService struct {
	attributeService *AttributeService
	storage          storage.Storage
	maxSize          int64
}

// NewFileService accepts a nil storage; uploads then fail with a validation error.
func NewFileService(attributeService *AttributeService, storage storage.Storage, maxSize int64) *FileService {
	return &FileService{
		attributeService: attributeService,
		storage:          storage,
		maxSize:          maxSize,
	}
}

func (s *FileService) Enabled() bool {
	return s.storage != nil
}

// Upload saves the file and creates a file value on the attribute on behalf
// of principal. The object is removed again if the value cannot be stored.
func (s *FileService) Upload(ctx context.Context, principal model.Principal, attributeID string, assetInstanceID *string, file multipart.File, header *multipart.FileHeader) (*model.FileValue, error) {
	if !s.Enabled() {
		return nil, validationError("file", "file storage is not configured")
	}

	attr, err := s.attributeService.Definition(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	if !attr.VisibleTo(principal.OrganizationID) {
		return nil, notFoundError("attribute not found", nil)
	}
	if attr.Type != model.AttributeTypeFile {
		return nil, &Error{
			Kind:    KindTypeMismatch,
			Field:   "type",
			Message: "attribute " + strconv.Quote(attr.Name) + " is not a file attribute",
		}
	}

	contentType, err := validation.DetectFile(header, s.maxSize, validation.AttachmentKinds...)
	if err != nil {
		return nil, validationError("file", err.Error())
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := path.Join("attributes", attr.ID, uuid.New().String()+ext)

	err = s.storage.Save(ctx, key, file, contentType)
	if err != nil {
		slog.Error("failed to save file", "error", err, "attribute_id", attr.ID)
		return nil, storageError(err)
	}

	value, err := s.attributeService.CreateAttributeValueFor(ctx, principal, CreateValueInput{
		AttributeID:     attr.ID,
		AssetInstanceID: assetInstanceID,
		Type:            model.AttributeTypeFile,
		Value:           key,
	})
	if err != nil {
		delErr := s.storage.Delete(ctx, key)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "key", key)
		}
		return nil, err
	}

	fv := value.(*model.FileValue)
	s.sign(ctx, fv)
	return fv, nil
}

// SignValues fills in download URLs for every file value in the aggregates.
func (s *FileService) SignValues(ctx context.Context, attrs ...*model.AttributeWithValues) {
	if !s.Enabled() {
		return
	}
	for _, attr := range attrs {
		if attr.Type != model.AttributeTypeFile {
			continue
		}
		for _, v := range attr.Values {
			if fv, ok := v.(*model.FileValue); ok {
				s.sign(ctx, fv)
			}
		}
	}
}

func (s *FileService) sign(ctx context.Context, fv *model.FileValue) {
	url, err := s.storage.URL(ctx, fv.Link)
	if err != nil {
		slog.Warn("failed to presign file value", "error", err, "value_id", fv.ID)
	}
	fv.URL = url
}
