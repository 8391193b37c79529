package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/devayla/base-counter/common/logger"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/pinata"
)

type ImageUploader interface {
	Upload(ctx context.Context, name string, content []byte) (*pinata.UploadResult, error)
}

type IPFSService interface {
	UploadImage(ctx context.Context, filename string, content []byte) (*pinata.UploadResult, error)
}

type ipfsService struct {
	uploader ImageUploader
	maxBytes int64
	now      Clock
	logger   *logger.Logger
}

func NewIPFSService(uploader ImageUploader, maxBytes int64, logger *logger.Logger) IPFSService {
	return &ipfsService{
		uploader: uploader,
		maxBytes: maxBytes,
		now:      utcNow,
		logger:   logger.With("component", "ipfs-service"),
	}
}

func (s *ipfsService) UploadImage(ctx context.Context, filename string, content []byte) (*pinata.UploadResult, error) {
	if len(content) == 0 {
		return nil, countererrors.NoFileProvided()
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return nil, countererrors.FileTooLarge()
	}

	name := s.pinName(filename)
	result, err := s.uploader.Upload(ctx, name, content)
	if err != nil {
		s.logger.Error("Image upload failed", "name", name, "size", len(content), "error", err)
		return nil, err
	}

	s.logger.Info("Image pinned", "name", name, "cid", result.CID)
	return result, nil
}

// pinName keeps the client's base filename, or names the share image after
// the upload time.
func (s *ipfsService) pinName(filename string) string {
	name := strings.TrimSpace(filepath.Base(filename))
	if name == "" || name == "." || name == "/" || name == "blob" {
		return fmt.Sprintf("counter-share-%d.png", s.now().UnixMilli())
	}
	return name
}
