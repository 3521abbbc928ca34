package minio

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"

	"github.com/pribylovaa/videotube-accounts/internal/storage"
)

// UploadURL генерирует presigned PUT URL для загрузки изображения.
// Валидирует contentType и contentLength согласно конфигу, формирует ключ
// вида "<kind>/<accountID>/<uuid>.<ext>" и возвращает также набор заголовков,
// которые клиент должен передать при PUT (проверяются при подтверждении).
func (s *MediaStorage) UploadURL(ctx context.Context, kind storage.MediaKind, accountID uuid.UUID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "storage/minio/media/UploadURL"

	if contentLength <= 0 || contentLength > s.media.MaxSizeBytes {
		return nil, storage.ErrInvalidArgument
	}

	if !isAllowedContentType(s.media.AllowedContentTypes, contentType) {
		return nil, storage.ErrInvalidArgument
	}

	var ext string
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}

	key := path.Join(string(kind), accountID.String(), uuid.NewString()+ext)

	url, err := s.client.PresignedPutObject(ctx, s.s3.Bucket, key, s.s3.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage.UploadInfo{
		UploadURL: url.String(),
		Key:       key,
		Expires:   s.s3.PresignTTL,
		RequiredHeader: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": fmt.Sprintf("%d", contentLength),
		},
	}, nil
}

// CheckUpload подтверждает факт загрузки по key: объект существует,
// принадлежит аккаунту и удовлетворяет ограничениям размера/типа.
// Возвращает публичный URL (если PublicBaseURL задан), иначе пустую строку.
func (s *MediaStorage) CheckUpload(ctx context.Context, kind storage.MediaKind, accountID uuid.UUID, key string) (string, error) {
	const op = "storage/minio/media/CheckUpload"

	prefix := string(kind) + "/" + accountID.String() + "/"
	if !strings.HasPrefix(key, prefix) {
		return "", storage.ErrInvalidArgument
	}

	objInfo, err := s.client.StatObject(ctx, s.s3.Bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		errResp := mclient.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return "", storage.ErrMediaNotFound
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if objInfo.Size <= 0 || objInfo.Size > s.media.MaxSizeBytes {
		return "", storage.ErrInvalidArgument
	}

	if ct := objInfo.ContentType; ct != "" && !isAllowedContentType(s.media.AllowedContentTypes, ct) {
		return "", storage.ErrInvalidArgument
	}

	if s.s3.PublicBaseURL == "" {
		return "", nil
	}

	base := strings.TrimRight(s.s3.PublicBaseURL, "/")

	return base + "/" + key, nil
}

// isAllowedContentType проверяет, что тип содержимого входит в allow-list.
func isAllowedContentType(allow []string, contentType string) bool {
	for _, a := range allow {
		if a == contentType {
			return true
		}
	}

	return false
}
