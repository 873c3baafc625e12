// Package media stores profile avatars in object storage. Profiles keep
// the object key; callers receive short-lived presigned URLs.
package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
)

const (
	signedURLTTL  = 5 * time.Minute
	maxAvatarSize = 5 << 20
)

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	storage ObjectStorage
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewService(storage ObjectStorage, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = signedURLTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		storage: storage,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

// UploadAvatar stores the image and returns its object key.
func (s *Service) UploadAvatar(ctx context.Context, profileID, contentType string, body io.Reader, size int64) (string, error) {
	if profileID == "" || body == nil || size <= 0 {
		return "", errs.Invalid("upload avatar: empty payload")
	}
	if size > maxAvatarSize {
		return "", errs.Invalid("upload avatar: %d bytes exceed the limit of %d", size, maxAvatarSize)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return "", errs.Invalid("upload avatar: content type %q is not allowed", contentType)
	}
	if s.storage == nil {
		return "", fmt.Errorf("media storage is not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	key, err := s.avatarKey(profileID, ext)
	if err != nil {
		return "", fmt.Errorf("build object key: %w", err)
	}
	if err := s.storage.PutObject(ctx, key, body, size, contentType); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

// Delete removes an avatar object. Failures are logged; a leftover object
// is harmless once no profile references it.
func (s *Service) Delete(ctx context.Context, key string) {
	if s.storage == nil || key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete avatar object", zap.String("object_key", key), zap.Error(err))
	}
}

// SignProfiles replaces avatar keys with presigned URLs in place.
func (s *Service) SignProfiles(ctx context.Context, items []model.Profile) {
	signer := s.signer(ctx)
	for i := range items {
		items[i].Avatar = signer(items[i].Avatar)
	}
}

func (s *Service) SignBookmarks(ctx context.Context, items []model.Bookmark) {
	signer := s.signer(ctx)
	for i := range items {
		items[i].Avatar = signer(items[i].Avatar)
	}
}

// SignKey presigns a single key; a failed presign yields "".
func (s *Service) SignKey(ctx context.Context, key string) string {
	return s.signer(ctx)(key)
}

func (s *Service) signer(ctx context.Context) func(string) string {
	signed := make(map[string]string)
	return func(key string) string {
		if key == "" || s.storage == nil {
			return key
		}
		if url, ok := signed[key]; ok {
			return url
		}
		url, err := s.storage.PresignGet(ctx, key, s.ttl)
		if err != nil {
			s.log.Warn("failed to presign avatar", zap.String("object_key", key), zap.Error(err))
			url = ""
		}
		signed[key] = url
		return url
	}
}

func (s *Service) avatarKey(profileID, ext string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}
	stamp := s.now().UTC().Format("20060102T150405")
	return path.Join("profiles", profileID, "avatar", stamp+"_"+hex.EncodeToString(rnd)+ext), nil
}
