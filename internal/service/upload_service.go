package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mycoseed/internal/model"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/pkg/storage"
	"mycoseed/internal/repository"
)

const MaxUploadSize = 5 << 20

var postImageExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type UploadFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type UploadResult struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

type UploadService struct {
	store   repository.Store
	authz   *Authorizer
	storage storage.Service
	now     func() time.Time
}

func NewUploadService(store repository.Store, st storage.Service) *UploadService {
	return &UploadService{store: store, authz: NewAuthorizer(store), storage: st, now: time.Now}
}

// UploadAvatar 上传头像并更新用户资料
func (s *UploadService) UploadAvatar(ctx context.Context, userID string, f UploadFile) (*UploadResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	ct := normalizeContentType(f.ContentType)
	if !strings.HasPrefix(ct, "image/") {
		return nil, invalid("只能上传图片")
	}
	ext, ok := postImageExt[ct]
	if !ok {
		ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), ".")
	}
	if ext == "" {
		return nil, invalid("无法识别的图片格式")
	}

	key := fmt.Sprintf("avatars/%s/%d.%s", userID, s.now().UnixMilli(), ext)
	res, err := s.put(ctx, key, ct, f.Body)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateAvatar(ctx, userID, res.URL); err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	return res, nil
}

// UploadPostImage 成员为动态上传第 index 张配图，postID 由客户端预先生成
func (s *UploadService) UploadPostImage(ctx context.Context, communityID, userID, postID string, index int, f UploadFile) (*UploadResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if _, err := getCommunity(ctx, s.store, communityID); err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(postID); err != nil {
		return nil, invalid("postId 格式错误")
	}
	if index < 0 || index >= model.MaxPostImages {
		return nil, invalid(fmt.Sprintf("图片序号需在0到%d之间", model.MaxPostImages-1))
	}
	ct := normalizeContentType(f.ContentType)
	ext, ok := postImageExt[ct]
	if !ok {
		return nil, invalid("仅支持 jpeg/png/gif/webp 格式")
	}

	key := fmt.Sprintf("community-posts/%s/%s/%d_%d.%s", communityID, postID, s.now().UnixMilli(), index, ext)
	return s.put(ctx, key, ct, f.Body)
}

func (s *UploadService) put(ctx context.Context, key, contentType string, body io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, invalid("文件不能为空")
	}
	if len(data) > MaxUploadSize {
		return nil, invalid("文件不能超过5MB")
	}
	sum := sha256.Sum256(data)

	url, err := s.storage.PutObject(ctx, storage.UploadInput{
		Key:         key,
		ContentType: contentType,
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}
	logger.Debugw("object uploaded", "key", key, "size", len(data))
	return &UploadResult{URL: url, Key: key, Hash: hex.EncodeToString(sum[:]), Size: int64(len(data))}, nil
}

func normalizeContentType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
