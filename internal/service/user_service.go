package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"mycoseed/internal/model"
	"mycoseed/internal/pkg"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/repository"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt 上限
	minUsernameLen = 3
	maxUsernameLen = 32
)

// TokenStore 登录 token 槽位，每个用户只保留最近一次登录的 access token
type TokenStore interface {
	SaveToken(ctx context.Context, userID, token string) error
	GetToken(ctx context.Context, userID string) (string, error)
	ExtendToken(ctx context.Context, userID string) error
	DeleteToken(ctx context.Context, userID string) error
}

type UserService struct {
	store  repository.UserRepo
	tokens TokenStore
	jwt    *pkg.JWT
}

func NewUserService(store repository.UserRepo, tokens TokenStore, jwt *pkg.JWT) *UserService {
	return &UserService{store: store, tokens: tokens, jwt: jwt}
}

func (s *UserService) Register(ctx context.Context, username, name, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return nil, invalid(fmt.Sprintf("用户名长度需在%d到%d之间", minUsernameLen, maxUsernameLen))
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: username, Name: name, Password: string(hash)}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.Infow("user registered", "user_id", u.ID, "username", username)
	return u, nil
}

// Login 校验密码并签发 token，新 token 覆盖旧会话
func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, *model.User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := s.tokens.DeleteToken(ctx, userID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Refresh 用 refresh token 换一对新 token
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.jwt.ParseRefresh(refreshToken)
	if errors.Is(err, pkg.ErrRefreshExpired) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := s.store.GetUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.issue(ctx, claims.UserID)
}

// Authenticate 校验 access token，且必须与槽位中保存的一致；通过后续期
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	claims, err := s.jwt.ParseAccess(accessToken)
	if errors.Is(err, pkg.ErrTokenExpired) {
		return "", ErrSessionExpired
	}
	if err != nil {
		return "", ErrInvalidToken
	}

	stored, err := s.tokens.GetToken(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrSessionExpired
	}
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	if stored != accessToken {
		return "", ErrSessionReplaced
	}
	if err := s.tokens.ExtendToken(ctx, claims.UserID); err != nil {
		logger.Warnw("extend token failed", "user_id", claims.UserID, "err", err)
	}
	return claims.UserID, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ChangePassword 修改成功后清除登录态
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return invalid("原密码错误")
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.Logout(ctx, userID)
}

func (s *UserService) issue(ctx context.Context, userID string) (*pkg.Pair, error) {
	pair, err := s.jwt.GeneratePair(userID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.tokens.SaveToken(ctx, userID, pair.AccessToken); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return pair, nil
}

func checkPassword(p string) error {
	if n := len(p); n < minPasswordLen || n > maxPasswordLen {
		return invalid(fmt.Sprintf("密码长度需在%d到%d之间", minPasswordLen, maxPasswordLen))
	}
	return nil
}
