package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TowLinkDrive/TowLinkDrive/internal/common/auth"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/config"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/logger"
	"github.com/google/uuid"
)

// ErrInvalidCredentials 用户名不存在或密码错误（对外不区分两种情况）。
var ErrInvalidCredentials = errors.New("invalid username or password")

// Store 账号持久化端口（*Repo 实现）。
type Store interface {
	Create(ctx context.Context, a *Account) error
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
}

// Service 账号注册与登录：密码校验通过后签发 access token。
type Service struct {
	store    Store
	auth     config.AuthConfig
	tokenTTL time.Duration
	log      logger.Logger
}

func NewService(store Store, authCfg config.AuthConfig, log logger.Logger) *Service {
	return &Service{
		store:    store,
		auth:     authCfg,
		tokenTTL: 24 * time.Hour,
		log:      log,
	}
}

// RegisterInput 注册入参。
type RegisterInput struct {
	Username string
	Password string
	Nickname string
	Phone    string
	Email    string
	Roles    []string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("username required")
	}
	if in.Password == "" {
		return nil, fmt.Errorf("password required")
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, err
	}

	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{RoleCustomer}
	}

	a := &Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Nickname:     strings.TrimSpace(in.Nickname),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.TrimSpace(in.Email),
		Roles:        RolesJoin(roles),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// TokenResult 登录成功后签发的 access token。
type TokenResult struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticate 校验用户名密码，成功则签发 HS256 access token。
// subject 是账号 ID，roles 进 claims（网关 RBAC 拦截器消费）。
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, *TokenResult, error) {
	if s == nil || s.store == nil {
		return nil, nil, fmt.Errorf("service not initialized")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	a, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		// 不泄露“用户不存在”与“密码错误”的差别
		return nil, nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, a.PasswordSalt, a.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	token, expiresAt, err := auth.GenerateAccessToken(s.auth, a.ID, a.RolesSlice(), s.tokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("issue access token: %w", err)
	}
	return a, &TokenResult{Token: token, ExpiresAt: expiresAt}, nil
}
