package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/engine"
	"inkwell/internal/gateway"
	"inkwell/internal/models"
	"inkwell/internal/utils"
)

const MinPasswordLen = 6

var (
	ErrEmailTaken         = errors.New("邮箱已注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
)

// AccountService 注册、登录和个人设置
type AccountService struct {
	users   gateway.UserStore
	timeout time.Duration
}

func NewAccountService(users gateway.UserStore, timeout time.Duration) *AccountService {
	if timeout <= 0 {
		timeout = engine.DefaultTimeout
	}
	return &AccountService{users: users, timeout: timeout}
}

// Identity 把用户记录转换成引擎使用的身份
func Identity(u *models.User) *engine.Identity {
	if u == nil {
		return nil
	}
	return &engine.Identity{ID: u.ID, Email: u.Email, DisplayName: u.Username, AvatarURL: u.AvatarURL}
}

func gatewayErr(op string, err error) error {
	if errors.Is(err, gateway.ErrNotFound) {
		return &engine.Error{Kind: engine.NotFound, Op: op, Err: err}
	}
	return &engine.Error{Kind: engine.GatewayError, Op: op, Err: err}
}

// Register 用户名默认取邮箱 @ 前缀
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.User, error) {
	const op = "services.Register"
	email = strings.ToLower(strings.TrimSpace(email))
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, invalid(op, "邮箱格式不正确")
	}
	if len(password) < MinPasswordLen {
		return nil, invalid(op, "密码至少6位")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:             parts[0],
		Email:                email,
		Password:             hash,
		NotificationSettings: models.DefaultNotificationSettings(),
		PrivacySettings:      models.DefaultPrivacySettings(),
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			return nil, &engine.Error{Kind: engine.Invalid, Op: op, Err: ErrEmailTaken}
		}
		return nil, gatewayErr(op, err)
	}
	return u, nil
}

func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	const op = "services.Authenticate"
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, &engine.Error{Kind: engine.Unauthenticated, Op: op, Err: ErrInvalidCredentials}
		}
		return nil, gatewayErr(op, err)
	}
	if !utils.CheckPasswordHash(password, u.Password) {
		return nil, &engine.Error{Kind: engine.Unauthenticated, Op: op, Err: ErrInvalidCredentials}
	}
	return u, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, gatewayErr("services.GetUser", err)
	}
	return u, nil
}

type ProfileInput struct {
	Username  string `json:"username" form:"username"`
	Bio       string `json:"bio" form:"bio"`
	AvatarURL string `json:"avatar_url" form:"avatar_url"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, who *engine.Identity, in ProfileInput) (*models.User, error) {
	const op = "services.UpdateProfile"
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, invalid(op, "用户名不能为空")
	}
	if len([]rune(in.Bio)) > 200 {
		return nil, invalid(op, "个人简介最多200字")
	}
	return s.update(ctx, op, who, func(u *models.User) {
		u.Username = username
		u.Bio = strings.TrimSpace(in.Bio)
		u.AvatarURL = strings.TrimSpace(in.AvatarURL)
	}, "username", "bio", "avatar_url")
}

func (s *AccountService) UpdateNotifications(ctx context.Context, who *engine.Identity, in models.NotificationSettings) (*models.User, error) {
	return s.update(ctx, "services.UpdateNotifications", who, func(u *models.User) {
		u.NotificationSettings = in
	}, "notification_settings")
}

func (s *AccountService) UpdatePrivacy(ctx context.Context, who *engine.Identity, in models.PrivacySettings) (*models.User, error) {
	return s.update(ctx, "services.UpdatePrivacy", who, func(u *models.User) {
		u.PrivacySettings = in
	}, "privacy_settings")
}

// ChangePassword 先用 bcrypt 校验当前密码
func (s *AccountService) ChangePassword(ctx context.Context, who *engine.Identity, current, next string) error {
	const op = "services.ChangePassword"
	if who == nil {
		return &engine.Error{Kind: engine.Unauthenticated, Op: op}
	}
	if len(next) < MinPasswordLen {
		return invalid(op, "新密码至少6位")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.users.GetUser(ctx, who.ID)
	if err != nil {
		return gatewayErr(op, err)
	}
	if !utils.CheckPasswordHash(current, u.Password) {
		return invalid(op, "当前密码错误")
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	u.Password = hash
	if err := s.users.UpdateUser(ctx, u, "password"); err != nil {
		return gatewayErr(op, err)
	}
	return nil
}

func (s *AccountService) update(ctx context.Context, op string, who *engine.Identity, apply func(u *models.User), columns ...string) (*models.User, error) {
	if who == nil {
		return nil, &engine.Error{Kind: engine.Unauthenticated, Op: op}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.users.GetUser(ctx, who.ID)
	if err != nil {
		return nil, gatewayErr(op, err)
	}
	apply(u)
	if err := s.users.UpdateUser(ctx, u, columns...); err != nil {
		return nil, gatewayErr(op, err)
	}
	return u, nil
}
