package services

import (
	"community_tool_share/apperr"
	"community_tool_share/db"
	"community_tool_share/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	base
	bcryptCost int
}

type RegisterInput struct {
	Username    string
	Password    string
	DisplayName string
	Phone       string
}

type ProfilePatch struct {
	DisplayName *string
	Avatar      *string
	Phone       *string
}

var errBadCredentials = apperr.Unauthorized("Invalid username or password")

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return nil, apperr.Validation("username must be 3-50 characters")
	}
	if len(in.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}
	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(err, "hash password")
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  display,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}
	err = s.repo.Transaction(ctx, func(tx *db.Repo) error {
		exists, err := tx.UsernameExists(ctx, username)
		if err != nil {
			return apperr.Wrap(err, "check username")
		}
		if exists {
			return apperr.Business("Username already exists")
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			if db.IsDuplicate(err) {
				return apperr.Business("Username already exists")
			}
			return apperr.Wrap(err, "create user")
		}
		if _, err := tx.AddPoints(ctx, u.ID, PointsRegister, models.PointBonus, "Registration bonus points"); err != nil {
			return apperr.Wrap(err, "award registration points")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.Points = PointsRegister
	s.log.Info("user registered", "user", u.ID, "username", u.Username)
	return u, nil
}

// Login 用户不存在和密码错误返回同一个错误
func (s *UserService) Login(ctx context.Context, username, password, ip, ua string) (*models.User, error) {
	u, err := s.repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, apperr.Wrap(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errBadCredentials
		}
		return nil, apperr.Wrap(err, "compare password")
	}
	if !u.IsActive() {
		return nil, apperr.Forbidden("Account is disabled")
	}
	if err := s.RecordLogin(ctx, u.ID, ip, ua); err != nil {
		return nil, err
	}
	return u, nil
}

// RecordLogin 密码和 Passkey 登录共用
func (s *UserService) RecordLogin(ctx context.Context, userID, ip, ua string) error {
	if len(ua) > 255 {
		ua = ua[:255]
	}
	if err := s.repo.TouchUserLogin(ctx, userID, ip, ua); err != nil {
		return apperr.Wrap(err, "touch login")
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "User", "id", userID)
	}
	return u, nil
}

// ActiveUser 会话解析用：用户必须存在且未被禁用
func (s *UserService) ActiveUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Session user no longer exists")
		}
		return nil, err
	}
	if !u.IsActive() {
		return nil, apperr.Forbidden("Account is disabled")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, p ProfilePatch) (*models.User, error) {
	fields := map[string]any{}
	if p.DisplayName != nil {
		d := strings.TrimSpace(*p.DisplayName)
		if d == "" || utf8.RuneCountInString(d) > 50 {
			return nil, apperr.Validation("nickname must be 1-50 characters")
		}
		fields["display_name"] = d
	}
	if p.Avatar != nil {
		fields["avatar"] = strings.TrimSpace(*p.Avatar)
	}
	if p.Phone != nil {
		fields["phone"] = strings.TrimSpace(*p.Phone)
	}
	if err := s.repo.UpdateUserProfile(ctx, userID, fields); err != nil {
		return nil, lookupErr(err, "User", "id", userID)
	}
	return s.Profile(ctx, userID)
}

func (s *UserService) List(ctx context.Context, q string, page, size int) (db.ListUsersResult, error) {
	res, err := s.repo.ListUsers(ctx, q, page, size)
	if err != nil {
		return db.ListUsersResult{}, apperr.Wrap(err, "list users")
	}
	return res, nil
}

// SetStatus 管理员启用/禁用账号，不能禁用自己；会话吊销由调用方负责
func (s *UserService) SetStatus(ctx context.Context, admin Actor, userID string, status int) error {
	if status != models.UserStatusActive && status != models.UserStatusDisabled {
		return apperr.Validation("status must be 0 or 1")
	}
	if userID == admin.ID && status == models.UserStatusDisabled {
		return apperr.Business("You cannot disable your own account")
	}
	return s.repo.Transaction(ctx, func(tx *db.Repo) error {
		if err := tx.SetUserStatus(ctx, userID, status); err != nil {
			return lookupErr(err, "User", "id", userID)
		}
		action := "user.enable"
		if status == models.UserStatusDisabled {
			action = "user.disable"
		}
		if _, err := tx.LogAdminAction(ctx, db.AdminAction{
			ActorID:       admin.ID,
			ActorUsername: admin.Username,
			Action:        action,
			TargetType:    "user",
			TargetID:      userID,
		}); err != nil {
			return apperr.Wrap(err, "audit log")
		}
		return nil
	})
}

// BootstrapAdmins 启动时把配置里的用户名提升为管理员
func (s *UserService) BootstrapAdmins(ctx context.Context, usernames []string) (int64, error) {
	clean := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u = strings.TrimSpace(u); u != "" {
			clean = append(clean, u)
		}
	}
	n, err := s.repo.PromoteAdmins(ctx, clean)
	if err != nil {
		return 0, apperr.Wrap(err, fmt.Sprintf("promote admins %v", clean))
	}
	return n, nil
}
