package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vnkhanh/devlearn-backend/models"
)

const minPasswordLength = 6

var errInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "Invalid email or password"}

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Register tạo tài khoản mới (mặc định role student)
func (s *UserStore) Register(ctx context.Context, email, password, fullName string, role models.UserRole) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < minPasswordLength {
		return nil, NewValidationError("password: must be at least 6 characters.", nil)
	}
	if role == "" {
		role = models.RoleStudent
	}

	user := models.User{
		FullName: strings.TrimSpace(fullName),
		Email:    email,
		Role:     role,
	}
	if err := validationError(user.Validate()); err != nil {
		return nil, err
	}

	// Check email tồn tại
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, storeError(err, "User not found")
	}
	if count > 0 {
		return nil, NewValidationError("Email already in use", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewInternalError("cannot hash password", err)
	}
	user.Password = string(hashed)

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storeError(err, "User not found")
	}
	return &user, nil
}

// Authenticate kiểm tra email/mật khẩu; sai thông tin trả Unauthorized, tài khoản khóa trả Forbidden
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, storeError(err, "User not found")
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errInvalidCredentials
	}
	if !user.IsActive() {
		return nil, &Error{Kind: KindForbidden, Message: "Account is suspended"}
	}
	return &user, nil
}

// FindOrCreateByEmail dùng cho đăng nhập Google: chưa có thì tạo user không mật khẩu
func (s *UserStore) FindOrCreateByEmail(ctx context.Context, email, fullName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &Error{Kind: KindUnauthorized, Message: "Google account has no email"}
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		if !user.IsActive() {
			return nil, &Error{Kind: KindForbidden, Message: "Account is suspended"}
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeError(err, "User not found")
	}

	if strings.TrimSpace(fullName) == "" {
		fullName = email
	}
	user = models.User{
		Email:    email,
		FullName: fullName,
		Role:     models.RoleStudent,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storeError(err, "User not found")
	}
	return &user, nil
}

// EnsureAdmin tạo tài khoản admin nếu email chưa tồn tại; đã có thì giữ nguyên
func (s *UserStore) EnsureAdmin(ctx context.Context, email, password string) (*models.User, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, storeError(err, "User not found")
	}

	created, err := s.Register(ctx, email, password, "Admin", models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
