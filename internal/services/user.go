package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"AE-VISA/internal/auth"
	"AE-VISA/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL    = 30 * 24 * time.Hour
	refreshTokenTTL   = 30 * 24 * time.Hour
	refreshedTokenTTL = 10 * time.Minute

	otpTTL = 5 * time.Minute
)

type CreateUserInput struct {
	Name             string          `json:"name"`
	Email            string          `json:"email" binding:"required,email"`
	Password         string          `json:"password" binding:"required"`
	Phone            string          `json:"phone"`
	Picture          string          `json:"picture"`
	OrganizationName string          `json:"organization_name"`
	Position         string          `json:"position"`
	IsCompany        bool            `json:"is_company"`
	RoleID           string          `json:"role_id"`
	FCMToken         string          `json:"fcm_token"`
	Documents        []DocumentInput `json:"documents"`
}

type UpdateUserInput struct {
	Name               *string `json:"name"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
	Picture            *string `json:"picture"`
	OrganizationName   *string `json:"organization_name"`
	Position           *string `json:"position"`
	IsSalary           *bool   `json:"is_salary"`
	IsExperience       *bool   `json:"is_experience"`
	IsActive           *bool   `json:"is_active"`
	IsCompany          *bool   `json:"is_company"`
	IsProfileCompleted *bool   `json:"is_profile_completed"`
	RoleID             *string `json:"role_id"`
	FCMToken           *string `json:"fcm_token"`
}

type UserFilter struct {
	Status *bool  `json:"status"` // isActive
	Type   *bool  `json:"type"`   // isCompany
	Search string `json:"search"`
}

// UserWithCount decorates a user with how many forms they submitted.
type UserWithCount struct {
	models.User
	SubmittedFormCount int64 `json:"submitted_form_count"`
}

type UserPage struct {
	Users []UserWithCount `json:"users"`
	Total int64           `json:"total"`
}

type LoginResult struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

type OTPResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UserService struct {
	db     *gorm.DB
	tokens *auth.Manager
	email  EmailSender
	log    *logrus.Logger
}

func NewUserService(db *gorm.DB, tokens *auth.Manager, email EmailSender, log *logrus.Logger) *UserService {
	return &UserService{db: db, tokens: tokens, email: email, log: log}
}

// Register creates a user with a bcrypt-hashed password and attaches any
// initial documents in the same transaction.
func (s *UserService) Register(input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	err := s.db.First(&existing, "email = ?", email).Error
	if err == nil {
		return nil, fmt.Errorf("user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:             input.Name,
		Email:            email,
		Password:         string(hashed),
		Phone:            input.Phone,
		Picture:          input.Picture,
		OrganizationName: input.OrganizationName,
		Position:         input.Position,
		IsCompany:        input.IsCompany,
		RoleID:           input.RoleID,
		FCMToken:         input.FCMToken,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		for _, doc := range input.Documents {
			document := &models.Document{
				Title:       doc.Title,
				FileName:    doc.FileName,
				FileType:    doc.FileType,
				FilePath:    doc.FilePath,
				Description: doc.Description,
				UserID:      user.ID,
			}
			document.CreatedBy = user.ID
			if err := tx.Create(document).Error; err != nil {
				return fmt.Errorf("failed to create document %q: %w", doc.FileName, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login checks credentials and issues an access/refresh token pair. The
// refresh token is stored on the user so it can be revoked by logout.
func (s *UserService) Login(email, password string) (*LoginResult, error) {
	if password == "" {
		return nil, validationf("password is required")
	}

	var user models.User
	err := s.db.Preload("Role").First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid password")
	}

	token, err := s.tokens.AccessToken(user.ID, user.Email, accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	refresh, err := s.tokens.RefreshToken(user.ID, user.Email, refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	now := time.Now()
	user.RefreshToken = refresh
	user.LastLoginDate = &now
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &LoginResult{Token: token, RefreshToken: refresh, User: &user}, nil
}

// Logout clears the stored refresh token so it can no longer be exchanged.
func (s *UserService) Logout(userID string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token", "")
	if res.Error != nil {
		return fmt.Errorf("failed to logout: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// Refresh exchanges a valid stored refresh token for a short-lived access
// token.
func (s *UserService) Refresh(token string) (string, error) {
	if token == "" {
		return "", validationf("no token provided")
	}
	claims, err := s.tokens.ParseRefreshToken(token)
	if err != nil {
		return "", fmt.Errorf("invalid or expired refresh token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return "", fmt.Errorf("invalid refresh token")
	}
	if user.RefreshToken != token {
		return "", fmt.Errorf("invalid refresh token")
	}

	access, err := s.tokens.AccessToken(user.ID, user.Email, refreshedTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return access, nil
}

func (s *UserService) ChangePassword(userID, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found")
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return fmt.Errorf("old password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *UserService) Update(id string, input UpdateUserInput) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			var other models.User
			err := s.db.First(&other, "email = ?", email).Error
			if err == nil {
				return nil, fmt.Errorf("email already in use by another user")
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}
	if input.RoleID != nil {
		var role models.Role
		if err := s.db.First(&role, "id = ?", *input.RoleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("specified role does not exist")
			}
			return nil, fmt.Errorf("failed to load role: %w", err)
		}
		user.RoleID = role.ID
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Picture != nil {
		user.Picture = *input.Picture
	}
	if input.OrganizationName != nil {
		user.OrganizationName = *input.OrganizationName
	}
	if input.Position != nil {
		user.Position = *input.Position
	}
	if input.IsSalary != nil {
		user.IsSalary = *input.IsSalary
	}
	if input.IsExperience != nil {
		user.IsExperience = *input.IsExperience
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsCompany != nil {
		user.IsCompany = *input.IsCompany
	}
	if input.IsProfileCompleted != nil {
		user.IsProfileCompleted = *input.IsProfileCompleted
	}
	if input.FCMToken != nil {
		user.FCMToken = *input.FCMToken
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// Delete soft-deletes the account; the email stays reserved.
func (s *UserService) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (s *UserService) UserByID(id string) (*models.User, error) {
	var user models.User
	err := s.db.
		Preload("Role").
		Preload("Documents").
		Preload("Notifications").
		Preload("Applications").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// Users pages through users newest first, each decorated with a submission
// count.
func (s *UserService) Users(limit, offset int, filter *UserFilter) (*UserPage, error) {
	query := s.db.Model(&models.User{})
	if filter != nil {
		if filter.Status != nil {
			query = query.Where("is_active = ?", *filter.Status)
		}
		if filter.Type != nil {
			query = query.Where("is_company = ?", *filter.Type)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := query.
		Preload("Documents").
		Preload("Notifications").
		Preload("Applications").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	withCounts := make([]UserWithCount, 0, len(users))
	for _, user := range users {
		var count int64
		err := s.db.Model(&models.FormSubmission{}).
			Where("created_by = ?", user.ID).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count submissions for user %s: %w", user.ID, err)
		}
		withCounts = append(withCounts, UserWithCount{User: user, SubmittedFormCount: count})
	}

	return &UserPage{Users: withCounts, Total: total}, nil
}

func (s *UserService) Roles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *UserService) CreateRole(name string) (*models.Role, error) {
	role := &models.Role{Name: name}
	if err := s.db.Create(role).Error; err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

func (s *UserService) UpdateRole(id, name string) (*models.Role, error) {
	var role models.Role
	if err := s.db.First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("role not found")
		}
		return nil, fmt.Errorf("failed to load role: %w", err)
	}
	role.Name = name
	if err := s.db.Save(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return &role, nil
}

// SendVerificationOTP mails a six-digit code to an address that is not yet
// registered. Prior codes for the address are discarded first, so at most one
// is outstanding.
func (s *UserService) SendVerificationOTP(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.First(&user, "email = ?", normalized).Error
	if err == nil {
		return "An account with that email exists", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	record := &models.OTP{
		Email:     normalized,
		OTPHash:   hashOTP(otp),
		ExpiresAt: time.Now().Add(otpTTL),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("email = ?", normalized).Delete(&models.OTP{}).Error; err != nil {
			return fmt.Errorf("failed to discard old OTPs: %w", err)
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to save OTP: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	subject := "OTP Verification"
	body := fmt.Sprintf("Your one-time password is %s. It is valid for 5 minutes.", otp)
	if err := s.email.Send(normalized, subject, body); err != nil {
		return "", fmt.Errorf("failed to send OTP email: %w", err)
	}

	return "OTP has been sent to your email address.", nil
}

// VerifyOTP checks the latest outstanding code for the address, consumes it
// on success and purges used rows.
func (s *UserService) VerifyOTP(email, otp string) (*OTPResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	var record models.OTP
	err := s.db.
		Where("email = ? AND is_used = ?", normalized, false).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OTPResult{Message: "OTP not found or already used."}, nil
		}
		return nil, fmt.Errorf("failed to load OTP: %w", err)
	}

	if record.ExpiresAt.Before(time.Now()) {
		return &OTPResult{Message: "OTP has expired."}, nil
	}
	if hashOTP(otp) != record.OTPHash {
		return &OTPResult{Message: "Invalid OTP."}, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		record.IsUsed = true
		if err := tx.Save(&record).Error; err != nil {
			return fmt.Errorf("failed to consume OTP: %w", err)
		}
		if err := tx.Unscoped().Where("is_used = ?", true).Delete(&models.OTP{}).Error; err != nil {
			return fmt.Errorf("failed to purge used OTPs: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &OTPResult{Success: true, Message: "OTP verified successfully."}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func hashOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}
