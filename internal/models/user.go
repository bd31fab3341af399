package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID   string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Audit

	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

type User struct {
	ID                 string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name               string     `json:"name"`
	Phone              string     `json:"phone"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	Picture            string     `json:"picture"`
	OrganizationName   string     `json:"organization_name"`
	Position           string     `json:"position"`
	Password           string     `gorm:"not null" json:"-"`
	IsSalary           bool       `gorm:"default:false" json:"is_salary"`
	IsExperience       bool       `gorm:"default:false" json:"is_experience"`
	IsActive           bool       `gorm:"default:false" json:"is_active"`
	IsCompany          bool       `gorm:"default:false" json:"is_company"`
	IsProfileCompleted bool       `gorm:"default:false" json:"is_profile_completed"`
	LastLoginDate      *time.Time `json:"last_login_date,omitempty"`
	RefreshToken       string     `json:"-"`
	RoleID             string     `gorm:"type:varchar(36);index" json:"role_id,omitempty"`
	FCMToken           string     `json:"fcm_token,omitempty"`
	Audit

	Role          *Role            `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Documents     []Document       `gorm:"foreignKey:UserID" json:"documents,omitempty"`
	Notifications []Notification   `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
	Applications  []Application    `gorm:"foreignKey:ApplicantID" json:"applications,omitempty"`
	Submissions   []FormSubmission `gorm:"foreignKey:CreatedBy" json:"submissions,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// OTP holds a hashed one-time password for email verification. Rows are
// single use and purged once consumed.
type OTP struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"index;not null" json:"email"`
	OTPHash   string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsUsed    bool      `gorm:"default:false" json:"is_used"`
	Audit
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
