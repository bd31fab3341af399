package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the top tier of the sellable catalog: Service -> Category -> Visa.
type Service struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	IsForSale   bool   `gorm:"default:false" json:"is_for_sale"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Audit

	Categories []Category `gorm:"foreignKey:ServiceID" json:"categories,omitempty"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

type Category struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	IsForSale   bool       `gorm:"default:false" json:"is_for_sale"`
	NormalPrice float64    `gorm:"default:0" json:"normal_price"`
	VIPPrice    float64    `gorm:"default:0" json:"vip_price"`
	VVIPPrice   float64    `gorm:"default:0" json:"vvip_price"`
	Description StringList `gorm:"type:json" json:"description"`
	Info        StringList `gorm:"type:json" json:"info"`
	ServiceID   string     `gorm:"type:varchar(36);not null;index" json:"service_id"`
	Audit

	Service     *Service            `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Visas       []Visa              `gorm:"foreignKey:CategoryID" json:"visas,omitempty"`
	Form        *Form               `gorm:"foreignKey:CategoryID" json:"form,omitempty"`
	Attributes  []CategoryAttribute `gorm:"foreignKey:CategoryID" json:"attributes,omitempty"`
	Submissions []FormSubmission    `gorm:"foreignKey:CategoryID" json:"submissions,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CategoryAttribute is a free-form name/value pair attached to a category.
type CategoryAttribute struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	CategoryID string `gorm:"type:varchar(36);index" json:"category_id"`
	Audit

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (a *CategoryAttribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

type Visa struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	NormalPrice float64    `gorm:"not null" json:"normal_price"`
	VIPPrice    float64    `gorm:"not null" json:"vip_price"`
	VVIPPrice   float64    `gorm:"not null" json:"vvip_price"`
	Description StringList `gorm:"type:json" json:"description"`
	Info        StringList `gorm:"type:json" json:"info"`
	CategoryID  string     `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Audit

	Category    *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Form        *Form            `gorm:"foreignKey:VisaID" json:"form,omitempty"`
	Submissions []FormSubmission `gorm:"foreignKey:VisaID" json:"submissions,omitempty"`
}

func (v *Visa) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
