package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment link statuses as reported by the provider, plus the local
// "pending" placeholder used before the external link exists.
const (
	PaymentStatusPending = "pending"
	PaymentStatusEnabled = "enabled"
	PaymentStatusPaid    = "paid"
	PaymentStatusExpired = "expired"
	PaymentStatusFailed  = "failed"
)

// PaymentItem is one line item of a payment link. Amount stays a string to
// mirror the provider's wire format exactly.
type PaymentItem struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku,omitempty"`
}

// PaymentItemList stores line items as a JSON column.
type PaymentItemList []PaymentItem

func (l PaymentItemList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *PaymentItemList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into PaymentItemList", value)
	}
}

// Payment is the local mirror of an externally issued Nomod payment link.
// The row is created before the external call so the internal id can be
// embedded in redirect URLs, then updated in place with the response.
type Payment struct {
	ID                 string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	NomodID            string          `gorm:"index" json:"nomod_id"`
	Title              string          `json:"title"`
	URL                string          `json:"url"`
	Amount             string          `json:"amount"`
	Currency           string          `json:"currency"`
	Status             string          `gorm:"index" json:"status"`
	Note               string          `json:"note,omitempty"`
	Items              PaymentItemList `gorm:"type:json" json:"items"`
	Discount           string          `json:"discount,omitempty"`
	ServiceFee         string          `json:"service_fee,omitempty"`
	RequestPayload     string          `gorm:"type:text" json:"request_payload,omitempty"`
	CustomFields       StringList      `gorm:"type:json" json:"custom_fields,omitempty"`
	AllowTip           bool            `gorm:"default:false" json:"allow_tip"`
	AllowTabby         bool            `gorm:"default:false" json:"allow_tabby"`
	AllowTamara        bool            `gorm:"default:false" json:"allow_tamara"`
	AllowServiceFee    bool            `gorm:"default:false" json:"allow_service_fee"`
	SuccessURL         string          `json:"success_url,omitempty"`
	FailureURL         string          `json:"failure_url,omitempty"`
	PaymentExpiryLimit int             `json:"payment_expiry_limit,omitempty"`
	ExpiryDate         string          `json:"expiry_date,omitempty"`
	Audit
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
