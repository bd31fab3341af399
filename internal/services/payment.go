package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"AE-VISA/internal/config"
	"AE-VISA/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NomodLinkRequest is the payload sent to the provider's link endpoint.
type NomodLinkRequest struct {
	Title              string               `json:"title"`
	Currency           string               `json:"currency"`
	Items              []models.PaymentItem `json:"items"`
	Note               string               `json:"note,omitempty"`
	SuccessURL         string               `json:"success_url"`
	FailureURL         string               `json:"failure_url"`
	AllowTip           bool                 `json:"allow_tip,omitempty"`
	AllowTabby         bool                 `json:"allow_tabby,omitempty"`
	AllowTamara        bool                 `json:"allow_tamara,omitempty"`
	AllowServiceFee    bool                 `json:"allow_service_fee,omitempty"`
	PaymentExpiryLimit int                  `json:"payment_expiry_limit,omitempty"`
	ExpiryDate         string               `json:"expiry_date,omitempty"`
}

// NomodLink is the provider's view of a payment link.
type NomodLink struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	URL                string               `json:"url"`
	Amount             string               `json:"amount"`
	Currency           string               `json:"currency"`
	Status             string               `json:"status"`
	Note               string               `json:"note"`
	Items              []models.PaymentItem `json:"items"`
	Discount           string               `json:"discount"`
	ServiceFee         string               `json:"service_fee"`
	AllowTip           bool                 `json:"allow_tip"`
	AllowTabby         bool                 `json:"allow_tabby"`
	AllowTamara        bool                 `json:"allow_tamara"`
	AllowServiceFee    bool                 `json:"allow_service_fee"`
	PaymentExpiryLimit int                  `json:"payment_expiry_limit"`
	ExpiryDate         string               `json:"expiry_date"`
}

// NomodClient is the payment-link provider dependency; tests substitute a
// fake or an httptest server.
type NomodClient interface {
	CreateLink(ctx context.Context, req NomodLinkRequest) (*NomodLink, error)
	LinkStatus(ctx context.Context, id string) (*NomodLink, error)
}

// HTTPNomodClient talks to the Nomod REST API with an X-API-KEY header.
type HTTPNomodClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewHTTPNomodClient(cfg config.NomodConfig) *HTTPNomodClient {
	return &HTTPNomodClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPNomodClient) CreateLink(ctx context.Context, req NomodLinkRequest) (*NomodLink, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode link request: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/links", bytes.NewReader(buf))
}

func (c *HTTPNomodClient) LinkStatus(ctx context.Context, id string) (*NomodLink, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+"/links/"+id, nil)
}

func (c *HTTPNomodClient) do(ctx context.Context, method, url string, body io.Reader) (*NomodLink, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("NOMOD_API_KEY is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nomod request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read nomod response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nomod api error (%d): %s", resp.StatusCode, string(data))
	}

	var link NomodLink
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("failed to decode nomod response: %w", err)
	}
	return &link, nil
}

type CreatePaymentInput struct {
	Title              string               `json:"title" binding:"required"`
	Currency           string               `json:"currency" binding:"required"`
	Items              []models.PaymentItem `json:"items" binding:"required"`
	Note               string               `json:"note"`
	AllowTip           bool                 `json:"allow_tip"`
	AllowTabby         bool                 `json:"allow_tabby"`
	AllowTamara        bool                 `json:"allow_tamara"`
	AllowServiceFee    bool                 `json:"allow_service_fee"`
	PaymentExpiryLimit int                  `json:"payment_expiry_limit"`
	ExpiryDate         string               `json:"expiry_date"`
	SubmittedFormID    string               `json:"submitted_form_id"`
}

type PaymentService struct {
	db        *gorm.DB
	nomod     NomodClient
	baseURL   string
	appScheme string
	log       *logrus.Logger
}

func NewPaymentService(db *gorm.DB, nomod NomodClient, cfg config.ServerConfig, log *logrus.Logger) *PaymentService {
	return &PaymentService{
		db:        db,
		nomod:     nomod,
		baseURL:   cfg.BaseURL,
		appScheme: cfg.AppScheme,
		log:       log,
	}
}

// CreatePaymentLink creates the local payment row first so its id can ride
// along in the redirect URLs handed to the provider, then calls the provider
// and fills the row in with the response. A provider failure marks the row
// failed instead of leaving it half initialized.
func (s *PaymentService) CreatePaymentLink(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	if err := validatePaymentInput(&input); err != nil {
		return nil, err
	}

	payloadBytes, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request payload: %w", err)
	}

	payment := &models.Payment{
		Title:              input.Title,
		Currency:           input.Currency,
		Status:             models.PaymentStatusPending,
		Note:               input.Note,
		Items:              models.PaymentItemList(input.Items),
		RequestPayload:     string(payloadBytes),
		AllowTip:           input.AllowTip,
		AllowTabby:         input.AllowTabby,
		AllowTamara:        input.AllowTamara,
		AllowServiceFee:    input.AllowServiceFee,
		PaymentExpiryLimit: input.PaymentExpiryLimit,
		ExpiryDate:         input.ExpiryDate,
	}
	if err := s.db.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	payment.SuccessURL = fmt.Sprintf("%s/payment/success?paymentId=%s", s.baseURL, payment.ID)
	payment.FailureURL = fmt.Sprintf("%s/payment/failure?paymentId=%s", s.baseURL, payment.ID)

	link, err := s.nomod.CreateLink(ctx, NomodLinkRequest{
		Title:              input.Title,
		Currency:           input.Currency,
		Items:              input.Items,
		Note:               input.Note,
		SuccessURL:         payment.SuccessURL,
		FailureURL:         payment.FailureURL,
		AllowTip:           input.AllowTip,
		AllowTabby:         input.AllowTabby,
		AllowTamara:        input.AllowTamara,
		AllowServiceFee:    input.AllowServiceFee,
		PaymentExpiryLimit: input.PaymentExpiryLimit,
		ExpiryDate:         input.ExpiryDate,
	})
	if err != nil {
		payment.Status = models.PaymentStatusFailed
		if saveErr := s.db.Save(payment).Error; saveErr != nil {
			s.log.WithError(saveErr).WithField("payment_id", payment.ID).Error("failed to mark payment failed")
		}
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	payment.NomodID = link.ID
	payment.URL = link.URL
	payment.Amount = link.Amount
	payment.Status = link.Status
	payment.Discount = link.Discount
	payment.ServiceFee = link.ServiceFee
	if link.PaymentExpiryLimit != 0 {
		payment.PaymentExpiryLimit = link.PaymentExpiryLimit
	}
	if link.ExpiryDate != "" {
		payment.ExpiryDate = link.ExpiryDate
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(payment).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if input.SubmittedFormID != "" {
			res := tx.Model(&models.FormSubmission{}).
				Where("id = ?", input.SubmittedFormID).
				Update("payment_id", payment.ID)
			if res.Error != nil {
				return fmt.Errorf("failed to link submission: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("submission not found")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"payment_id": payment.ID, "nomod_id": payment.NomodID}).Info("payment link created")
	return payment, nil
}

func validatePaymentInput(input *CreatePaymentInput) error {
	if input.Title == "" {
		return validationf("title is required")
	}
	if input.Currency == "" {
		return validationf("currency is required")
	}
	if len(input.Items) == 0 {
		return validationf("at least one item is required")
	}
	for i, item := range input.Items {
		if item.Name == "" {
			return validationf("item %d is missing a name", i)
		}
		amount, err := strconv.ParseFloat(item.Amount, 64)
		if err != nil || amount <= 0 {
			return validationf("item %d must have a positive amount", i)
		}
		if item.Quantity <= 0 {
			return validationf("item %d must have a positive quantity", i)
		}
	}
	return nil
}

// PaymentStatus refreshes a payment's status from the provider and returns
// the local row. A payment that never reached the provider is returned as is.
func (s *PaymentService) PaymentStatus(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment not found")
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	if payment.NomodID == "" {
		return &payment, nil
	}

	link, err := s.nomod.LinkStatus(ctx, payment.NomodID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment status: %w", err)
	}

	if link.Status != "" && link.Status != payment.Status {
		payment.Status = link.Status
		if err := s.db.Save(&payment).Error; err != nil {
			return nil, fmt.Errorf("failed to update payment: %w", err)
		}
	}
	return &payment, nil
}

// ExpireStalePayments marks enabled links whose expiry date has passed as
// expired. It runs on a schedule and returns how many rows it touched.
func (s *PaymentService) ExpireStalePayments() (int, error) {
	var payments []models.Payment
	err := s.db.
		Where("status = ? AND expiry_date <> ''", models.PaymentStatusEnabled).
		Find(&payments).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list enabled payments: %w", err)
	}

	now := time.Now()
	expired := 0
	for i := range payments {
		expiry, err := time.Parse(time.RFC3339, payments[i].ExpiryDate)
		if err != nil {
			s.log.WithField("payment_id", payments[i].ID).Warn("unparseable expiry date, skipping")
			continue
		}
		if expiry.After(now) {
			continue
		}
		payments[i].Status = models.PaymentStatusExpired
		if err := s.db.Save(&payments[i]).Error; err != nil {
			return expired, fmt.Errorf("failed to expire payment %s: %w", payments[i].ID, err)
		}
		expired++
	}
	if expired > 0 {
		s.log.WithField("count", expired).Info("expired stale payment links")
	}
	return expired, nil
}
