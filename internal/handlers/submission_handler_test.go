package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"AE-VISA/internal"
	"AE-VISA/internal/config"
	"AE-VISA/internal/middleware"
	"AE-VISA/internal/models"
	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, internal.Migrate(db))
	return db
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type nopHub struct{}

func (nopHub) Publish(*models.Notification) {}

type nopPush struct{}

func (nopPush) Send(token, title, body string) error { return nil }

type stubNomod struct {
	createErr error
}

func (s *stubNomod) CreateLink(ctx context.Context, req services.NomodLinkRequest) (*services.NomodLink, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &services.NomodLink{
		ID:       "nomod-1",
		URL:      "https://pay.nomod.com/l/nomod-1",
		Amount:   "150.00",
		Currency: req.Currency,
		Status:   models.PaymentStatusEnabled,
		Items:    req.Items,
	}, nil
}

func (s *stubNomod) LinkStatus(ctx context.Context, id string) (*services.NomodLink, error) {
	return &services.NomodLink{ID: id, Status: models.PaymentStatusEnabled}, nil
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func newPaymentRouter(t *testing.T, nomod services.NomodClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)
	cfg := config.ServerConfig{BaseURL: "https://api.example.com", AppScheme: "uaevisaapp"}
	svc := services.NewPaymentService(db, nomod, cfg, discardLogger())
	h := &PaymentHandler{paymentService: svc}
	r := gin.New()
	r.POST("/create-payment", h.CreatePayment)
	return r
}

func TestCreatePaymentRejectedInputIsBadRequest(t *testing.T) {
	r := newPaymentRouter(t, &stubNomod{})

	w := postJSON(t, r, "/create-payment", services.CreatePaymentInput{
		Title:    "Tourist Visa",
		Currency: "AED",
		Items:    []models.PaymentItem{{Name: "Tourist Visa", Amount: "0", Quantity: 1}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "item 0 must have a positive amount")
}

func TestCreatePaymentProviderFailureIsBadGateway(t *testing.T) {
	r := newPaymentRouter(t, &stubNomod{createErr: errors.New("gateway timeout")})

	w := postJSON(t, r, "/create-payment", services.CreatePaymentInput{
		Title:    "Tourist Visa",
		Currency: "AED",
		Items:    []models.PaymentItem{{Name: "Tourist Visa", Amount: "150.00", Quantity: 1}},
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "failed to create payment link")
}

func TestSubmitRejectedDocumentIsBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)
	log := discardLogger()

	user := &models.User{Name: "Applicant", Email: "applicant@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	service := &models.Service{Title: "Visa Services", IsForSale: true}
	require.NoError(t, db.Create(service).Error)
	category := &models.Category{Title: "Tourist", ServiceID: service.ID, NormalPrice: 100}
	require.NoError(t, db.Create(category).Error)

	form, err := services.NewFormService(db, log).CreateForm(user.ID, services.CreateFormInput{
		CategoryID: category.ID,
		Attributes: []services.FormAttributeInput{
			{Name: "full_name", Label: "Full Name", Type: "INPUT", Required: true},
		},
	})
	require.NoError(t, err)

	h := NewSubmissionHandler(services.NewSubmissionService(db, nopHub{}, nopPush{}, log))
	r := gin.New()
	r.POST("/submissions", asUser(user.ID), h.Submit)

	w := postJSON(t, r, "/submissions", services.SubmitFormInput{
		FormID:     form.ID,
		CategoryID: category.ID,
		Answers:    []models.FormAnswer{{Name: "full_name", Value: json.RawMessage(`"Jane Doe"`)}},
		Documents:  []services.DocumentInput{{Title: "Passport", FileName: "passport.pdf"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "document must have fileName and filePath")
}

func TestSubmitUnknownFormIsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)

	user := &models.User{Name: "Applicant", Email: "applicant@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	h := NewSubmissionHandler(services.NewSubmissionService(db, nopHub{}, nopPush{}, discardLogger()))
	r := gin.New()
	r.POST("/submissions", asUser(user.ID), h.Submit)

	w := postJSON(t, r, "/submissions", services.SubmitFormInput{
		FormID:     "missing",
		CategoryID: "missing",
		Answers:    []models.FormAnswer{{Name: "full_name", Value: json.RawMessage(`"Jane Doe"`)}},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "form not found")
}
