package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"AE-VISA/internal"
	"AE-VISA/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// recordingHub captures published notifications instead of broadcasting.
type recordingHub struct {
	mu        sync.Mutex
	published []*models.Notification
}

func (h *recordingHub) Publish(n *models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, n)
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.published)
}

type recordingPush struct {
	mu    sync.Mutex
	sent  []string
	err   error
	calls int
}

func (p *recordingPush) Send(token, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.sent = append(p.sent, token)
	return p.err
}

type recordingEmail struct {
	mu     sync.Mutex
	to     []string
	bodies []string
	err    error
}

func (e *recordingEmail) Send(to, subject, body string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.to = append(e.to, to)
	e.bodies = append(e.bodies, body)
	return nil
}

type fakeNomod struct {
	createErr error
	link      *NomodLink
	statusUps map[string]string
	lastReq   NomodLinkRequest
}

func (f *fakeNomod) CreateLink(ctx context.Context, req NomodLinkRequest) (*NomodLink, error) {
	f.lastReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.link != nil {
		return f.link, nil
	}
	return &NomodLink{
		ID:       "nomod-123",
		URL:      "https://pay.nomod.com/l/nomod-123",
		Amount:   "150.00",
		Currency: req.Currency,
		Status:   models.PaymentStatusEnabled,
		Items:    req.Items,
	}, nil
}

func (f *fakeNomod) LinkStatus(ctx context.Context, id string) (*NomodLink, error) {
	status := models.PaymentStatusEnabled
	if f.statusUps != nil {
		if s, ok := f.statusUps[id]; ok {
			status = s
		}
	}
	return &NomodLink{ID: id, Status: status}, nil
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: "$2a$10$abcdefghijklmnopqrstuv",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCatalog(t *testing.T, db *gorm.DB) (*models.Service, *models.Category) {
	t.Helper()
	service := &models.Service{Title: "Visa Services", IsForSale: true}
	require.NoError(t, db.Create(service).Error)
	category := &models.Category{Title: "Tourist", ServiceID: service.ID, NormalPrice: 100}
	require.NoError(t, db.Create(category).Error)
	return service, category
}
