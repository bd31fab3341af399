package services

import (
	"testing"

	"AE-VISA/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateApplication(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db)
	user := createTestUser(t, db, "applicant@example.com")

	application, err := svc.Create(user.ID, CreateApplicationInput{
		VisaType:        models.VisaTourist,
		ApplicationType: models.ApplicationNew,
		SponsorName:     "Acme LLC",
		EmiratesID:      "784-1234-1234567-1",
		Files: []DocumentInput{
			{Title: "Passport", FileName: "passport.pdf", FilePath: "/files/passport.pdf"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, application.ApplicantID)
	// unset priority falls back to MEDIUM
	assert.Equal(t, models.PriorityMedium, application.ApplicationPriority)
	require.Len(t, application.Files, 1)
	assert.Equal(t, "passport.pdf", application.Files[0].FileName)
	require.NotNil(t, application.Applicant)
	assert.Equal(t, user.ID, application.Applicant.ID)
}

func TestCreateApplicationApplicantMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db)

	_, err := svc.Create("missing", CreateApplicationInput{
		VisaType:        models.VisaTourist,
		ApplicationType: models.ApplicationNew,
	})
	require.EqualError(t, err, "applicant not found")
}

func TestUserApplicationsPaging(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db)
	user := createTestUser(t, db, "applicant@example.com")
	other := createTestUser(t, db, "other@example.com")

	for i := 0; i < 3; i++ {
		_, err := svc.Create(user.ID, CreateApplicationInput{
			VisaType:        models.VisaTourist,
			ApplicationType: models.ApplicationNew,
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(other.ID, CreateApplicationInput{
		VisaType:        models.VisaResidence,
		ApplicationType: models.ApplicationNew,
	})
	require.NoError(t, err)

	page, err := svc.UserApplications(user.ID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := svc.UserApplications(user.ID, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestDeleteApplication(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db)
	user := createTestUser(t, db, "applicant@example.com")
	admin := createTestUser(t, db, "admin@example.com")

	application, err := svc.Create(user.ID, CreateApplicationInput{
		VisaType:        models.VisaTourist,
		ApplicationType: models.ApplicationNew,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(admin.ID, application.ID))

	_, err = svc.ApplicationByID(application.ID)
	require.EqualError(t, err, "application not found")

	var raw models.Application
	require.NoError(t, db.Unscoped().First(&raw, "id = ?", application.ID).Error)
	assert.Equal(t, admin.ID, raw.DeletedBy)

	require.EqualError(t, svc.Delete(admin.ID, application.ID), "application not found")
}
