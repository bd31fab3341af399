package services

import (
	"testing"

	"AE-VISA/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDocument(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(db)
	user := createTestUser(t, db, "uploader@example.com")

	document, err := svc.Create(user.ID, DocumentInput{
		Title:    "Passport",
		FileName: "passport.pdf",
		FileType: "application/pdf",
		FilePath: "/files/passport.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, document.UserID)
	assert.Equal(t, user.ID, document.CreatedBy)

	_, err = svc.Create(user.ID, DocumentInput{Title: "No Path", FileName: "x.pdf"})
	require.EqualError(t, err, "document must have fileName and filePath")

	_, err = svc.Create("missing", DocumentInput{FileName: "x.pdf", FilePath: "/files/x.pdf"})
	require.EqualError(t, err, "uploader not found")
}

func TestUpdateDocument(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(db)
	user := createTestUser(t, db, "uploader@example.com")

	document, err := svc.Create(user.ID, DocumentInput{FileName: "old.pdf", FilePath: "/files/old.pdf"})
	require.NoError(t, err)

	title := "Renamed"
	updated, err := svc.Update(user.ID, document.ID, UpdateDocumentInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "old.pdf", updated.FileName)
	assert.Equal(t, user.ID, updated.UpdatedBy)

	_, err = svc.Update(user.ID, "missing", UpdateDocumentInput{Title: &title})
	require.EqualError(t, err, "document not found")
}

func TestDocumentsPaging(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(db)
	user := createTestUser(t, db, "uploader@example.com")

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := svc.Create(user.ID, DocumentInput{FileName: name, FilePath: "/files/" + name})
		require.NoError(t, err)
	}

	documents, err := svc.Documents(2, 0)
	require.NoError(t, err)
	assert.Len(t, documents, 2)

	rest, err := svc.Documents(10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestDeleteDocument(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(db)
	user := createTestUser(t, db, "uploader@example.com")

	document, err := svc.Create(user.ID, DocumentInput{FileName: "a.pdf", FilePath: "/files/a.pdf"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(user.ID, document.ID))

	_, err = svc.DocumentByID(document.ID)
	require.EqualError(t, err, "document not found")

	var raw models.Document
	require.NoError(t, db.Unscoped().First(&raw, "id = ?", document.ID).Error)
	assert.Equal(t, user.ID, raw.DeletedBy)

	require.EqualError(t, svc.Delete(user.ID, document.ID), "document not found")
}
