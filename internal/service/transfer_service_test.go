package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolmate/schoolmate-core/internal/models"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
)

func TestTransferExportImport_RoundTripIdentity(t *testing.T) {
	st := newTestStore(t)
	svc := NewTransferService(st, nil, nil)

	require.NoError(t, st.Mutate(func(doc *models.Document) error {
		doc.Announcements = append(doc.Announcements, models.Announcement{ID: "a_1", Title: "Sports day"})
		return nil
	}))

	var first bytes.Buffer
	require.NoError(t, svc.Export(adminActor, &first))

	replaced, err := svc.Import(adminActor, bytes.NewReader(first.Bytes()), func() bool { return true })
	require.NoError(t, err)
	require.True(t, replaced)

	var second bytes.Buffer
	require.NoError(t, svc.Export(adminActor, &second))
	assert.Equal(t, first.String(), second.String())
}

func TestTransferImport_InvalidJSONLeavesDocumentUntouched(t *testing.T) {
	st := newTestStore(t)
	svc := NewTransferService(st, nil, nil)

	var before bytes.Buffer
	require.NoError(t, svc.Export(adminActor, &before))

	replaced, err := svc.Import(adminActor, strings.NewReader("{not json"), func() bool { return true })
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.False(t, replaced)

	var after bytes.Buffer
	require.NoError(t, svc.Export(adminActor, &after))
	assert.Equal(t, before.String(), after.String())
}

func TestTransferImport_AcceptsLegacySessionObject(t *testing.T) {
	st := newTestStore(t)
	svc := NewTransferService(st, nil, nil)

	// The original frontend persisted loggedIn as the whole user object.
	legacy := `{
		"users": [
			{"id": "u_admin", "role": "admin", "name": "Principal", "email": "principal@school.edu", "phone": "9999000000", "password": "admin123"}
		],
		"classes": [{"id": "c_10A", "name": "Class 10A"}],
		"subjects": [{"id": "sub_1", "name": "Mathematics"}],
		"pendingOtp": null,
		"loggedIn": {"id": "u_admin", "role": "admin", "name": "Principal"}
	}`

	replaced, err := svc.Import(adminActor, strings.NewReader(legacy), func() bool { return true })
	require.NoError(t, err)
	require.True(t, replaced)

	user := st.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "u_admin", user.ID)

	// Our own string encoding still decodes.
	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(`{"loggedIn": "u_s1"}`), &doc))
	require.NotNil(t, doc.LoggedInID)
	assert.Equal(t, "u_s1", *doc.LoggedInID)
}

func TestTransferImport_DeclinedConfirmAborts(t *testing.T) {
	st := newTestStore(t)
	svc := NewTransferService(st, nil, nil)

	var before bytes.Buffer
	require.NoError(t, svc.Export(adminActor, &before))

	replaced, err := svc.Import(adminActor, strings.NewReader(`{"users":[]}`), func() bool { return false })
	require.NoError(t, err)
	assert.False(t, replaced)

	var after bytes.Buffer
	require.NoError(t, svc.Export(adminActor, &after))
	assert.Equal(t, before.String(), after.String())
}

func TestTransfer_AdminOnly(t *testing.T) {
	svc := NewTransferService(newTestStore(t), nil, nil)

	assert.ErrorIs(t, svc.Export(teacherActor, &bytes.Buffer{}), appErrors.ErrForbidden)
	assert.ErrorIs(t, svc.ExportCollection(studentActor, &bytes.Buffer{}, "users"), appErrors.ErrForbidden)

	_, err := svc.Import(teacherActor, strings.NewReader("{}"), nil)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.Reset(studentActor, nil)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestTransferExportCollection(t *testing.T) {
	svc := NewTransferService(newTestStore(t), nil, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCollection(adminActor, &buf, "classes"))
	assert.Contains(t, buf.String(), "Class 10A")

	err := svc.ExportCollection(adminActor, &bytes.Buffer{}, "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTransferReset_RestoresSeededState(t *testing.T) {
	st := newTestStore(t)
	svc := NewTransferService(st, nil, nil)

	require.NoError(t, st.Mutate(func(doc *models.Document) error {
		doc.Announcements = append(doc.Announcements, models.Announcement{ID: "a_1", Title: "gone after reset"})
		return nil
	}))

	done, err := svc.Reset(adminActor, func() bool { return true })
	require.NoError(t, err)
	require.True(t, done)

	st.View(func(doc *models.Document) {
		assert.Empty(t, doc.Announcements)
		assert.NotNil(t, doc.UserByEmail("principal@school.edu"))
	})
}
