package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
)

func TestTeacherList_ResolvesSubjectNames(t *testing.T) {
	st := newTestStore(t)
	svc := NewTeacherService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)
	assignSubject(t, st, subject)

	rows, err := svc.List(adminActor)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mathematics", rows[0].SubjectNames)

	_, err = svc.List(studentActor)
	assert.Error(t, err)
	_, err = svc.List(access.Guest)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestTeacherList_NoSubjectsRendersPlaceholder(t *testing.T) {
	svc := NewTeacherService(newTestStore(t), nil, nil, nil)

	rows, err := svc.List(teacherActor)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Placeholder, rows[0].SubjectNames)
}

func TestTeacherCreate_ValidatesAssignments(t *testing.T) {
	st := newTestStore(t)
	svc := NewTeacherService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)

	created, err := svc.Create(adminActor, TeacherForm{
		Name:       "Mr. Rao",
		Email:      "rao@school.edu",
		SubjectIDs: []string{subject},
		ClassIDs:   []string{"c_10B"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{subject}, created.SubjectIDs)
	assert.Equal(t, []string{"c_10B"}, created.ClassIDs)

	_, err = svc.Create(adminActor, TeacherForm{Name: "X", SubjectIDs: []string{"sub_missing"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(adminActor, TeacherForm{Name: "X", ClassIDs: []string{"c_missing"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(teacherActor, TeacherForm{Name: "X"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestTeacherUpdate_RewritesAssignments(t *testing.T) {
	st := newTestStore(t)
	svc := NewTeacherService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)

	updated, err := svc.Update(adminActor, "u_t1", TeacherForm{
		Name:       "Ms. Priya Sharma",
		SubjectIDs: []string{subject},
		ClassIDs:   []string{"c_10A", "c_10B"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ms. Priya Sharma", updated.Name)
	assert.Len(t, updated.ClassIDs, 2)

	_, err = svc.Update(adminActor, "u_s1", TeacherForm{Name: "X"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTeacherDelete(t *testing.T) {
	st := newTestStore(t)
	svc := NewTeacherService(st, nil, nil, nil)

	require.NoError(t, svc.Delete(adminActor, "u_t1"))
	st.View(func(doc *models.Document) {
		assert.Empty(t, doc.Teachers)
	})

	assert.ErrorIs(t, svc.Delete(adminActor, "u_t1"), appErrors.ErrNotFound)
}
