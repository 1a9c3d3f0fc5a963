package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolmate/schoolmate-core/internal/models"
	appErrors "github.com/schoolmate/schoolmate-core/pkg/errors"
)

func TestGradeSheet_BlankMarksWithoutPersisting(t *testing.T) {
	st := newTestStore(t)
	svc := NewGradeService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)

	sheet, err := svc.Sheet(adminActor, "c_10A", subject)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Nil(t, sheet.Rows[0].Marks)

	st.View(func(doc *models.Document) {
		assert.Empty(t, doc.Grades)
	})
}

func TestGradeSave_UpsertsByTriple(t *testing.T) {
	st := newTestStore(t)
	svc := NewGradeService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)

	require.NoError(t, svc.Save(adminActor, "c_10A", subject, []MarkInput{{StudentID: "u_s1", Marks: "72"}}))
	require.NoError(t, svc.Save(adminActor, "c_10A", subject, []MarkInput{{StudentID: "u_s1", Marks: "88"}}))

	st.View(func(doc *models.Document) {
		require.Len(t, doc.Grades, 1)
		assert.Equal(t, 88.0, doc.Grades[0].Marks)
	})
}

func TestGradeSave_AppendsInFormOrder(t *testing.T) {
	st := newTestStore(t)
	svc := NewGradeService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)

	require.NoError(t, st.Mutate(func(doc *models.Document) error {
		doc.Users = append(doc.Users,
			models.User{ID: "u_s2", Role: models.RoleStudent, Name: "Neha", ClassID: "c_10A"},
			models.User{ID: "u_s3", Role: models.RoleStudent, Name: "Ravi", ClassID: "c_10A"},
		)
		return nil
	}))

	require.NoError(t, svc.Save(adminActor, "c_10A", subject, []MarkInput{
		{StudentID: "u_s3", Marks: "60"},
		{StudentID: "u_s1", Marks: "70"},
		{StudentID: "u_s2", Marks: "80"},
	}))

	st.View(func(doc *models.Document) {
		require.Len(t, doc.Grades, 3)
		assert.Equal(t, "u_s3", doc.Grades[0].StudentID)
		assert.Equal(t, "u_s1", doc.Grades[1].StudentID)
		assert.Equal(t, "u_s2", doc.Grades[2].StudentID)
	})
}

func TestGradeSave_CoercesNonNumericToZero(t *testing.T) {
	st := newTestStore(t)
	svc := NewGradeService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)

	require.NoError(t, svc.Save(adminActor, "c_10A", subject, []MarkInput{{StudentID: "u_s1", Marks: "abc"}}))

	st.View(func(doc *models.Document) {
		require.Len(t, doc.Grades, 1)
		assert.Equal(t, 0.0, doc.Grades[0].Marks)
	})
}

func TestGradeSave_RejectsOutOfRange(t *testing.T) {
	st := newTestStore(t)
	svc := NewGradeService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)

	err := svc.Save(adminActor, "c_10A", subject, []MarkInput{{StudentID: "u_s1", Marks: "101"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = svc.Save(adminActor, "c_10A", subject, []MarkInput{{StudentID: "u_s1", Marks: "-1"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	st.View(func(doc *models.Document) {
		assert.Empty(t, doc.Grades)
	})
}

func TestGradeSheet_TeacherNeedsSubjectAssignment(t *testing.T) {
	st := newTestStore(t)
	svc := NewGradeService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)

	_, err := svc.Sheet(teacherActor, "c_10A", subject)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	assignSubject(t, st, subject)
	sheet, err := svc.Sheet(teacherActor, "c_10A", subject)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", sheet.SubjectName)
}

func TestStudentMarks_SelfOnly(t *testing.T) {
	st := newTestStore(t)
	svc := NewGradeService(st, nil, nil, nil)
	subject := firstSubjectID(t, st)
	require.NoError(t, svc.Save(adminActor, "c_10A", subject, []MarkInput{{StudentID: "u_s1", Marks: "91"}}))

	rows, err := svc.StudentMarks(studentActor, "u_s1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mathematics", rows[0].SubjectName)
	assert.Equal(t, 91.0, rows[0].Marks)

	_, err = svc.StudentMarks(studentActor, "someone_else")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestGradeSheet_DanglingSubjectRendersPlaceholder(t *testing.T) {
	st := newTestStore(t)
	svc := NewGradeService(st, nil, nil, nil)

	sheet, err := svc.Sheet(adminActor, "c_10A", "sub_gone")
	require.NoError(t, err)
	assert.Equal(t, models.Placeholder, sheet.SubjectName)
}
