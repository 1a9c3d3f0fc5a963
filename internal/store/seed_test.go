package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolmate/schoolmate-core/internal/models"
)

func TestSeed_BackfillsEmptyCatalogs(t *testing.T) {
	doc := DefaultDocument()
	Seed(doc)

	require.Len(t, doc.Classes, 2)
	require.Len(t, doc.Subjects, 3)
	assert.Equal(t, "Mathematics", doc.Subjects[0].Name)
	assert.Equal(t, "Class 10A", doc.Classes[0].Name)
}

func TestSeed_IdempotentExceptMissingRolls(t *testing.T) {
	doc := DefaultDocument()
	Seed(doc)

	classes := append([]models.Class(nil), doc.Classes...)
	subjects := append([]models.Subject(nil), doc.Subjects...)
	rolls := map[string]string{}
	for _, s := range doc.Students {
		rolls[s.ID] = s.Roll
	}

	Seed(doc)

	assert.Equal(t, classes, doc.Classes)
	assert.Equal(t, subjects, doc.Subjects)
	for _, s := range doc.Students {
		assert.Equal(t, rolls[s.ID], s.Roll)
	}
}

func TestSeed_KeepsExistingCatalogs(t *testing.T) {
	doc := DefaultDocument()
	doc.Classes = []models.Class{{ID: "c_7C", Name: "Class 7C"}}
	doc.UserByID("u_s1").ClassID = ""
	Seed(doc)

	require.Len(t, doc.Classes, 1)
	assert.Equal(t, "c_7C", doc.Classes[0].ID)
	// students with no class land in the first catalog entry
	assert.Equal(t, "c_7C", doc.StudentByID("u_s1").ClassID)
}

func TestSyncProjections_DropsStaleEntriesAndPreservesRolls(t *testing.T) {
	doc := DefaultDocument()
	Seed(doc)
	roll := doc.Students[0].Roll
	doc.Students = append(doc.Students, models.Student{ID: "ghost", Name: "Ghost", Roll: "R-999"})

	SyncProjections(doc)

	require.Len(t, doc.Students, 1)
	assert.Equal(t, "u_s1", doc.Students[0].ID)
	assert.Equal(t, roll, doc.Students[0].Roll)
}

func TestSyncProjections_TeacherRelationsNeverNil(t *testing.T) {
	doc := DefaultDocument()
	doc.Users = append(doc.Users, models.User{ID: "u_t2", Role: models.RoleTeacher, Name: "Mr. Rao"})
	Seed(doc)

	tch := doc.TeacherByID("u_t2")
	require.NotNil(t, tch)
	assert.NotNil(t, tch.SubjectIDs)
	assert.NotNil(t, tch.ClassIDs)
}
