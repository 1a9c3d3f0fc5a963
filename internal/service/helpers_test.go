package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolmate/schoolmate-core/internal/access"
	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/internal/store"
)

var (
	adminActor   = access.Actor{UserID: "u_admin", Role: models.RoleAdmin}
	teacherActor = access.Actor{UserID: "u_t1", Role: models.RoleTeacher}
	studentActor = access.Actor{UserID: "u_s1", Role: models.RoleStudent}
)

// newTestStore opens a store over the in-memory persister with the seeded
// demo document: admin u_admin, teacher u_t1 (class c_10A), student u_s1
// (class c_10A), classes c_10A/c_10B, three subjects.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.NewMemoryPersister(), zap.NewNop(), nil)
	require.NoError(t, err)
	return st
}

// firstSubjectID returns the id of the first seeded subject (Mathematics).
func firstSubjectID(t *testing.T, st *store.Store) string {
	t.Helper()
	var id string
	st.View(func(doc *models.Document) {
		require.NotEmpty(t, doc.Subjects)
		id = doc.Subjects[0].ID
	})
	return id
}

// assignSubject attaches a subject to the seeded teacher u_t1.
func assignSubject(t *testing.T, st *store.Store, subjectID string) {
	t.Helper()
	require.NoError(t, st.Mutate(func(doc *models.Document) error {
		doc.UserByID("u_t1").SubjectIDs = []string{subjectID}
		return nil
	}))
}
