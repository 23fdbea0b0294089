package kvrepos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliedu/backend/core/institution"
	"github.com/compliedu/backend/core/sar"
	"github.com/compliedu/backend/core/user"
	"github.com/compliedu/backend/storage/kv/inmem"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func setupDB(t *testing.T) (*DB, *inmem.Store) {
	t.Helper()
	store := inmem.NewStore()
	return NewDB(store, nopLogger{}), store
}

func TestInstitutionRepository(t *testing.T) {
	t.Run("first read persists the seed dataset", func(t *testing.T) {
		db, store := setupDB(t)
		repo := NewInstitutionRepository(db)

		insts, err := repo.QueryAllInstitutions()
		require.NoError(t, err)
		require.Len(t, insts, 3)
		assert.Equal(t, "RGUKT Basar", insts[0].Name)

		b, err := store.Get(institutionsKey)
		require.NoError(t, err)
		var stored []institution.Institution
		require.NoError(t, json.Unmarshal(b, &stored))
		assert.Len(t, stored, 3)
	})

	t.Run("corrupt collection falls back without overwriting", func(t *testing.T) {
		db, store := setupDB(t)
		repo := NewInstitutionRepository(db)
		require.NoError(t, store.Set(institutionsKey, []byte("{not json")))

		insts, err := repo.QueryAllInstitutions()
		require.NoError(t, err)
		assert.Len(t, insts, 3)

		b, err := store.Get(institutionsKey)
		require.NoError(t, err)
		assert.Equal(t, []byte("{not json"), b)
	})

	t.Run("create and lookup", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewInstitutionRepository(db)

		inst := institution.Institution{ID: "inst-x", Name: "New College", InstitutionCode: "NC"}
		_, err := repo.CreateInstitution(inst)
		require.NoError(t, err)

		got, err := repo.GetInstitutionByCode("NC")
		require.NoError(t, err)
		assert.Equal(t, "New College", got.Name)
		// default filled at the read boundary
		assert.Equal(t, institution.StatusPending, got.AccreditationStatus)

		assert.Equal(t, institution.ErrCodeExists, repo.CheckCodeUniqueness("NC"))
		assert.NoError(t, repo.CheckCodeUniqueness("OTHER"))

		_, err = repo.GetInstitutionByID("missing")
		assert.Equal(t, institution.ErrNotFound, err)
	})

	t.Run("update", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewInstitutionRepository(db)

		inst, err := repo.GetInstitutionByID("1")
		require.NoError(t, err)
		inst.PreQualifiersCompleted = true
		_, err = repo.UpdateInstitution(inst)
		require.NoError(t, err)

		got, err := repo.GetInstitutionByID("1")
		require.NoError(t, err)
		assert.True(t, got.PreQualifiersCompleted)

		_, err = repo.UpdateInstitution(institution.Institution{ID: "missing"})
		assert.Equal(t, institution.ErrNotFound, err)
	})
}

func TestUserRepository(t *testing.T) {
	t.Run("seed users can log in", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewUserRepository(db)

		usr, err := repo.GetUserByEmail("admin@compliedu.com")
		require.NoError(t, err)
		assert.True(t, usr.IsAdmin())
		assert.NoError(t, usr.CheckPassword("admin123"))
	})

	t.Run("email uniqueness", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewUserRepository(db)

		assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness("ADMIN@compliedu.com"))

		admin, err := repo.GetUserByEmail("admin@compliedu.com")
		require.NoError(t, err)
		assert.NoError(t, repo.CheckEmailUniqueness("admin@compliedu.com", admin))
	})

	t.Run("partial update", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewUserRepository(db)

		now := time.Now().UTC()
		isActive := false
		got, err := repo.UpdateUser(user.User{ID: "2", Name: "Renamed", UpdatedAt: now}, &isActive)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "rgukt@example.com", got.Email)
		assert.False(t, got.IsActive)
		assert.NotEmpty(t, got.PasswordHash)
	})

	t.Run("update or create", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewUserRepository(db)

		usr := user.User{ID: "ignored", Name: "Admin", Email: "admin@compliedu.com", Role: user.RoleAdmin, IsActive: true}
		got, err := repo.UpdateOrCreateUser(usr)
		require.NoError(t, err)
		assert.Equal(t, "1", got.ID) // matched on email, keeps the stored id

		fresh := user.User{ID: "99", Name: "New", Email: "new@compliedu.com", Role: user.RoleAdmin}
		got, err = repo.UpdateOrCreateUser(fresh)
		require.NoError(t, err)
		assert.Equal(t, "99", got.ID)

		all, err := repo.QueryAllUsers()
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})
}

func TestSARRepository(t *testing.T) {
	t.Run("seed applications are normalized", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewSARRepository(db)

		apps, err := repo.QueryAllApplications()
		require.NoError(t, err)
		require.Len(t, apps, 3)

		cse, err := repo.GetApplicationByID("sar-2")
		require.NoError(t, err)
		assert.Equal(t, sar.StatusInProgress, cse.Status)
		assert.Equal(t, 7, cse.CompletionPercentage) // 2 of 27 sections
		assert.Equal(t, 2, cse.Criteria[0].CompletedSections)
	})

	t.Run("update round trip", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewSARRepository(db)

		app, err := repo.GetApplicationByID("sar-3")
		require.NoError(t, err)
		app.Criteria[0].Sections[0].Content = "filled"
		app.Normalize()

		_, err = repo.UpdateApplication(app)
		require.NoError(t, err)

		got, err := repo.GetApplicationByID("sar-3")
		require.NoError(t, err)
		assert.Equal(t, app.CompletionPercentage, got.CompletionPercentage)
		assert.Equal(t, sar.StatusInProgress, got.Status)
	})

	t.Run("reads hand out independent copies", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewSARRepository(db)

		first, err := repo.GetApplicationByID("sar-3")
		require.NoError(t, err)
		first.Criteria[0].Sections[0].Content = "mutated but never saved"

		second, err := repo.GetApplicationByID("sar-3")
		require.NoError(t, err)
		assert.Empty(t, second.Criteria[0].Sections[0].Content)
	})

	t.Run("query by institution", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewSARRepository(db)

		apps, err := repo.QueryApplicationsByInstitution("1")
		require.NoError(t, err)
		assert.Len(t, apps, 3)

		apps, err = repo.QueryApplicationsByInstitution("2")
		require.NoError(t, err)
		assert.Empty(t, apps)
	})

	t.Run("institute form drafts", func(t *testing.T) {
		db, _ := setupDB(t)
		repo := NewSARRepository(db)

		_, err := repo.GetInstituteForm("sar-1")
		assert.Equal(t, sar.ErrFormNotFound, err)

		form := sar.InstituteForm{
			ApplicationID: "sar-1",
			Payload:       json.RawMessage(`{"instituteName":"RGUKT Basar"}`),
			Progress:      60,
			SavedAt:       time.Now().UTC(),
		}
		require.NoError(t, repo.SaveInstituteForm(form))

		got, err := repo.GetInstituteForm("sar-1")
		require.NoError(t, err)
		assert.Equal(t, 60, got.Progress)
		assert.JSONEq(t, string(form.Payload), string(got.Payload))
	})
}
