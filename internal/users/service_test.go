package users

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/apperr"
	"github.com/gestaodobem/backend/pkg/utils"
)

type fakeStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeStore() *fakeStore { return &fakeStore{users: map[uuid.UUID]*models.User{}} }

func (s *fakeStore) add(u *models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = u
	return u
}

func toConnections(skills []models.SkillInput) []models.UserSkill {
	out := make([]models.UserSkill, 0, len(skills))
	for _, sk := range skills {
		out = append(out, models.UserSkill{SkillID: uuid.New(), Name: sk.Name, Level: sk.Level})
	}
	return out
}

func (s *fakeStore) Create(_ context.Context, u *models.User, skills []models.SkillInput) error {
	u.ID = uuid.New()
	u.Skills = toConnections(skills)
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) List(_ context.Context, orgID uuid.UUID) ([]*models.User, error) {
	var out []*models.User
	for _, u := range s.users {
		if u.OrganizationID == orgID && u.Role != models.RoleOrganization {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) Get(_ context.Context, orgID, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok || u.OrganizationID != orgID {
		return nil, errNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) Update(_ context.Context, u *models.User, skills *[]models.SkillInput) error {
	if skills != nil {
		u.Skills = toConnections(*skills)
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) Delete(_ context.Context, orgID, id uuid.UUID) error {
	u, ok := s.users[id]
	if !ok || u.OrganizationID != orgID {
		return errNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeStore) SetStatus(_ context.Context, orgID, id uuid.UUID, status models.UserStatus) error {
	u, ok := s.users[id]
	if !ok || u.OrganizationID != orgID {
		return errNotFound
	}
	u.Status = status
	return nil
}

func (s *fakeStore) EmailInUse(_ context.Context, email string, exceptID uuid.UUID) (bool, error) {
	for _, u := range s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListSkills(context.Context) ([]*models.Skill, error) { return nil, nil }

func newTestService(store Store) *Service {
	return NewService(store, utils.NewPasswordHasher(4), nil)
}

func session(role models.Role, orgID uuid.UUID) models.Session {
	return models.Session{UserID: uuid.New(), Role: role, OrganizationID: orgID}
}

func TestCreate_Defaults(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	sess := session(models.RoleCoordinator, uuid.New())

	u, err := svc.Create(context.Background(), sess, CreateInput{
		FullName: "Bia",
		Email:    "bia@ong.org",
		Password: "segredo1",
		Skills:   []models.SkillInput{{Name: "cozinha"}, {Name: "Cozinha"}, {Name: "música", Level: models.ProficiencyAdvanced}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleVolunteer, u.Role)
	assert.Equal(t, models.UserActive, u.Status)
	assert.Equal(t, sess.OrganizationID, u.OrganizationID)
	assert.Equal(t, 0, u.ActionsCount)
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, []string{"cozinha", "música"}, u.SkillNames())
	assert.Equal(t, models.ProficiencyBasic, u.Skills[0].Level)
	assert.NotEmpty(t, store.users[u.ID].PasswordHash)
}

func TestCreate_Permissions(t *testing.T) {
	svc := newTestService(newFakeStore())
	orgID := uuid.New()
	in := CreateInput{FullName: "Bia", Email: "bia@ong.org", Password: "segredo1"}

	_, err := svc.Create(context.Background(), session(models.RoleVolunteer, orgID), in)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	in.Role = models.RoleAdmin
	_, err = svc.Create(context.Background(), session(models.RoleCoordinator, orgID), in)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), session(models.RoleAdmin, orgID), in)
	assert.NoError(t, err)
}

func TestCreate_EmailConflict(t *testing.T) {
	store := newFakeStore()
	store.add(&models.User{Email: "bia@ong.org", OrganizationID: uuid.New()})
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), session(models.RoleAdmin, uuid.New()), CreateInput{
		FullName: "Bia", Email: "BIA@ong.org", Password: "segredo1",
	})
	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.Len(t, store.users, 1)
}

func TestCreate_ShortPassword(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Create(context.Background(), session(models.RoleAdmin, uuid.New()), CreateInput{
		FullName: "Bia", Email: "bia@ong.org", Password: "123",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGet_OtherOrganization(t *testing.T) {
	store := newFakeStore()
	u := store.add(&models.User{Email: "bia@ong.org", OrganizationID: uuid.New()})
	svc := newTestService(store)

	_, err := svc.Get(context.Background(), uuid.New(), u.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdate(t *testing.T) {
	store := newFakeStore()
	orgID := uuid.New()
	u := store.add(&models.User{FullName: "Bia", Email: "bia@ong.org", Role: models.RoleVolunteer, OrganizationID: orgID})
	store.add(&models.User{Email: "caio@ong.org", OrganizationID: orgID})
	svc := newTestService(store)
	ctx := context.Background()

	self := models.Session{UserID: u.ID, Role: models.RoleVolunteer, OrganizationID: orgID}
	name := "Beatriz"
	got, err := svc.Update(ctx, self, u.ID, UpdateInput{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Beatriz", got.FullName)

	role := models.RoleCoordinator
	_, err = svc.Update(ctx, self, u.ID, UpdateInput{Role: &role})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	email := "caio@ong.org"
	_, err = svc.Update(ctx, session(models.RoleAdmin, orgID), u.ID, UpdateInput{Email: &email})
	assert.ErrorIs(t, err, ErrEmailInUse)

	skills := []models.SkillInput{{Name: "logística"}}
	got, err = svc.Update(ctx, session(models.RoleAdmin, orgID), u.ID, UpdateInput{Role: &role, Skills: &skills})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoordinator, got.Role)
	assert.Equal(t, []string{"logística"}, got.SkillNames())
}

func TestUpdate_OtherMemberRequiresCapability(t *testing.T) {
	store := newFakeStore()
	orgID := uuid.New()
	u := store.add(&models.User{FullName: "Bia", OrganizationID: orgID})
	svc := newTestService(store)

	name := "x"
	_, err := svc.Update(context.Background(), session(models.RoleVolunteer, orgID), u.ID, UpdateInput{FullName: &name})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRemove(t *testing.T) {
	store := newFakeStore()
	orgID := uuid.New()
	u := store.add(&models.User{OrganizationID: orgID})
	svc := newTestService(store)
	ctx := context.Background()

	self := models.Session{UserID: u.ID, Role: models.RoleAdmin, OrganizationID: orgID}
	assert.ErrorIs(t, svc.Remove(ctx, self, u.ID), ErrCannotRemove)

	assert.True(t, apperr.IsNotFound(svc.Remove(ctx, session(models.RoleAdmin, uuid.New()), u.ID)))

	require.NoError(t, svc.Remove(ctx, session(models.RoleAdmin, orgID), u.ID))
	assert.Empty(t, store.users)
}

func TestToggleStatus(t *testing.T) {
	store := newFakeStore()
	orgID := uuid.New()
	u := store.add(&models.User{OrganizationID: orgID, Status: models.UserActive})
	svc := newTestService(store)
	sess := session(models.RoleOrganization, orgID)

	got, err := svc.ToggleStatus(context.Background(), sess, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserInactive, got.Status)
	assert.Equal(t, models.UserInactive, store.users[u.ID].Status)

	got, err = svc.ToggleStatus(context.Background(), sess, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, got.Status)
}

func TestAdminAccountsNeedAssignAdmin(t *testing.T) {
	store := newFakeStore()
	orgID := uuid.New()
	admin := store.add(&models.User{FullName: "Ana", Email: "ana@ong.org", Role: models.RoleAdmin, Status: models.UserActive, OrganizationID: orgID})
	svc := newTestService(store)
	ctx := context.Background()

	for _, role := range []models.Role{models.RoleCoordinator, models.RoleOrganization} {
		sess := session(role, orgID)

		demote := models.RoleVolunteer
		_, err := svc.Update(ctx, sess, admin.ID, UpdateInput{Role: &demote})
		assert.ErrorIs(t, err, ErrAdminProtected, role)

		_, err = svc.ToggleStatus(ctx, sess, admin.ID)
		assert.ErrorIs(t, err, ErrAdminProtected, role)

		assert.ErrorIs(t, svc.Remove(ctx, sess, admin.ID), ErrAdminProtected, role)
	}
	require.Contains(t, store.users, admin.ID)
	assert.Equal(t, models.RoleAdmin, store.users[admin.ID].Role)
	assert.Equal(t, models.UserActive, store.users[admin.ID].Status)

	other := session(models.RoleAdmin, orgID)
	demote := models.RoleCoordinator
	got, err := svc.Update(ctx, other, admin.ID, UpdateInput{Role: &demote})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoordinator, got.Role)
}

func TestAdminMayEditOwnProfile(t *testing.T) {
	store := newFakeStore()
	orgID := uuid.New()
	admin := store.add(&models.User{FullName: "Ana", Role: models.RoleAdmin, OrganizationID: orgID})
	svc := newTestService(store)

	name := "Ana Paula"
	got, err := svc.Update(context.Background(), models.Session{UserID: admin.ID, Role: models.RoleAdmin, OrganizationID: orgID}, admin.ID, UpdateInput{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Paula", got.FullName)
}
