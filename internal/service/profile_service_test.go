package service

import (
	"alcyxob/gym-app/internal/authz"
	"alcyxob/gym-app/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.repos)
	student := f.student(t, "ana@gym.test")
	other := f.user(t, "other@gym.test", domain.RoleTrainer)

	updated, err := profiles.UpdateProfile(f.ctx, f.trainer, student.ID, ProfilePatch{
		Objective:        ptr("Run a 10k"),
		WeightKG:         ptr(61.5),
		DesiredFrequency: ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Run a 10k", *updated.Objective)
	assert.Equal(t, 3, *updated.DesiredFrequency)
	assert.Empty(t, updated.PasswordHash)

	stored, err := f.repos.Profiles.GetByID(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "unused", stored.PasswordHash, "profile writes keep the password hash")

	_, err = profiles.UpdateProfile(f.ctx, other, student.ID, ProfilePatch{Notes: ptr("x")})
	requireKind(t, err, domain.KindAuthorization)

	_, err = profiles.UpdateProfile(f.ctx, student, student.ID, ProfilePatch{DesiredFrequency: ptr(8)})
	requireKind(t, err, domain.KindValidation)

	_, err = profiles.UpdateProfile(f.ctx, f.trainer, f.trainer.ID, ProfilePatch{Objective: ptr("x")})
	requireKind(t, err, domain.KindValidation)
}

func TestProfileService_CompleteOnboarding(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.repos)
	student := f.student(t, "ana@gym.test")

	p, err := profiles.CompleteOnboarding(f.ctx, student)
	require.NoError(t, err)
	assert.True(t, p.OnboardingCompleted)
	p, err = profiles.CompleteOnboarding(f.ctx, student)
	require.NoError(t, err)
	assert.True(t, p.OnboardingCompleted)
}

func TestRosterService(t *testing.T) {
	f := newFixture(t)
	roster := NewRosterService(f.repos)
	ana := f.user(t, "ana@gym.test", domain.RoleStudent)

	added, err := roster.AddStudent(f.ctx, f.trainer, f.trainer.ID, "ana@gym.test")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, added.ID)

	_, err = roster.AddStudent(f.ctx, f.trainer, f.trainer.ID, "ana@gym.test")
	requireKind(t, err, domain.KindConflict)
	_, err = roster.AddStudent(f.ctx, f.trainer, f.trainer.ID, "admin@gym.test")
	requireKind(t, err, domain.KindValidation)
	_, err = roster.AddStudent(f.ctx, f.trainer, f.trainer.ID, "ghost@gym.test")
	requireKind(t, err, domain.KindNotFound)

	other := f.user(t, "other@gym.test", domain.RoleTrainer)
	_, err = roster.ListStudents(f.ctx, other, f.trainer.ID)
	requireKind(t, err, domain.KindAuthorization)

	students, err := roster.ListStudents(f.ctx, f.trainer, f.trainer.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Empty(t, students[0].PasswordHash)

	require.NoError(t, roster.RemoveStudent(f.ctx, f.trainer, f.trainer.ID, ana.ID))
	students, err = roster.ListStudents(f.ctx, f.trainer, f.trainer.ID)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestAdminService(t *testing.T) {
	f := newFixture(t)
	admin := NewAdminService(f.repos)
	student := f.student(t, "ana@gym.test")

	_, err := admin.ListUsers(f.ctx, f.trainer, "")
	requireKind(t, err, domain.KindAuthorization)

	users, err := admin.ListUsers(f.ctx, f.admin, domain.RoleStudent)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, student.ID, users[0].ID)

	created, err := admin.CreateUser(f.ctx, f.admin, SignUpInput{
		Email: "second-admin@gym.test", Password: "long-enough", FullName: "Second", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, created.Role)

	_, err = admin.ChangeRole(f.ctx, f.admin, f.admin.ID, domain.RoleStudent)
	requireKind(t, err, domain.KindValidation)
	changed, err := admin.ChangeRole(f.ctx, f.admin, student.ID, domain.RoleTrainer)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, changed.Role)

	f.createRoutine(t, beginnerInput())

	report, err := admin.Report(f.ctx, f.admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.Routines)
	assert.EqualValues(t, 2, report.UsersByRole[domain.RoleAdmin])
	assert.EqualValues(t, 2, report.UsersByRole[domain.RoleTrainer])
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	in := SignUpInput{Email: " Root@Gym.test", Password: "long-enough", FullName: "Root"}

	admin, created, err := EnsureAdmin(f.ctx, f.repos.Profiles, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "root@gym.test", admin.Email)
	assert.Empty(t, admin.PasswordHash)

	again, created, err := EnsureAdmin(f.ctx, f.repos.Profiles, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)
	assert.Empty(t, again.PasswordHash)

	// the seeded admin can use the admin module right away
	users, err := NewAdminService(f.repos).ListUsers(f.ctx, authz.Principal{ID: admin.ID, Role: admin.Role}, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	existing, created, err := EnsureAdmin(f.ctx, f.repos.Profiles, SignUpInput{Email: "coach@gym.test", Password: "long-enough", FullName: "Coach"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, domain.RoleTrainer, existing.Role, "an existing account is never promoted")

	_, _, err = EnsureAdmin(f.ctx, f.repos.Profiles, SignUpInput{Email: "weak@gym.test", Password: "short", FullName: "Weak"})
	requireKind(t, err, domain.KindValidation)
}
