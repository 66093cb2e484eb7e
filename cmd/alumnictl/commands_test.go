package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/repositories"
)

type fakeMigrator struct{ commands []string }

func (f *fakeMigrator) Migrate(_ context.Context, command string) error {
	f.commands = append(f.commands, command)
	return nil
}

type fakeAdmins struct {
	granted []string
	err     error
}

func (f *fakeAdmins) GrantByEmail(_ context.Context, email string, _ *string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.granted = append(f.granted, email)
	return &models.Account{ID: "u1", Email: email}, nil
}

func (f *fakeAdmins) RevokeByEmail(_ context.Context, email string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Account{ID: "u1", Email: email}, nil
}

func (f *fakeAdmins) List(context.Context) ([]*models.Admin, error) {
	return []*models.Admin{{UserID: "u1", GrantedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}}, nil
}

type decision struct {
	id     string
	d      models.Moderation
	actor  *string
	source string
}

type fakeModerator struct {
	decisions []decision
	err       error
}

func (f *fakeModerator) ListPending(context.Context, int) ([]*models.PendingMember, error) {
	name := "Asha Rao"
	return []*models.PendingMember{{ID: "p1", Email: "asha@example.org", FullName: &name}}, nil
}

func (f *fakeModerator) Decide(_ context.Context, id string, d models.Moderation, actor *string, source, _ string) (*repositories.ModerationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.decisions = append(f.decisions, decision{id, d, actor, source})
	return &repositories.ModerationResult{ProfileID: id, Decision: d}, nil
}

type fakeHistory struct{}

func (fakeHistory) ListByProfile(context.Context, string, int) ([]*models.ModerationEvent, error) {
	return nil, nil
}

type harness struct {
	migrator  *fakeMigrator
	admins    *fakeAdmins
	moderator *fakeModerator
	builds    int
	closes    int
}

func newHarness() *harness {
	return &harness{migrator: &fakeMigrator{}, admins: &fakeAdmins{}, moderator: &fakeModerator{}}
}

func (h *harness) run(args ...string) (string, error) {
	factory := func(context.Context, *rootOptions) (*app, error) {
		h.builds++
		return &app{
			migrator:   h.migrator,
			admins:     h.admins,
			moderation: h.moderator,
			history:    fakeHistory{},
			close:      func() { h.closes++ },
		}, nil
	}
	cmd := newRootCmd(factory)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	h := newHarness()
	out, err := h.run("migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, []string{"up"}, h.migrator.commands)
	assert.Contains(t, out, "migrate up: ok")
	assert.Equal(t, 1, h.closes)

	_, err = h.run("migrate", "sideways")
	assert.Error(t, err)
	assert.Equal(t, 1, h.builds, "invalid args never touch the database")
}

func TestAdminGrantAndList(t *testing.T) {
	h := newHarness()
	out, err := h.run("admin", "grant", "mod@example.org")
	require.NoError(t, err)
	assert.Equal(t, []string{"mod@example.org"}, h.admins.granted)
	assert.Contains(t, out, "granted admin to mod@example.org")

	out, err = h.run("admin", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "u1\t2026-01-02")
}

func TestAdminUnknownAccount(t *testing.T) {
	h := newHarness()
	h.admins.err = models.ErrNotFound
	_, err := h.run("admin", "revoke", "ghost@example.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost@example.org")
}

func TestMembersDecide(t *testing.T) {
	id := uuid.NewString()
	h := newHarness()

	out, err := h.run("members", "approve", id)
	require.NoError(t, err)
	assert.Contains(t, out, id+" approved")

	_, err = h.run("members", "reject", id)
	require.NoError(t, err)

	require.Len(t, h.moderator.decisions, 2)
	assert.Equal(t, models.ModerationApproved, h.moderator.decisions[0].d)
	assert.Equal(t, models.ModerationRejected, h.moderator.decisions[1].d)
	assert.Nil(t, h.moderator.decisions[0].actor, "cli decisions carry no actor")
	assert.Equal(t, models.ModerationSourceCLI, h.moderator.decisions[0].source)
}

func TestMembersDecide_Errors(t *testing.T) {
	h := newHarness()
	_, err := h.run("members", "approve", "not-a-uuid")
	assert.ErrorIs(t, err, errUsage)
	assert.Empty(t, h.moderator.decisions)

	h.moderator.err = models.ErrNotFound
	_, err = h.run("members", "approve", uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no member")

	h.moderator.err = errors.New("boom")
	_, err = h.run("members", "reject", uuid.NewString())
	assert.EqualError(t, err, "boom")
}

func TestMembersPendingAndHistory(t *testing.T) {
	h := newHarness()
	out, err := h.run("members", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "asha@example.org\tAsha Rao")
	assert.Contains(t, out, "1 pending")

	out, err = h.run("members", "history", uuid.NewString())
	require.NoError(t, err)
	assert.Contains(t, out, "no decisions recorded")
}
