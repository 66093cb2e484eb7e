//go:build integration

package repositories

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/alumninet/internal/directory"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/testutil/pgtest"
)

var testDB *pgtest.TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	testDB, err = pgtest.Setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up test database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = testDB.Teardown(ctx)
	os.Exit(code)
}

func reset(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, testDB.Reset(ctx))
	return ctx
}

func seedBranch(t *testing.T, ctx context.Context, n int, branch, moderation string) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := testDB.SeedMember(ctx, pgtest.Member{
			Email:      fmt.Sprintf("%s-%s-%02d@example.com", moderation, branch[:3], i),
			FullName:   fmt.Sprintf("%s Member %02d", branch, i),
			Branch:     branch,
			Degree:     "B.Tech",
			Year:       2015,
			Company:    "Acme",
			City:       "Pune",
			Country:    "India",
			Onboarded:  true,
			Moderation: moderation,
			Public:     true,
		})
		require.NoError(t, err)
	}
}

func TestSearch_BranchFilterPagination(t *testing.T) {
	ctx := reset(t)
	repo := NewProfileRepository(testDB.DB)

	seedBranch(t, ctx, 30, "Computer Science & Engineering", "approved")
	seedBranch(t, ctx, 5, "Electronics & Communication Engineering", "approved")
	seedBranch(t, ctx, 4, "Computer Science & Engineering", "pending")

	f := directory.Filters{Branch: "Computer Science & Engineering", Page: 1}
	items, total, err := repo.Search(ctx, directory.Build(f))
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
	assert.Len(t, items, 24)
	assert.Equal(t, 2, directory.TotalPages(total))

	f.Page = 2
	items, _, err = repo.Search(ctx, directory.Build(f))
	require.NoError(t, err)
	assert.Len(t, items, 6)
	for _, it := range items {
		assert.Equal(t, "Computer Science & Engineering", *it.Branch)
	}
}

func TestSearch_OnlyApprovedPublicOnboarded(t *testing.T) {
	ctx := reset(t)
	repo := NewProfileRepository(testDB.DB)

	seedBranch(t, ctx, 2, "Physics", "approved")
	seedBranch(t, ctx, 3, "Physics", "pending")
	seedBranch(t, ctx, 1, "Physics", "rejected")
	_, err := testDB.SeedMember(ctx, pgtest.Member{
		Email: "hidden@example.com", FullName: "Hidden", Branch: "Physics", Degree: "PhD",
		Year: 2000, Onboarded: true, Moderation: "approved", Public: false,
	})
	require.NoError(t, err)
	_, err = testDB.SeedMember(ctx, pgtest.Member{
		Email: "new@example.com", FullName: "New", Branch: "Physics", Degree: "PhD",
		Year: 2000, Onboarded: false, Moderation: "approved", Public: true,
	})
	require.NoError(t, err)

	items, total, err := repo.Search(ctx, directory.Build(directory.Filters{Page: 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestSearch_LikeMetacharactersMatchLiterally(t *testing.T) {
	ctx := reset(t)
	repo := NewProfileRepository(testDB.DB)

	for _, company := range []string{"100% Pure", "100 Pure"} {
		_, err := testDB.SeedMember(ctx, pgtest.Member{
			Email: company + "@example.com", FullName: company, Branch: "Physics", Degree: "MBA",
			Year: 2010, Company: company, Onboarded: true, Moderation: "approved", Public: true,
		})
		require.NoError(t, err)
	}

	items, total, err := repo.Search(ctx, directory.Build(directory.Filters{Company: "0%", Page: 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "100% Pure", *items[0].Company)
}

func TestSearch_InterestAndLocation(t *testing.T) {
	ctx := reset(t)
	repo := NewProfileRepository(testDB.DB)

	_, err := testDB.SeedMember(ctx, pgtest.Member{
		Email: "a@example.com", FullName: "A", Branch: "Physics", Degree: "MBA", Year: 2010,
		City: "Berlin", Country: "Germany", Interests: []string{"Mentorship & Guidance"},
		Onboarded: true, Moderation: "approved", Public: true,
	})
	require.NoError(t, err)
	_, err = testDB.SeedMember(ctx, pgtest.Member{
		Email: "b@example.com", FullName: "B", Branch: "Physics", Degree: "MBA", Year: 2010,
		City: "Pune", Country: "India", Interests: []string{"Jobs & Internships"},
		Onboarded: true, Moderation: "approved", Public: true,
	})
	require.NoError(t, err)

	items, _, err := repo.Search(ctx, directory.Build(directory.Filters{Location: "germ", Page: 1}))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", *items[0].FullName)

	items, _, err = repo.Search(ctx, directory.Build(directory.Filters{Interest: "Jobs & Internships", Page: 1}))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", *items[0].FullName)
}

func TestEnsureAndSaveOnboarding(t *testing.T) {
	ctx := reset(t)
	accounts := NewAccountRepository(testDB.DB)
	profiles := NewProfileRepository(testDB.DB)

	acct, err := accounts.Create(ctx, "Jane@Example.com", "hash", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", acct.Email)

	flags, err := profiles.GetFlags(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, flags.Onboarded)
	assert.False(t, flags.Approved)

	name := "Someone Else"
	require.NoError(t, profiles.Ensure(ctx, acct.ID, acct.Email, &name, nil))

	city := "Pune"
	saved, err := profiles.SaveOnboarding(ctx, acct.ID, &models.OnboardingUpdate{
		FullName:       "Jane Doe",
		Email:          acct.Email,
		PhoneE164:      "+919876543210",
		City:           &city,
		GraduationYear: 2018,
		Degree:         "B.Tech",
		Branch:         "Physics",
		EmploymentType: "Employed",
		Interests:      []string{"Community Activities"},
		IsPublic:       true,
	})
	require.NoError(t, err)
	assert.True(t, saved.Onboarded)
	assert.True(t, saved.AcceptedTerms)
	assert.Equal(t, models.ModerationPending, saved.Moderation)
	assert.Equal(t, "Jane Doe", *saved.FullName)

	_, err = profiles.SetModeration(ctx, acct.ID, models.ModerationApproved, nil, models.ModerationSourceCLI)
	require.NoError(t, err)

	// re-saving never resets moderation
	saved, err = profiles.SaveOnboarding(ctx, acct.ID, &models.OnboardingUpdate{
		FullName: "Jane D", Email: acct.Email, PhoneE164: "+919876543210",
		GraduationYear: 2018, Degree: "B.Tech", Branch: "Physics", EmploymentType: "Employed",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ModerationApproved, saved.Moderation)
}

func TestSaveOnboarding_RejectsUnknownInterest(t *testing.T) {
	ctx := reset(t)
	accounts := NewAccountRepository(testDB.DB)
	profiles := NewProfileRepository(testDB.DB)

	acct, err := accounts.Create(ctx, "x@example.com", "hash", "", nil, nil)
	require.NoError(t, err)

	_, err = profiles.SaveOnboarding(ctx, acct.ID, &models.OnboardingUpdate{
		FullName: "X", Email: acct.Email, PhoneE164: "+919876543210", GraduationYear: 2018,
		Degree: "B.Tech", Branch: "Physics", EmploymentType: "Employed",
		Interests: []string{"Golf"},
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)

	var fieldErr *models.ValidationError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "interests", fieldErr.Field)
}

func TestSaveOnboarding_KeepsAvatarWhenBlank(t *testing.T) {
	ctx := reset(t)
	accounts := NewAccountRepository(testDB.DB)
	profiles := NewProfileRepository(testDB.DB)

	google := "https://lh3.googleusercontent.com/a/asha"
	acct, err := accounts.Create(ctx, "asha@example.com", "", "google-sub-1", nil, &google)
	require.NoError(t, err)

	update := &models.OnboardingUpdate{
		FullName: "Asha Rao", Email: acct.Email, PhoneE164: "+919876543210", GraduationYear: 2015,
		Degree: "B.Tech", Branch: "Physics", EmploymentType: "Employed",
	}
	saved, err := profiles.SaveOnboarding(ctx, acct.ID, update)
	require.NoError(t, err)
	require.NotNil(t, saved.AvatarURL)
	assert.Equal(t, google, *saved.AvatarURL)

	uploaded := "avatars/asha.png"
	update.AvatarURL = &uploaded
	saved, err = profiles.SaveOnboarding(ctx, acct.ID, update)
	require.NoError(t, err)
	require.NotNil(t, saved.AvatarURL)
	assert.Equal(t, uploaded, *saved.AvatarURL)
}

func TestSetModeration_RecordsEvent(t *testing.T) {
	ctx := reset(t)
	profiles := NewProfileRepository(testDB.DB)
	events := NewModerationEventRepository(testDB.DB)
	admins := NewAdminRepository(testDB.DB)

	adminID, err := testDB.SeedAccount(ctx, "admin@example.com", "")
	require.NoError(t, err)
	require.NoError(t, admins.Grant(ctx, adminID, nil))

	memberID, err := testDB.SeedMember(ctx, pgtest.Member{
		Email: "m@example.com", FullName: "M", Branch: "Physics", Degree: "MBA", Year: 2010,
		Onboarded: true, Moderation: "pending", Public: true,
	})
	require.NoError(t, err)

	pending, err := profiles.ListPending(ctx, 50)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, memberID, pending[0].ID)

	res, err := profiles.SetModeration(ctx, memberID, models.ModerationRejected, &adminID, models.ModerationSourceAPI)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationRejected, res.Decision)
	assert.Equal(t, "m@example.com", res.Email)

	trail, err := events.ListByProfile(ctx, memberID, 10)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, models.ModerationRejected, trail[0].Decision)
	require.NotNil(t, trail[0].ActorID)
	assert.Equal(t, adminID, trail[0].ActorID.String())

	pending, err = profiles.ListPending(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = profiles.SetModeration(ctx, "00000000-0000-0000-0000-000000000000", models.ModerationApproved, &adminID, models.ModerationSourceAPI)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAdminRepository(t *testing.T) {
	ctx := reset(t)
	admins := NewAdminRepository(testDB.DB)

	id, err := testDB.SeedAccount(ctx, "a@example.com", "")
	require.NoError(t, err)

	ok, err := admins.IsAdmin(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, admins.Grant(ctx, id, nil))
	require.NoError(t, admins.Grant(ctx, id, nil))

	ok, err = admins.IsAdmin(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := admins.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, admins.Revoke(ctx, id))
	assert.ErrorIs(t, admins.Revoke(ctx, id), models.ErrNotFound)
}

func TestAccountRepository_TokenKeyRotation(t *testing.T) {
	ctx := reset(t)
	accounts := NewAccountRepository(testDB.DB)

	acct, err := accounts.Create(ctx, "k@example.com", "", "google-sub-1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, acct.PasswordHash)

	byGoogle, err := accounts.GetByGoogleSub(ctx, "google-sub-1")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byGoogle.ID)

	before, err := accounts.GetTokenKey(ctx, acct.ID)
	require.NoError(t, err)
	require.NoError(t, accounts.RotateTokenKey(ctx, acct.ID))
	after, err := accounts.GetTokenKey(ctx, acct.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	_, err = accounts.Create(ctx, "K@example.com", "", "", nil, nil)
	assert.ErrorIs(t, err, models.ErrConflict)
}
