package donations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

func setupDonationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'user',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  creator_id TEXT NOT NULL,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  financial_goal NUMERIC NOT NULL,
  category_id TEXT NOT NULL,
  location TEXT,
  start_date DATETIME,
  end_date DATETIME NOT NULL,
  approval_status TEXT NOT NULL DEFAULT 'draft',
  campaign_status TEXT NOT NULL DEFAULT 'not_started',
  proof_document_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS donations (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  is_anonymous INTEGER NOT NULL DEFAULT 0,
  payment_reference TEXT,
  donation_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}

	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func mustCreateUser(t *testing.T, db *gorm.DB, first, last string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		FirstName:    first,
		LastName:     last,
		Role:         enums.MemberRoleUser,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func mustCreateProject(t *testing.T, db *gorm.DB) *models.Project {
	t.Helper()
	project := &models.Project{
		ID:             uuid.New(),
		CreatorID:      uuid.New(),
		Title:          "Huertos urbanos",
		Slug:           "huertos-urbanos-" + uuid.NewString()[:8],
		Description:    "Huertos comunitarios",
		FinancialGoal:  decimal.NewFromInt(2000),
		CategoryID:     uuid.New(),
		EndDate:        time.Now().Add(30 * 24 * time.Hour),
		ApprovalStatus: enums.ApprovalStatusPublished,
		CampaignStatus: enums.CampaignStatusActive,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func mustCreateDonation(t *testing.T, db *gorm.DB, project *models.Project, user *models.User, amount int64, status enums.DonationStatus, anonymous bool, at time.Time) *models.Donation {
	t.Helper()
	donation := &models.Donation{
		ID:            uuid.New(),
		ProjectID:     project.ID,
		UserID:        user.ID,
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: enums.PaymentMethodCard,
		PaymentStatus: status,
		IsAnonymous:   anonymous,
		DonationDate:  at,
	}
	require.NoError(t, db.Create(donation).Error)
	return donation
}

func TestRepoProjectExists(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := mustCreateProject(t, db)

	exists, err := repo.ProjectExists(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ProjectExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepoListByUserJoinsProject(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := mustCreateProject(t, db)
	donor := mustCreateUser(t, db, "Lucía", "Paredes")
	mustCreateDonation(t, db, project, donor, 100, enums.DonationStatusPending, false, time.Now())

	page, err := repo.ListByUser(ctx, donor.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Donations, 1)
	assert.Equal(t, project.Title, page.Donations[0].ProjectTitle)
	assert.Equal(t, project.Slug, page.Donations[0].ProjectSlug)
}

func TestRepoListCompletedByProjectMasksAnonymous(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := mustCreateProject(t, db)
	open := mustCreateUser(t, db, "Lucía", "Paredes")
	hidden := mustCreateUser(t, db, "Marco", "Quispe")

	now := time.Now()
	mustCreateDonation(t, db, project, open, 100, enums.DonationStatusCompleted, false, now.Add(-2*time.Minute))
	mustCreateDonation(t, db, project, hidden, 50, enums.DonationStatusCompleted, true, now.Add(-time.Minute))
	mustCreateDonation(t, db, project, open, 999, enums.DonationStatusPending, false, now)

	page, err := repo.ListCompletedByProject(ctx, project.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Donations, 2, "pending donations must not appear")

	// Newest completed first.
	assert.Equal(t, AnonymousDonorName, page.Donations[0].DonorName)
	assert.Equal(t, "Lucía Paredes", page.Donations[1].DonorName)
}
