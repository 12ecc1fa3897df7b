package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workmatch/workmatch/internal/db"
)

func TestRolePermissions(t *testing.T) {
	// admins do everything
	assert.True(t, Can(db.CompanyRoleAdmin, PermManageTeam))
	assert.True(t, Can(db.CompanyRoleAdmin, PermManageCompany))
	assert.True(t, Can(db.CompanyRoleAdmin, PermSwipe))

	// recruiters do everything except manage the team
	assert.False(t, Can(db.CompanyRoleRecruiter, PermManageTeam))
	assert.True(t, Can(db.CompanyRoleRecruiter, PermManageCompany))
	assert.True(t, Can(db.CompanyRoleRecruiter, PermManageJobs))
	assert.True(t, Can(db.CompanyRoleRecruiter, PermShareJobs))

	// hiring managers only act in the match feed
	assert.False(t, Can(db.CompanyRoleHiringManager, PermManageTeam))
	assert.False(t, Can(db.CompanyRoleHiringManager, PermManageCompany))
	assert.False(t, Can(db.CompanyRoleHiringManager, PermManageJobs))
	assert.True(t, Can(db.CompanyRoleHiringManager, PermSwipe))
	assert.True(t, Can(db.CompanyRoleHiringManager, PermShareJobs))
	assert.True(t, Can(db.CompanyRoleHiringManager, PermScheduleInterview))

	// unknown roles get nothing
	assert.False(t, Can("", PermSwipe))
	assert.False(t, Can("intern", PermSwipe))
}
