package auth

import "github.com/workmatch/workmatch/internal/db"

// Permission is a closed enum; the table below is the single source of
// truth for what each company role may do.
type Permission int

const (
	PermManageTeam Permission = iota // invite, change roles, remove members
	PermManageCompany                // edit the company profile
	PermManageJobs                   // create/edit job postings
	PermSwipe                        // act in the match feed
	PermShareJobs                    // share postings on a match
	PermScheduleInterview            // schedule interviews on a match
)

var rolePermissions = map[string]map[Permission]bool{
	db.CompanyRoleAdmin: {
		PermManageTeam:        true,
		PermManageCompany:     true,
		PermManageJobs:        true,
		PermSwipe:             true,
		PermShareJobs:         true,
		PermScheduleInterview: true,
	},
	db.CompanyRoleRecruiter: {
		PermManageCompany:     true,
		PermManageJobs:        true,
		PermSwipe:             true,
		PermShareJobs:         true,
		PermScheduleInterview: true,
	},
	db.CompanyRoleHiringManager: {
		PermSwipe:             true,
		PermShareJobs:         true,
		PermScheduleInterview: true,
	},
}

// Can reports whether a company role carries a permission. Unknown roles
// (including "") have none.
func Can(companyRole string, p Permission) bool {
	return rolePermissions[companyRole][p]
}
