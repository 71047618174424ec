package domain

// StaffPrincipal identifies an authenticated team member allowed to manage the portal.
type StaffPrincipal struct {
	Email string
	Name  string
}
