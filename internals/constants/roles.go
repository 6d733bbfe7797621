package constants

import "fmt"

const (
	RoleMember    = "member"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

const (
	MemberTypeStudent = "student"
	MemberTypeFaculty = "faculty"
	MemberTypePublic  = "public"
)

// Role error message templates
const (
	ErrOnlyStaffCanAccess  = "only librarians or admins may access %s"
	ErrOnlyAdminsCanAccess = "only admins may access %s"
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

var (
	AllRoles = []string{
		RoleMember,
		RoleLibrarian,
		RoleAdmin,
	}

	StaffRoles = []string{
		RoleLibrarian,
		RoleAdmin,
	}

	AdminOnly = []string{
		RoleAdmin,
	}

	StaffRoleSet = map[string]bool{
		RoleLibrarian: true,
		RoleAdmin:     true,
	}

	MemberTypes = []string{
		MemberTypeStudent,
		MemberTypeFaculty,
		MemberTypePublic,
	}
)

func IsValidMemberType(t string) bool {
	for _, m := range MemberTypes {
		if m == t {
			return true
		}
	}
	return false
}
