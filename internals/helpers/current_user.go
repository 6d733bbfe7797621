package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"library_backend/internals/constants"
)

// Locals keys written by the JWT middleware.
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
	LocMemberID = "member_id"
	LocRawToken = "raw_token"
)

// Identity is the authenticated caller as seen by controllers.
type Identity struct {
	UserID   uuid.UUID
	Role     string
	MemberID uuid.UUID // uuid.Nil for staff without a membership
}

func (i Identity) IsStaff() bool { return constants.StaffRoleSet[i.Role] }

// CurrentUser returns 401 when the request is not authenticated.
func CurrentUser(c *fiber.Ctx) (Identity, error) {
	userID, err := uuidFromLocals(c, LocUserID)
	if err != nil || userID == uuid.Nil {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
	}
	role, _ := c.Locals(LocUserRole).(string)
	memberID, _ := uuidFromLocals(c, LocMemberID)
	return Identity{UserID: userID, Role: role, MemberID: memberID}, nil
}

func uuidFromLocals(c *fiber.Ctx, key string) (uuid.UUID, error) {
	switch t := c.Locals(key).(type) {
	case uuid.UUID:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return uuid.Nil, nil
		}
		return uuid.Parse(s)
	default:
		return uuid.Nil, nil
	}
}

// EnsureSelfOrStaff lets staff through and restricts members to their own member id.
func EnsureSelfOrStaff(id Identity, memberID uuid.UUID) error {
	if id.IsStaff() {
		return nil
	}
	if id.MemberID == uuid.Nil || id.MemberID != memberID {
		return fiber.NewError(fiber.StatusForbidden, "members may only access their own records")
	}
	return nil
}
