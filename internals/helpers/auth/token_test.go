package helper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	in := Claims{UserID: uuid.New(), Role: "member", MemberID: uuid.New(), Expires: now.Add(time.Hour)}

	tok, err := IssueAccessToken("s3cret", in, now)
	require.NoError(t, err)

	out, err := ParseAccessToken("s3cret", tok, now.Add(30*time.Minute), 0)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, "member", out.Role)
	assert.Equal(t, in.MemberID, out.MemberID)

	_, err = ParseAccessToken("s3cret", tok, now.Add(2*time.Hour), 30*time.Second)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = ParseAccessToken("other", tok, now, 0)
	assert.Error(t, err)
}

func TestStaffTokenHasNoMemberID(t *testing.T) {
	now := time.Now()
	tok, err := IssueAccessToken("k", Claims{UserID: uuid.New(), Role: "admin", Expires: now.Add(time.Hour)}, now)
	require.NoError(t, err)

	out, err := ParseAccessToken("k", tok, now, 0)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, out.MemberID)
}

func TestBlacklistKeyIsStable(t *testing.T) {
	assert.Equal(t, BlacklistKey("a", "k"), BlacklistKey("a", "k"))
	assert.NotEqual(t, BlacklistKey("a", "k"), BlacklistKey("b", "k"))
}
