package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
)

var testSecret = []byte("test-secret")

func testUser() *model.User {
	orgID := uuid.New()
	return &model.User{
		ID:             uuid.New(),
		OrganizationID: &orgID,
		Email:          "alice@example.com",
		Role:           permission.RoleMember,
	}
}

func TestIssueAndParse(t *testing.T) {
	user := testUser()

	tokenStr, err := Issue(user, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(tokenStr, testSecret)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.OrganizationID.String(), claims.OrganizationID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "member", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tokenStr, err := Issue(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	_, err = Parse(tokenStr, []byte("other-secret"))
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	tokenStr, err := Issue(testUser(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(tokenStr, testSecret)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-token", testSecret)
	assert.Error(t, err)
}

func TestIssueWithoutOrganization(t *testing.T) {
	user := testUser()
	user.OrganizationID = nil

	tokenStr, err := Issue(user, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(tokenStr, testSecret)
	require.NoError(t, err)
	assert.Empty(t, claims.OrganizationID)
}

func TestSecretFromEnv(t *testing.T) {
	t.Setenv(SecretEnvVar, "from-env")
	secret, err := SecretFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-env"), secret)

	t.Setenv(SecretEnvVar, "")
	_, err = SecretFromEnv()
	assert.Error(t, err)
}
