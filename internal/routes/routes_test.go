package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"talksy/server/internal/database"
	"talksy/server/internal/utils"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	ID       string
	Email    string
	Username string
}

func requireDatabase(t *testing.T) {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}
	require.NoError(t, database.Connect())
	t.Cleanup(database.Close)
}

func createTestUser(t *testing.T) testUser {
	t.Helper()
	u := testUser{
		Email:    gofakeit.Email(),
		Username: gofakeit.Username() + gofakeit.DigitN(6),
	}
	err := database.Pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Username, u.Email, gofakeit.Name(), "unused").Scan(&u.ID)
	require.NoError(t, err)
	return u
}

func authedRequest(t *testing.T, method, target string, body interface{}, as testUser) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	token, err := utils.GenerateToken(as.ID, as.Email, as.Username)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})

	return req
}

func TestGroupMembershipInvariants(t *testing.T) {
	t.Setenv("JWT_SECRET", "routes-test-secret")
	requireDatabase(t)

	ctx := context.Background()
	app := fiber.New()
	SetupRoutes(app)

	admin := createTestUser(t)
	member := createTestUser(t)

	// Creating a group makes the creator admin and a member at once
	resp, err := app.Test(authedRequest(t, "POST", "/api/v1/groups",
		fiber.Map{"name": gofakeit.Word()}, admin), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID      string `json:"id"`
			AdminID string `json:"adminId"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	groupID := created.Data.ID
	assert.Equal(t, admin.ID, created.Data.AdminID)

	var adminIsMember bool
	require.NoError(t, database.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
	`, groupID, admin.ID).Scan(&adminIsMember))
	assert.True(t, adminIsMember, "admin is always a member")

	// Joining twice succeeds without a duplicate row
	for i := 0; i < 2; i++ {
		resp, err = app.Test(authedRequest(t, "POST", "/api/v1/groups/"+groupID+"/join", nil, member), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var memberCount int
	require.NoError(t, database.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM group_members WHERE group_id = $1
	`, groupID).Scan(&memberCount))
	assert.Equal(t, 2, memberCount)

	// Admin leaving hands the group to the earliest-joined remaining member
	resp, err = app.Test(authedRequest(t, "POST", "/api/v1/groups/"+groupID+"/leave", nil, admin), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var newAdminID string
	require.NoError(t, database.Pool.QueryRow(ctx,
		"SELECT admin_id FROM groups WHERE id = $1", groupID).Scan(&newAdminID))
	assert.Equal(t, member.ID, newAdminID)

	var newAdminIsMember bool
	require.NoError(t, database.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
	`, groupID, newAdminID).Scan(&newAdminIsMember))
	assert.True(t, newAdminIsMember)

	// Last member leaving deletes the group
	resp, err = app.Test(authedRequest(t, "POST", "/api/v1/groups/"+groupID+"/leave", nil, member), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var groupExists bool
	require.NoError(t, database.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)", groupID).Scan(&groupExists))
	assert.False(t, groupExists)
}
