package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/handlers"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/bloodbank/bloodbank-api/internal/routes"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/bloodbank/bloodbank-api/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t    *testing.T
	app  *fiber.App
	auth *services.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := testutil.NewStore(t)
	cfg := testutil.Config(t)

	authService := services.NewAuthService(s, cfg)
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Setup(app, cfg,
		handlers.NewAuthHandler(authService),
		handlers.NewHealthHandler(s),
		handlers.NewDonorHandler(services.NewDonorService(s)),
		handlers.NewHospitalHandler(services.NewHospitalService(s)),
		handlers.NewAdminHandler(services.NewAdminService(s)),
	)
	return &testServer{t: t, app: app, auth: authService}
}

// do sends a JSON request and decodes the JSON response into out when non-nil.
func (s *testServer) do(method, path, token string, body, out interface{}) int {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) register(email, role string) string {
	s.t.Helper()
	var resp dto.AuthResponse
	code := s.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: email, Password: "pw", Role: role}, &resp)
	require.Equal(s.t, http.StatusCreated, code)
	return resp.AccessToken
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	_, err := s.auth.EnsureAdmin(context.Background(), "admin@x.com", "secret")
	require.NoError(s.t, err)

	var resp dto.AuthResponse
	code := s.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@x.com", Password: "secret", Role: "admin"}, &resp)
	require.Equal(s.t, http.StatusOK, code)
	return resp.AccessToken
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	var health dto.HealthResponse
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/health", "", nil, &health))
	assert.Equal(t, "ok", health.DB)
}

func TestDonorScenarioOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	srv.register("d@x.com", "donor")

	var login dto.AuthResponse
	code := srv.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "d@x.com", Password: "pw", Role: "donor"}, &login)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "donor", login.Role)
	token := login.AccessToken

	var created []models.Donation
	code = srv.do(http.MethodPost, "/api/donors/donate", token, dto.DonateRequest{BloodType: "O+", Units: 2}, &created)
	require.Equal(t, http.StatusCreated, code)
	require.Len(t, created, 1)

	var mine []models.Donation
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/donors/my-donations", token, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, models.OPositive, mine[0].BloodType)
	assert.Equal(t, 2, mine[0].Units)

	units := 3
	var updated models.Donation
	code = srv.do(http.MethodPut, "/api/donors/donate", token, dto.UpdateDonationRequest{DonationID: mine[0].ID, Units: &units}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, updated.Units)

	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/donors/my-donations", token, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, 3, mine[0].Units)

	require.Equal(t, http.StatusOK, srv.do(http.MethodDelete, "/api/donors/donate/"+mine[0].ID.String(), token, nil, nil))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodDelete, "/api/donors/donate/"+mine[0].ID.String(), token, nil, nil))

	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/donors/my-donations", token, nil, &mine))
	assert.Empty(t, mine)
}

func TestAuthErrors(t *testing.T) {
	srv := newTestServer(t)
	srv.register("d@x.com", "donor")

	var errResp dto.ErrorResponse
	code := srv.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "d@x.com", Password: "pw", Role: "hospital"}, &errResp)
	assert.Equal(t, http.StatusConflict, code)
	assert.True(t, errResp.Error)

	code = srv.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "d@x.com", Password: "pw", Role: "hospital"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/api/donors/my-donations", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/api/donors/my-donations", "garbage", nil, nil))
}

func TestListingRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)
	donor := srv.register("d@x.com", "donor")
	hospital := srv.register("h@x.com", "hospital")
	admin := srv.adminToken()

	for _, token := range []string{donor, hospital} {
		assert.Equal(t, http.StatusForbidden, srv.do(http.MethodGet, "/api/donors", token, nil, nil))
		assert.Equal(t, http.StatusForbidden, srv.do(http.MethodGet, "/api/hospitals", token, nil, nil))
		assert.Equal(t, http.StatusForbidden, srv.do(http.MethodGet, "/api/admin/users", token, nil, nil))
	}

	var donors []models.Donor
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/donors", admin, nil, &donors))
	var users []dto.UserResponse
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/admin/users", admin, nil, &users))
	assert.Len(t, users, 3)
}

func TestRequestStatusOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	hospital := srv.register("h@x.com", "hospital")
	admin := srv.adminToken()

	var created []models.BloodRequest
	code := srv.do(http.MethodPost, "/api/hospitals/request", hospital, dto.BloodRequestInput{BloodType: "A+", Units: 2}, &created)
	require.Equal(t, http.StatusCreated, code)
	path := "/api/hospitals/request/" + created[0].ID.String()

	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodPut, path+"/status", hospital, dto.StatusRequest{Status: "Approved"}, nil))

	status := "Approved"
	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodPut, path, hospital, dto.UpdateBloodRequest{Status: &status}, nil))

	var decided models.BloodRequest
	require.Equal(t, http.StatusOK, srv.do(http.MethodPut, path+"/status", admin, dto.StatusRequest{Status: "Approved"}, &decided))
	assert.Equal(t, models.StatusApproved, decided.Status)

	assert.Equal(t, http.StatusConflict, srv.do(http.MethodPut, path+"/status", admin, dto.StatusRequest{Status: "Rejected"}, nil))

	var inventory []dto.InventoryItem
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/admin/inventory", admin, nil, &inventory))
	assert.Len(t, inventory, len(models.BloodTypes))
}

func TestMalformedInput(t *testing.T) {
	srv := newTestServer(t)
	donor := srv.register("d@x.com", "donor")

	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodDelete, "/api/donors/donate/not-an-id", donor, nil, nil))
	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodPost, "/api/donors/donate", donor, dto.DonateRequest{BloodType: "Z", Units: 1}, nil))
}
