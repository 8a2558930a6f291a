package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"redweb-backend/internal/auth"
	"redweb-backend/internal/handlers"
	"redweb-backend/internal/models"
	"redweb-backend/internal/testutil"
)

func newRouter(t *testing.T) (*testutil.Env, http.Handler) {
	t.Helper()
	env := testutil.NewEnv(t)
	h := handlers.NewRouter(env.Services, env.Tokens, handlers.RouterOptions{Logger: zap.NewNop()})
	return env, h
}

type authBody struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

func TestHealth(t *testing.T) {
	_, h := newRouter(t)
	for _, path := range []string{"/api/health", "/health"} {
		rec := testutil.Do(t, h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: got status %d, want %d", path, rec.Code, http.StatusOK)
		}
		var body map[string]string
		testutil.Decode(t, rec, &body)
		if body["status"] != "OK" {
			t.Errorf("%s: got status %q, want %q", path, body["status"], "OK")
		}
	}
}

func TestSignUpSignInScenario(t *testing.T) {
	_, h := newRouter(t)

	rec := testutil.Do(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "a@x.com", "password": "p", "firstName": "Ada", "lastName": "L",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: got status %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var signup authBody
	testutil.Decode(t, rec, &signup)
	if signup.Token == "" || signup.User.ID == "" {
		t.Fatalf("signup response missing token or user: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"password"`) {
		t.Error("signup response leaks the password hash")
	}

	rec = testutil.Do(t, h, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "a@x.com", "password": "p"})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin: got status %d, want %d", rec.Code, http.StatusOK)
	}
	var signin authBody
	testutil.Decode(t, rec, &signin)
	if signin.User.ID != signup.User.ID {
		t.Errorf("got user %q, want %q", signin.User.ID, signup.User.ID)
	}

	rec = testutil.Do(t, h, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "a@x.com", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad signin: got status %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var fail authBody
	testutil.Decode(t, rec, &fail)
	if fail.Message != "Invalid credentials" {
		t.Errorf("got message %q, want %q", fail.Message, "Invalid credentials")
	}

	rec = testutil.Do(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "a@x.com", "password": "p", "firstName": "Ada", "lastName": "L",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = testutil.Do(t, h, http.MethodGet, "/api/auth/profile", signin.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(rec.Body.String(), `"password"`) {
		t.Error("profile response leaks the password hash")
	}
}

func TestSignUp_MalformedBody(t *testing.T) {
	_, h := newRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body map[string]string
	testutil.Decode(t, rec, &body)
	if body["message"] != "Invalid request body" {
		t.Errorf("got message %q, want %q", body["message"], "Invalid request body")
	}
}

func TestAuthMiddleware_MissingVsInvalidToken(t *testing.T) {
	env, h := newRouter(t)
	u := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})

	rec := testutil.Do(t, h, http.MethodGet, "/api/blood-requests", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: got status %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = testutil.Do(t, h, http.MethodGet, "/api/blood-requests", "not-a-token", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("garbage token: got status %d, want %d", rec.Code, http.StatusForbidden)
	}

	foreign, _, err := auth.NewManager("other-secret", time.Hour).IssueToken(testutil.Caller(u))
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	rec = testutil.Do(t, h, http.MethodGet, "/api/blood-requests", foreign, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign token: got status %d, want %d", rec.Code, http.StatusForbidden)
	}

	token := env.Token(t, u)
	rec = testutil.Do(t, h, http.MethodGet, "/api/blood-requests", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: got status %d, want %d", rec.Code, http.StatusOK)
	}

	env.Clock.Advance(24*time.Hour + time.Second)
	rec = testutil.Do(t, h, http.MethodGet, "/api/blood-requests", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expired token: got status %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestBloodRequestOwnershipScenario(t *testing.T) {
	env, h := newRouter(t)
	userA := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})
	userB := env.AddUser(t, testutil.TestUser{Email: "b@x.com"})
	admin := env.AddUser(t, testutil.TestUser{Email: "admin@x.com", Role: models.RoleAdmin})

	rec := testutil.Do(t, h, http.MethodPost, "/api/blood-requests", env.Token(t, userA), map[string]interface{}{
		"bloodType": "O-", "hospital": "General", "urgency": "emergency", "userId": userB.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got status %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created models.BloodRequest
	testutil.Decode(t, rec, &created)
	if created.OwnerID() != userA.ID {
		t.Errorf("owner taken from body: got %q, want %q", created.OwnerID(), userA.ID)
	}

	path := "/api/blood-requests/" + created.ID
	update := map[string]interface{}{"units": 2}

	rec = testutil.Do(t, h, http.MethodPut, path, env.Token(t, userB), update)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-owner PUT: got status %d, want %d", rec.Code, http.StatusForbidden)
	}
	rec = testutil.Do(t, h, http.MethodPut, path, env.Token(t, admin), update)
	if rec.Code != http.StatusOK {
		t.Errorf("admin PUT: got status %d, want %d", rec.Code, http.StatusOK)
	}
	rec = testutil.Do(t, h, http.MethodPatch, path+"/status", env.Token(t, userB), map[string]string{"status": "fulfilled"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-owner PATCH status: got status %d, want %d", rec.Code, http.StatusForbidden)
	}
	rec = testutil.Do(t, h, http.MethodPatch, path+"/status", env.Token(t, userA), map[string]string{"status": "FULFILLED"})
	if rec.Code != http.StatusOK {
		t.Errorf("owner PATCH status: got status %d, want %d", rec.Code, http.StatusOK)
	}

	rec = testutil.Do(t, h, http.MethodGet, path, env.Token(t, userB), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET: got status %d, want %d", rec.Code, http.StatusOK)
	}
	var got models.BloodRequest
	testutil.Decode(t, rec, &got)
	if got.Units != 2 || got.Status != models.StatusFulfilled || got.Urgency != models.UrgencyEmergency {
		t.Errorf("unexpected request: %+v", got)
	}

	rec = testutil.Do(t, h, http.MethodGet, "/api/blood-requests/missing", env.Token(t, userB), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing: got status %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = testutil.Do(t, h, http.MethodDelete, path, env.Token(t, userA), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("owner DELETE: got status %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestDriveRegistrationScenario(t *testing.T) {
	env, h := newRouter(t)
	org := env.AddUser(t, testutil.TestUser{Email: "org@x.com", Role: models.RoleOrganizer})
	x := env.AddUser(t, testutil.TestUser{Email: "x@x.com"})
	y := env.AddUser(t, testutil.TestUser{Email: "y@x.com"})

	rec := testutil.Do(t, h, http.MethodPost, "/api/donation-drives", env.Token(t, org), map[string]interface{}{
		"title": "Drive", "date": "2025-07-01", "startTime": "09:00", "endTime": "12:00",
		"location": "Hall", "capacity": 1, "bloodTypes": []string{"A+"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got status %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var d models.DonationDrive
	testutil.Decode(t, rec, &d)
	register := "/api/donation-drives/" + d.ID + "/register"

	if rec := testutil.Do(t, h, http.MethodPost, register, env.Token(t, x), nil); rec.Code != http.StatusOK {
		t.Fatalf("register: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := testutil.Do(t, h, http.MethodPost, register, env.Token(t, x), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("second register: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := testutil.Do(t, h, http.MethodPost, register, env.Token(t, y), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("register on full drive: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := testutil.Do(t, h, http.MethodDelete, register, env.Token(t, y), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unregister non-registered: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := testutil.Do(t, h, http.MethodGet, "/api/donation-drives/"+d.ID+"/registrations", env.Token(t, x), nil); rec.Code != http.StatusForbidden {
		t.Errorf("registrations as donor: got status %d, want %d", rec.Code, http.StatusForbidden)
	}
	if rec := testutil.Do(t, h, http.MethodGet, "/api/donation-drives/"+d.ID+"/registrations", env.Token(t, org), nil); rec.Code != http.StatusOK {
		t.Errorf("registrations as organizer: got status %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestDonationAndMessagingRoutes(t *testing.T) {
	env, h := newRouter(t)
	a := env.AddUser(t, testutil.TestUser{Email: "a@x.com", FirstName: "Ann"})
	b := env.AddUser(t, testutil.TestUser{Email: "b@x.com", FirstName: "Ben"})
	tokA := env.Token(t, a)

	rec := testutil.Do(t, h, http.MethodPost, "/api/donations/history", tokA, map[string]interface{}{
		"donationDate": "2025-05-01", "location": "Hall", "bloodType": "A+",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add donation: got status %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	rec = testutil.Do(t, h, http.MethodGet, "/api/auth/profile", tokA, nil)
	var profile models.UserResponse
	testutil.Decode(t, rec, &profile)
	if profile.TotalDonations != 1 || profile.LastDonationDate != "2025-05-01" {
		t.Errorf("counters not updated: %+v", profile)
	}

	rec = testutil.Do(t, h, http.MethodPost, "/api/messages/send", tokA, map[string]string{"receiverId": b.ID, "content": "hi"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send: got status %d, want %d", rec.Code, http.StatusCreated)
	}
	rec = testutil.Do(t, h, http.MethodGet, "/api/messages/conversations", env.Token(t, b), nil)
	var convs []models.Conversation
	testutil.Decode(t, rec, &convs)
	if len(convs) != 1 || convs[0].UnreadCount != 1 || convs[0].OtherUser.ID != a.ID {
		t.Errorf("unexpected conversations: %+v", convs)
	}
	rec = testutil.Do(t, h, http.MethodGet, "/api/messages/search-users?query=ben", tokA, nil)
	var found []models.UserSummary
	testutil.Decode(t, rec, &found)
	if len(found) != 1 || found[0].ID != b.ID {
		t.Errorf("unexpected search results: %+v", found)
	}
}

func TestListUsers_AdminOnlyRoute(t *testing.T) {
	env, h := newRouter(t)
	user := env.AddUser(t, testutil.TestUser{Email: "u@x.com"})
	admin := env.AddUser(t, testutil.TestUser{Email: "admin@x.com", Role: models.RoleAdmin})

	if rec := testutil.Do(t, h, http.MethodGet, "/api/users", env.Token(t, user), nil); rec.Code != http.StatusForbidden {
		t.Errorf("user: got status %d, want %d", rec.Code, http.StatusForbidden)
	}
	rec := testutil.Do(t, h, http.MethodGet, "/api/users", env.Token(t, admin), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: got status %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Total int `json:"total"`
	}
	testutil.Decode(t, rec, &body)
	if body.Total != 2 {
		t.Errorf("got total %d, want 2", body.Total)
	}
	if strings.Contains(rec.Body.String(), `"password"`) {
		t.Error("user listing leaks password hashes")
	}
}
