package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/issuetrack/tracker"
	"github.com/issuetrack/tracker/inmem"
	"github.com/issuetrack/tracker/persistent"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/buntdb"
)

// testEnv wires every controller to in-memory stores, the same way
// trackerd serve does with postgres.
type testEnv struct {
	app        *fiber.App
	users      *inmem.UserStore
	profiles   *inmem.ProfileStore
	activities *inmem.ActivityStore
	sessions   *persistent.SessionStore
}

func newTestEnv(t *testing.T) *testEnv {
	bdb, err := buntdb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = bdb.Close() })

	env := &testEnv{
		app:        fiber.New(fiber.Config{ErrorHandler: ErrorHandler}),
		users:      inmem.NewUserStore(),
		profiles:   inmem.NewProfileStore(),
		activities: inmem.NewActivityStore(),
	}
	env.sessions = &persistent.SessionStore{Buntdb: bdb, ActivityStore: env.activities}

	requestAuthorizer := RequestAuthorizer(env.sessions, env.users)
	authController := AuthController{
		SessionStore:  env.sessions,
		UserStore:     env.users,
		ProfileStore:  env.profiles,
		ActivityStore: env.activities,
	}
	profileController := ProfileController{
		Store:         env.profiles,
		ActivityStore: env.activities,
		Validator:     NewValidator(),
	}
	activityController := ActivityController{Store: env.activities}
	sessionController := SessionController{Store: env.sessions}

	authController.InstallTo(env.app)
	profileController.InstallTo(requestAuthorizer, env.app)
	activityController.InstallTo(requestAuthorizer, env.app)
	sessionController.InstallTo(requestAuthorizer, env.app)
	InstallStatus(requestAuthorizer, env.app)
	env.app.Use(NotFoundHandler)
	return env
}

func (e *testEnv) registerUser(t *testing.T, email string, password string, roles ...tracker.RoleId) tracker.User {
	hash, err := tracker.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	user, err := e.users.Register(context.Background(), tracker.User{
		Email:        tracker.Email(email),
		DisplayName:  email,
		PasswordHash: hash,
		Roles:        tracker.RolesByIds(roles),
	})
	if err != nil {
		t.Fatal(err)
	}
	return user
}

// login returns the access token of a fresh session.
func (e *testEnv) login(t *testing.T, email string, password string) string {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, respBody := e.do(t, "POST", "/auth/login", "", string(body))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("login %s: %d %s", email, resp.StatusCode, respBody)
	}
	var created struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal([]byte(respBody), &created); err != nil {
		t.Fatal(err)
	}
	return created.AccessToken
}

func (e *testEnv) do(t *testing.T, method string, path string, token string, body string) (*http.Response, string) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	defer resp.Body.Close()
	respBody, err := ioutil.ReadAll(resp.Body)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return resp, string(respBody)
}

func testRequest(method string, path string, authorization string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return string(body)
}
