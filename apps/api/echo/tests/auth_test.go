package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/tutormaven/backend/apps/api/echo"
	"github.com/tutormaven/backend/core/user"
	testutil "github.com/tutormaven/backend/tests"
)

func Test_authApi_register(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, svcs.Users, "Taken", "taken@test.cd", user.RoleStudent)

	body := func(email, name, role string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": "pwd", "name": name, "role": role})
	}

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
				"name":     "this field is required",
				"role":     "this field is required",
			}),
		},
		{
			name: "bad role", body: body("x@test.cd", "X", "overlord"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "role must be one of [tutor student admin]"}),
		},
		{
			name: "admin role is refused", body: body("boss@test.cd", "Boss", user.RoleAdmin),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "duplicate email", body: body("taken@test.cd", "Impostor", user.RoleStudent),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{name: "ok tutor", body: body("tutor@test.cd", "Tutor", user.RoleTutor), wantCode: http.StatusCreated},
		{name: "ok student", body: body("student@test.cd", "Student", user.RoleStudent), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess the token on success.. just check its presence
			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if resp.Token == "" {
					t.Error("expected a token")
				}
				if resp.User.ID == "" {
					t.Error("expected a persisted user")
				}
			} else {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_authApi_login(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, svcs.Users, "Student", "student@test.cd", user.RoleStudent)

	invalidCreds := marchallObj(t, httpErr{Error: "invalid credentials"})

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", body: marchallObj(t, map[string]string{"email": "nope@test.cd", "password": "pwd"}),
			wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{
			name: "wrong password", body: marchallObj(t, map[string]string{"email": usr.Email, "password": "nope"}),
			wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{name: "ok", body: marchallObj(t, map[string]string{"email": usr.Email, "password": "pwd"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if resp.Token == "" {
					t.Error("expected a token")
				}
				if resp.User.ID != usr.ID {
					t.Errorf("got user %s, want %s", resp.User.ID, usr.ID)
				}
			} else {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

// The first admin login creates the account from the configured bootstrap
// password; later logins just authenticate it.
func Test_authApi_adminLogin(t *testing.T) {
	app := setup(t)

	invalidCreds := marchallObj(t, httpErr{Error: "invalid credentials"})
	creds := func(email, pwd string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": pwd})
	}

	tests := []httpTest{
		{name: "wrong email", body: creds("someone@test.cd", svcs.Conf.AdminPassword), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "wrong password", body: creds(user.AdminEmail, "nope"), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "first login bootstraps", body: creds(user.AdminEmail, svcs.Conf.AdminPassword), wantCode: http.StatusOK},
		{name: "second login", body: creds(user.AdminEmail, svcs.Conf.AdminPassword), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/admin/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if resp.User.Role != user.RoleAdmin {
					t.Errorf("got role %s, want %s", resp.User.Role, user.RoleAdmin)
				}
			} else {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_authApi_me(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, svcs.Users, "Student", "student@test.cd", user.RoleStudent)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "ok", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/auth/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
