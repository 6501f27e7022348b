package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/tutormaven/backend/apps/api/echo"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
	testutil "github.com/tutormaven/backend/tests"
)

func Test_adminApi_roleGate(t *testing.T) {
	app := setup(t)
	std := testutil.CreateUser(t, svcs.Users, "Student", "student@test.cd", user.RoleStudent)
	tut := testutil.CreateUser(t, svcs.Users, "Tutor", "tutor@test.cd", user.RoleTutor)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "student is shut out", token: getToken(t, std), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "tutor is shut out", token: getToken(t, tut), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/admin/users"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_adminApi_verifications(t *testing.T) {
	app := setup(t)
	tut := testutil.CreateUser(t, svcs.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	admin, err := svcs.Users.EnsureAdmin()
	if err != nil {
		t.Fatalf("EnsureAdmin() failed: %v", err)
	}
	adminToken := getToken(t, admin)

	if err = svcs.Tutors.SubmitVerification(tut, tutor.VerificationProof{PhoneNumber: "+243123456"}); err != nil {
		t.Fatalf("SubmitVerification() failed: %v", err)
	}

	// queue holds the submission
	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/verifications", adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v", rec.Code)
	}
	var pending []tutor.ProfileWithUser
	if err = json.Unmarshal(rec.Body.Bytes(), &pending); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(pending) != 1 || pending[0].UserID != tut.ID {
		t.Fatalf("got queue %+v, want the submission", pending)
	}

	// approve, then reject again: the badge must survive
	req, rec = newAuthRequest(http.MethodPut, "/v1/admin/verifications/"+tut.ID+"/approve", adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve failed! code = %v, body = %s", rec.Code, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodPut, "/v1/admin/verifications/"+tut.ID+"/reject", adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reject failed! code = %v, body = %s", rec.Code, rec.Body.String())
	}

	p, err := svcs.Tutors.GetProfile(tut.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if !p.IsVerified {
		t.Error("the verified badge must survive a re-rejection")
	}
	if p.VerificationStatus != tutor.VerificationRejected {
		t.Errorf("got status %s, want %s", p.VerificationStatus, tutor.VerificationRejected)
	}

	tt := httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: tutor.ErrNotFound.Error()}),
	}
	req, rec = newAuthRequest(http.MethodPut, "/v1/admin/verifications/nope/approve", adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_adminApi_stats(t *testing.T) {
	app := setup(t)
	tut := testutil.CreateUser(t, svcs.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, svcs.Users, "Student", "student@test.cd", user.RoleStudent)
	testutil.CreateUser(t, svcs.Users, "Student 2", "student2@test.cd", user.RoleStudent)
	admin, err := svcs.Users.EnsureAdmin()
	if err != nil {
		t.Fatalf("EnsureAdmin() failed: %v", err)
	}

	if err = svcs.Tutors.SubmitVerification(tut, tutor.VerificationProof{PhoneNumber: "+243123456"}); err != nil {
		t.Fatalf("SubmitVerification() failed: %v", err)
	}
	sub, err := svcs.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err = svcs.Subscriptions.Accept(tut, sub.ID); err != nil {
		t.Fatalf("Accept() failed: %v", err)
	}

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, AdminStatsResponse{
			TotalStudents:        2,
			TotalTutors:          1,
			PendingVerifications: 1,
			ActiveSubscriptions:  1,
		}),
	}
	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/stats", getToken(t, admin))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	// the subscriptions join carries both parties and the child records
	req, rec = newAuthRequest(http.MethodGet, "/v1/admin/subscriptions", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v", rec.Code)
	}
	var details []subscription.AdminDetail
	if err = json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(details) != 1 || details[0].Student.ID != std.ID || details[0].Tutor.ID != tut.ID {
		t.Errorf("got %+v, want the active subscription with both parties", details)
	}
}

func Test_adminApi_deleteUser(t *testing.T) {
	app := setup(t)
	std := testutil.CreateUser(t, svcs.Users, "Student", "student@test.cd", user.RoleStudent)
	admin, err := svcs.Users.EnsureAdmin()
	if err != nil {
		t.Fatalf("EnsureAdmin() failed: %v", err)
	}
	adminToken := getToken(t, admin)

	// ctxUser cannot delete themselves
	tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
	req, rec := newAuthRequest(http.MethodDelete, "/v1/admin/users/"+admin.ID, adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/admin/users/"+std.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
	}

	if _, err = svcs.Users.GetByID(std.ID); err != user.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, user.ErrNotFound)
	}
}
