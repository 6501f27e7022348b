package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tutormaven/backend/core/review"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/user"
	testutil "github.com/tutormaven/backend/tests"
)

func Test_reviewApi(t *testing.T) {
	app := setup(t)
	tut := testutil.CreateUser(t, svcs.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, svcs.Users, "Student", "student@test.cd", user.RoleStudent)
	other := testutil.CreateUser(t, svcs.Users, "Other", "other@test.cd", user.RoleStudent)
	stdToken := getToken(t, std)

	body := marchallObj(t, map[string]interface{}{"tutor_id": tut.ID, "rating": 4, "comment": "solid"})

	// no active subscription yet
	tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
	req, rec := newAuthRequest(http.MethodPost, "/v1/reviews", stdToken, body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	sub, err := svcs.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err = svcs.Subscriptions.Accept(tut, sub.ID); err != nil {
		t.Fatalf("Accept() failed: %v", err)
	}

	// rating bounds are validated
	tt = httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"rating": "rating must be 5 or less"}),
	}
	req, rec = newAuthRequest(http.MethodPost, "/v1/reviews", stdToken,
		marchallObj(t, map[string]interface{}{"tutor_id": tut.ID, "rating": 6}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/reviews", stdToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var r review.Review
	if err = json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}

	// only the author deletes
	tt = httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/reviews/"+r.ID, getToken(t, other))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/reviews/"+r.ID, stdToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
	}
}
