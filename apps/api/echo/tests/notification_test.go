package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tutormaven/backend/core/notification"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/user"
	testutil "github.com/tutormaven/backend/tests"
)

func Test_notificationApi(t *testing.T) {
	app := setup(t)
	tut := testutil.CreateUser(t, svcs.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, svcs.Users, "Student", "student@test.cd", user.RoleStudent)
	stdToken := getToken(t, std)

	// drive a transition so a notification lands
	sub, err := svcs.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err = svcs.Subscriptions.Accept(tut, sub.ID); err != nil {
		t.Fatalf("Accept() failed: %v", err)
	}

	// auth required
	tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
	req, rec := newRequest(http.MethodGet, "/v1/notifications")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/notifications", stdToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v", rec.Code)
	}
	var notifs []notification.Notification
	if err = json.Unmarshal(rec.Body.Bytes(), &notifs); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != notification.TypeSubscriptionAccepted {
		t.Fatalf("got %+v, want the acceptance notification", notifs)
	}

	tt = httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]int{"unread_count": 1})}
	req, rec = newAuthRequest(http.MethodGet, "/v1/notifications/unread/count", stdToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	// someone else's notification cannot be marked
	tt = httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: notification.ErrNotFound.Error()})}
	req, rec = newAuthRequest(http.MethodPut, "/v1/notifications/"+notifs[0].ID+"/read", getToken(t, tut))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	req, rec = newAuthRequest(http.MethodPut, "/v1/notifications/"+notifs[0].ID+"/read", stdToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read failed! code = %v, body = %s", rec.Code, rec.Body.String())
	}

	tt = httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]int{"unread_count": 0})}
	req, rec = newAuthRequest(http.MethodGet, "/v1/notifications/unread/count", stdToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
