package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/session"
	testutil "github.com/trezcool/shule/tests"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSessionAPI_create(t *testing.T) {
	app := setup(t)
	staffToken := getToken(t, app.conf, "op1", true, false)
	plainToken := getToken(t, app.conf, "m1", false, false)

	validBody := marchallObj(t, map[string]interface{}{
		"name":       "Math",
		"category":   "lesson",
		"date":       "2021-01-04",
		"start_time": "09:00",
		"end_time":   "10:00",
		"level_ids":  []string{"lvl1"},
	})

	tests := []httpTest{
		{
			name: "no token", method: http.MethodPost, path: "/v1/sessions", body: validBody,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "non-staff forbidden", method: http.MethodPost, path: "/v1/sessions", body: validBody, token: plainToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/sessions", body: []byte(`{}`), token: staffToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "recurring without pattern",
			method: http.MethodPost, path: "/v1/sessions", token: staffToken,
			body: marchallObj(t, map[string]interface{}{
				"name": "Math", "category": "lesson", "date": "2021-01-04",
				"start_time": "09:00", "end_time": "10:00", "level_ids": []string{"lvl1"},
				"recurring": true,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"recurrence": "required on a recurring session"}),
		},
		{
			name:   "weekly without weekdays",
			method: http.MethodPost, path: "/v1/sessions", token: staffToken,
			body: marchallObj(t, map[string]interface{}{
				"name": "Math", "category": "lesson", "date": "2021-01-04",
				"start_time": "09:00", "end_time": "10:00", "level_ids": []string{"lvl1"},
				"recurring":  true,
				"recurrence": map[string]interface{}{"frequency": "weekly"},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"recurrence.weekdays": "at least one weekday is required"}),
		},
		{
			name: "ok", method: http.MethodPost, path: "/v1/sessions", body: validBody, token: staffToken,
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestSessionAPI_crud(t *testing.T) {
	app := setup(t)
	staffToken := getToken(t, app.conf, "op1", true, false)

	// create
	body := marchallObj(t, map[string]interface{}{
		"name":       "Science",
		"category":   "lesson",
		"date":       "2021-01-04",
		"start_time": "09:00",
		"end_time":   "10:00",
		"level_ids":  []string{"lvl1"},
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/sessions", staffToken, body)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: code = %v, want %v; body %s", rec.Code, http.StatusCreated, rec.Body)
	}
	var def session.Definition
	unmarshallObj(t, rec.Body.Bytes(), &def)
	if def.ID == "" || !def.IsActive {
		t.Errorf("create: got %+v, want assigned ID and active", def)
	}

	// list
	req, rec = newAuthRequest(http.MethodGet, "/v1/sessions", staffToken)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: code = %v, want %v", rec.Code, http.StatusOK)
	}
	var defs []session.Definition
	unmarshallObj(t, rec.Body.Bytes(), &defs)
	if len(defs) != 1 || defs[0].ID != def.ID {
		t.Errorf("list: got %d sessions, want 1 with ID %s", len(defs), def.ID)
	}

	// retrieve
	req, rec = newAuthRequest(http.MethodGet, "/v1/sessions/"+def.ID, staffToken)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("retrieve: code = %v, want %v", rec.Code, http.StatusOK)
	}

	// update
	req, rec = newAuthRequest(http.MethodPut, "/v1/sessions/"+def.ID, staffToken,
		marchallObj(t, map[string]string{"name": "Advanced Science"}))
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body)
	}
	unmarshallObj(t, rec.Body.Bytes(), &def)
	if def.Name != "Advanced Science" {
		t.Errorf("update: name = %s, want Advanced Science", def.Name)
	}

	// delete is admin-only
	req, rec = newAuthRequest(http.MethodDelete, "/v1/sessions/"+def.ID, staffToken)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete as non-admin: code = %v, want %v", rec.Code, http.StatusForbidden)
	}

	// delete; no attendance recorded so the row goes away
	adminToken := getToken(t, app.conf, "adm1", false, true)
	req, rec = newAuthRequest(http.MethodDelete, "/v1/sessions/"+def.ID, adminToken)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: code = %v, want %v", rec.Code, http.StatusNoContent)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/sessions/"+def.ID, staffToken)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("retrieve after delete: code = %v, want %v", rec.Code, http.StatusNotFound)
	}
}

func TestSessionAPI_deleteDeactivatesWithHistory(t *testing.T) {
	app := setup(t)
	staffToken := getToken(t, app.conf, "op1", true, false)

	lvl := testutil.CreateLevel(t, app.db, "Grade 1")
	mbr := testutil.CreateMember(t, app.db, "Amina", "Kabeya", lvl.ID, true)
	def := testutil.CreateSessionDef(t, app.sessionRepo, "History", date(2021, time.January, 4), []string{lvl.ID}, nil)

	// record attendance so the session has history
	body := marchallObj(t, map[string]interface{}{
		"session_id": def.ID,
		"date":       "2021-01-04",
		"edits":      []map[string]string{{"member_id": mbr.ID, "status": "present"}},
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", staffToken, body)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("take: code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body)
	}

	adminToken := getToken(t, app.conf, "adm1", false, true)
	req, rec = newAuthRequest(http.MethodDelete, "/v1/sessions/"+def.ID, adminToken)
	app.app.ServeHTTP(rec, req)
	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, map[string]bool{"deactivated": true})}
	checkCodeAndData(t, tt, rec)

	// the definition survives, deactivated
	req, rec = newAuthRequest(http.MethodGet, "/v1/sessions/"+def.ID, staffToken)
	app.app.ServeHTTP(rec, req)
	var got session.Definition
	unmarshallObj(t, rec.Body.Bytes(), &got)
	if got.IsActive {
		t.Error("session should be deactivated, not active")
	}
}

func TestSessionAPI_occurrences(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, "m1", false, false)

	lvl := testutil.CreateLevel(t, app.db, "Grade 1")
	mbr := testutil.CreateMember(t, app.db, "Amina", "Kabeya", lvl.ID, true)

	// weekly Sundays, capped at 3 occurrences
	def := testutil.CreateSessionDef(t, app.sessionRepo, "Choir", date(2021, time.January, 3), []string{lvl.ID},
		&session.Recurrence{
			Rule:     session.Weekly{Interval: 1, Weekdays: []time.Weekday{time.Sunday}},
			MaxCount: 3,
		})

	req, rec := newAuthRequest(http.MethodGet, "/v1/sessions/occurrences?from=2021-01-01&to=2021-03-14", token)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("occurrences: code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body)
	}

	var occs []session.Occurrence
	unmarshallObj(t, rec.Body.Bytes(), &occs)
	want := []time.Time{date(2021, time.January, 3), date(2021, time.January, 10), date(2021, time.January, 17)}
	if len(occs) != len(want) {
		t.Fatalf("occurrences: got %d, want %d", len(occs), len(want))
	}
	for i, occ := range occs {
		if !core.SameDate(occ.Date, want[i]) {
			t.Errorf("occurrences[%d].Date = %v, want %v", i, occ.Date, want[i])
		}
	}

	// taking attendance on one date overlays that occurrence alone
	staffToken := getToken(t, app.conf, "op1", true, false)
	body := marchallObj(t, map[string]interface{}{
		"session_id": def.ID,
		"date":       "2021-01-10",
		"edits":      []map[string]string{{"member_id": mbr.ID, "status": "present"}},
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance", staffToken, body)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("take: code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/sessions/occurrences?from=2021-01-01&to=2021-03-14", token)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("occurrences: code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body)
	}
	var detailed []struct {
		session.Occurrence
		Attendance *attendance.Session `json:"attendance"`
	}
	unmarshallObj(t, rec.Body.Bytes(), &detailed)
	if len(detailed) != 3 {
		t.Fatalf("occurrences: got %d, want 3", len(detailed))
	}
	for i, occ := range detailed {
		if i == 1 {
			if occ.Attendance == nil {
				t.Fatal("occurrences[1] should carry its recorded attendance")
			}
			if occ.Attendance.Status != attendance.SessionInProgress {
				t.Errorf("occurrences[1] attendance status = %s, want %s", occ.Attendance.Status, attendance.SessionInProgress)
			}
			if occ.Attendance.AttendanceCount != 1 || occ.Attendance.TotalExpected != 1 {
				t.Errorf("occurrences[1] counters = %d/%d, want 1/1",
					occ.Attendance.AttendanceCount, occ.Attendance.TotalExpected)
			}
			continue
		}
		if occ.Attendance != nil {
			t.Errorf("occurrences[%d] should have no recorded attendance", i)
		}
	}

	// missing range params
	req, rec = newAuthRequest(http.MethodGet, "/v1/sessions/occurrences", token)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("occurrences without range: code = %v, want %v", rec.Code, http.StatusBadRequest)
	}
}

func TestSessionAPI_monthGrid(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, "m1", false, false)

	testutil.CreateSessionDef(t, app.sessionRepo, "Choir", date(2021, time.February, 7), []string{"lvl1"}, nil)

	req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/2021/2", token)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("monthGrid: code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body)
	}

	var cells []session.GridCell
	unmarshallObj(t, rec.Body.Bytes(), &cells)
	if len(cells) != session.GridCells {
		t.Fatalf("monthGrid: got %d cells, want %d", len(cells), session.GridCells)
	}
	// Feb 2021 grid starts on Sun Jan 31
	if !core.SameDate(cells[0].Date, date(2021, time.January, 31)) {
		t.Errorf("cells[0].Date = %v, want 2021-01-31", cells[0].Date)
	}
	if len(cells[7].Occurrences) != 1 {
		t.Errorf("cells[7] (Feb 7) should hold the occurrence; got %d", len(cells[7].Occurrences))
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/calendar/2021/13", token)
	app.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad month: code = %v, want %v", rec.Code, http.StatusBadRequest)
	}
}
