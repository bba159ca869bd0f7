package tests

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/member"
	"github.com/trezcool/shule/core/session"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	app  Server
	conf *core.Config

	db             *dummydb.DB
	dir            member.Directory
	sessionRepo    session.Repository
	attendanceRepo attendance.Repository
}

func setup(t *testing.T) *testApp {
	t.Helper()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	dir := dummydb.NewMemberDirectory(db)
	sessionRepo := dummydb.NewSessionRepository(db)
	attendanceRepo := dummydb.NewAttendanceRepository(db)

	// set up services
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	validate, translator := core.NewValidator()
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	sessionSvc := session.NewService(sessionRepo, attendanceRepo, validate)
	attendanceSvc := attendance.NewService(attendanceRepo, sessionRepo, dir, mailSvc, logger, conf)
	memberSvc := member.NewService(dir)

	// set up server
	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			SessionSvc:     sessionSvc,
			AttendanceSvc:  attendanceSvc,
			MemberSvc:      memberSvc,
		},
	)
	return &testApp{
		app:            app,
		conf:           conf,
		db:             db,
		dir:            dir,
		sessionRepo:    sessionRepo,
		attendanceRepo: attendanceRepo,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, id string, isTeacher, isAdmin bool) string {
	t.Helper()
	claims := GetOperatorClaims(conf, id, "Test Operator", isTeacher, isAdmin)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarshallObj(t *testing.T, data []byte, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarshallObj(): %v\ndata: %s", err, data)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
