package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/adrap/apps/api/echo"
	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/services/logger"
	"github.com/trezcool/adrap/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type app struct {
	echoapi.Server
	conf *core.Config
	svc  *testutil.Services
}

func setup(t *testing.T) app {
	t.Helper()
	return setupWithStore(t, nil)
}

// setupWithStore builds the app over in-memory repositories, reporting the health of store when given.
func setupWithStore(t *testing.T, store core.Pinger) app {
	t.Helper()
	conf := testutil.TestConfig()
	svc := testutil.NewInMemServices()
	if store != nil {
		svc.Store = store
	}

	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "API TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Store:         svc.Store,
		Validate:      svc.Validate,
		Translator:    svc.Translator,
		CredentialSvc: svc.Credential,
		SubjectSvc:    svc.Subject,
		TestSvc:       svc.Test,
		MarksSvc:      svc.Marks,
		SheetSvc:      svc.Sheet,
	})
	return app{Server: srv, conf: conf, svc: svc}
}

// tokens returns a signed token per role.
func (a app) tokens(t *testing.T) map[string]string {
	t.Helper()
	tokens := make(map[string]string, len(credential.AllRoles))
	for _, role := range credential.AllRoles {
		tokens[role] = getToken(t, a.conf, role, role+"_user")
	}
	return tokens
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

func getToken(t *testing.T, conf *core.Config, role, username string) string {
	token, err := echoapi.GenerateToken(conf, echoapi.NewClaims(conf, role, username))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; data %s", err, data)
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
	return assert.ElementsMatch(t, j1, j2), nil
}

// runTests serves every test against a and checks its code; data is only checked when wantData is set.
// method and path are used for tests that do not set theirs.
func runTests(t *testing.T, a app, tests []httpTest, method, path string) {
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = method
		}
		if tt.path == "" {
			tt.path = path
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
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
