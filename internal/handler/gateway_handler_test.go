package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	"github.com/noah-isme/growth-archive/internal/service"
	"github.com/noah-isme/growth-archive/internal/session"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type fakeSessionSrv struct {
	snap      session.Snapshot
	loginErr  error
	lastLogin dto.LoginForm
	loggedOut bool
	deleteErr error
}

func (f *fakeSessionSrv) Snapshot() session.Snapshot { return f.snap }

func (f *fakeSessionSrv) Login(_ context.Context, form dto.LoginForm) (session.Snapshot, error) {
	f.lastLogin = form
	if f.loginErr != nil {
		return session.Snapshot{}, f.loginErr
	}
	f.snap.IsLoggedIn = true
	return f.snap, nil
}

func (f *fakeSessionSrv) Register(_ context.Context, form dto.RegisterForm) (string, error) {
	return "u-" + form.Phone, nil
}

func (f *fakeSessionSrv) Logout(context.Context) {
	f.loggedOut = true
	f.snap = session.Snapshot{}
}

func (f *fakeSessionSrv) DeleteAccount(context.Context) error { return f.deleteErr }

func (f *fakeSessionSrv) Refresh(context.Context) session.Snapshot { return f.snap }

func TestSessionHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSessionSrv{}
	handler := NewSessionHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/session/login", `{"phone":"13800000000","password":"abc123"}`)

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "13800000000", srv.lastLogin.Phone)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &snap))
	assert.True(t, snap.IsLoggedIn)
}

func TestSessionHandlerLoginUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&fakeSessionSrv{loginErr: appErrors.RequestFailed(401, "Invalid credentials")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/session/login", `{"phone":"13800000000","password":"bad"}`)

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Invalid credentials", env.Error.Message)
	assert.Equal(t, appErrors.ErrRequestFailed.Code, env.Error.Code)
}

func TestSessionHandlerLoginBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&fakeSessionSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/session/login", `{`)

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandlerRegisterAndLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSessionSrv{snap: session.Snapshot{IsLoggedIn: true}}
	handler := NewSessionHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/session/register", `{"phone":"13800000000","password":"abc123","confirmPassword":"abc123"}`)
	handler.Register(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "u-13800000000")

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/session/logout", nil)
	handler.Logout(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, srv.loggedOut)
}

func TestSessionHandlerDeleteAccountFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&fakeSessionSrv{deleteErr: appErrors.RequestFailed(0, "")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/session/account", nil)
	handler.DeleteAccount(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequireLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSessionSrv{}
	handler := NewSessionHandler(srv)

	r := gin.New()
	r.GET("/guarded", handler.RequireLogin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	srv.snap.IsLoggedIn = true
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakeArchiveSrv struct {
	items    []models.ArchiveItem
	lastTab  selector.Tab
	lastQ    string
	created  *models.ArchiveDraft
	patched  *models.ArchivePatch
	getErr   error
	deleteID string
}

func (f *fakeArchiveSrv) List(tab selector.Tab, q string) []models.ArchiveItem {
	f.lastTab, f.lastQ = tab, q
	return f.items
}

func (f *fakeArchiveSrv) Get(_ context.Context, id string) (models.ArchiveItem, error) {
	if f.getErr != nil {
		return models.ArchiveItem{}, f.getErr
	}
	return models.ArchiveItem{ID: id}, nil
}

func (f *fakeArchiveSrv) Create(_ context.Context, draft models.ArchiveDraft) (models.ArchiveItem, error) {
	f.created = &draft
	return models.ArchiveItem{ID: "new", Title: draft.Title, Status: models.ArchiveStatusPending}, nil
}

func (f *fakeArchiveSrv) Update(_ context.Context, id string, patch models.ArchivePatch) (models.ArchiveItem, error) {
	f.patched = &patch
	return models.ArchiveItem{ID: id}, nil
}

func (f *fakeArchiveSrv) Delete(_ context.Context, id string) error {
	f.deleteID = id
	return nil
}

func (f *fakeArchiveSrv) Items() []models.ArchiveItem { return f.items }

func TestArchiveHandlerListParsesTab(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeArchiveSrv{items: []models.ArchiveItem{{ID: "1"}}}
	handler := NewArchiveHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/archives?tab=Practice&q=volunteer", nil)
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, selector.TabPractice, srv.lastTab)
	assert.Equal(t, "volunteer", srv.lastQ)
	env := decodeEnvelope(t, rec)
	assert.EqualValues(t, 1, env.Meta["total"])

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/archives?tab=sports", nil)
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchiveHandlerCreateAndUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeArchiveSrv{}
	handler := NewArchiveHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/archives", `{"title":"数学竞赛","category":"学业"}`)
	handler.Create(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, srv.created)
	assert.Equal(t, "数学竞赛", srv.created.Title)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = jsonRequest(http.MethodPut, "/archives/7", `{"status":"approved"}`)
	handler.Update(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.patched)
	require.NotNil(t, srv.patched.Status)
	assert.Equal(t, models.ArchiveStatusApproved, *srv.patched.Status)
	assert.Nil(t, srv.patched.Title)
}

func TestArchiveHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewArchiveHandler(&fakeArchiveSrv{getErr: appErrors.RequestFailed(404, "Archive not found")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/archives/missing", nil)
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeDashboardSrv struct {
	view service.DashboardView
	pins []string
}

func (f *fakeDashboardSrv) Dashboard() service.DashboardView { return f.view }

func (f *fakeDashboardSrv) SetPins(ids []string) []string {
	f.pins = ids
	return ids
}

func (f *fakeDashboardSrv) PinCandidates(string) []models.ArchiveItem { return nil }

func TestDashboardHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{view: service.DashboardView{HasUnread: true, UnreadCount: 2}}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	handler.Get(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unreadCount":2`)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPut, "/dashboard/pins", `{"ids":["a","b"]}`)
	handler.SetPins(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "b"}, srv.pins)
}

type fakeInboxSrv struct {
	lastTab selector.InboxTab
	read    []string
	readAll bool
}

func (f *fakeInboxSrv) List(tab selector.InboxTab) service.InboxView {
	f.lastTab = tab
	return service.InboxView{Tab: tab}
}

func (f *fakeInboxSrv) Get(id string) (models.Notification, bool) {
	return models.Notification{ID: id}, id == "n1"
}

func (f *fakeInboxSrv) MarkRead(_ context.Context, id string) error {
	f.read = append(f.read, id)
	return nil
}

func (f *fakeInboxSrv) MarkAllRead(context.Context) error {
	f.readAll = true
	return nil
}

func TestNotificationHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeInboxSrv{}
	handler := NewNotificationHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications?tab=system", nil)
	handler.List(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, selector.InboxSystem, srv.lastTab)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "zz"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications/zz", nil)
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "n1"}}
	c.Request = httptest.NewRequest(http.MethodPut, "/notifications/n1/read", nil)
	handler.MarkRead(c)
	assert.Equal(t, []string{"n1"}, srv.read)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil)
	handler.MarkAllRead(c)
	assert.True(t, srv.readAll)
}

type fakeProfileSrv struct {
	patch *models.UserProfilePatch
	err   error
}

func (f *fakeProfileSrv) Get() models.UserProfile { return models.UserProfile{ID: "u1", Name: "张三"} }

func (f *fakeProfileSrv) Update(_ context.Context, patch models.UserProfilePatch) (models.UserProfile, error) {
	f.patch = &patch
	if f.err != nil {
		return models.UserProfile{}, f.err
	}
	return models.UserProfile{ID: "u1"}, nil
}

func TestProfileHandlerUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeProfileSrv{err: appErrors.ErrImageTooLarge}
	handler := NewProfileHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPut, "/profile", `{"avatar":"data:image/png;base64,AAAA"}`)
	handler.Update(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.NotNil(t, srv.patch)
	require.NotNil(t, srv.patch.Avatar)
	assert.Nil(t, srv.patch.Name)
}

type fakeExportSrv struct {
	dir     string
	lastReq service.ExportRequest
	rows    int
}

func (f *fakeExportSrv) ExportArchive(_ context.Context, items []models.ArchiveItem, req service.ExportRequest) (*service.ExportResult, error) {
	f.lastReq = req
	f.rows = len(items)
	return &service.ExportResult{ID: "e1", Token: "tok", URL: "/api/v1/exports/download?token=tok", Format: req.Format}, nil
}

func (f *fakeExportSrv) ParseToken(token string, _ bool) (string, string, time.Time, error) {
	if token != "tok" {
		return "", "", time.Time{}, assert.AnError
	}
	return "e1", "archive_e1.csv", time.Now().Add(time.Minute), nil
}

func (f *fakeExportSrv) Open(relPath string) (*os.File, error) {
	return os.Open(filepath.Join(f.dir, relPath))
}

func TestExportHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exports := &fakeExportSrv{}
	handler := NewExportHandler(exports, &fakeArchiveSrv{items: []models.ArchiveItem{{ID: "1"}, {ID: "2"}}}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/exports", `{"format":"XLSX","tab":"证书"}`)
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, service.ExportFormatXLSX, exports.lastReq.Format)
	assert.Equal(t, selector.TabCertificate, exports.lastReq.Tab)
	assert.Equal(t, 2, exports.rows)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/exports", `{"format":"docx"}`)
	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archive_e1.csv"), []byte("ID,Title\n1,x\n"), 0o644))
	handler := NewExportHandler(&fakeExportSrv{dir: dir}, &fakeArchiveSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/download?token=tok", nil)
	handler.Download(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "archive_e1.csv")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("ID,Title")))

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/download?token=forged", nil)
	handler.Download(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ready := false
	handler := NewMetricsHandler(service.NewMetricsService(), func() bool { return ready })

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready = true
	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)
}
