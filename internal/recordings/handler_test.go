package recordings

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scrollcast/backend/internal/license"
	"github.com/scrollcast/backend/internal/media"
	"github.com/scrollcast/backend/internal/models"
	"github.com/scrollcast/backend/internal/render"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, f CreateFields) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Get(ctx context.Context, id int64) (*models.Recording, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*models.Recording)
	return rec, args.Error(1)
}

func (m *mockStore) GetByPostID(ctx context.Context, postID int64) (*models.Recording, error) {
	args := m.Called(ctx, postID)
	rec, _ := args.Get(0).(*models.Recording)
	return rec, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, limit, offset int) ([]models.Recording, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]models.Recording)
	return list, args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderVideo(ctx context.Context, targetURL string, p render.Params) ([]byte, *render.Result, error) {
	args := m.Called(ctx, targetURL, p)
	video, _ := args.Get(0).([]byte)
	result, _ := args.Get(1).(*render.Result)
	return video, result, args.Error(2)
}

type mockIngestor struct {
	mock.Mock
}

func (m *mockIngestor) Store(ctx context.Context, data []byte, sourceURL string, opts media.IngestOptions) (*media.StoredMedia, error) {
	args := m.Called(ctx, data, sourceURL, opts)
	stored, _ := args.Get(0).(*media.StoredMedia)
	return stored, args.Error(1)
}

type stubResolver struct {
	url string
	att *models.Attachment
}

func (s *stubResolver) ResolveURL(ctx context.Context, id int64) (string, error) {
	return s.url, nil
}

func (s *stubResolver) Get(ctx context.Context, id int64) (*models.Attachment, error) {
	return s.att, nil
}

type stubUsage struct {
	status      *license.Status
	invalidated int
}

func (s *stubUsage) CurrentStatus(ctx context.Context) (*license.Status, error) {
	return s.status, nil
}

func (s *stubUsage) InvalidateUsage(ctx context.Context) { s.invalidated++ }

type handlerEnv struct {
	store    *mockStore
	renderer *mockRenderer
	ingestor *mockIngestor
	usage    *stubUsage
	handler  *Handler
}

func newHandlerEnv() *handlerEnv {
	gin.SetMode(gin.TestMode)
	env := &handlerEnv{
		store:    &mockStore{},
		renderer: &mockRenderer{},
		ingestor: &mockIngestor{},
		usage:    &stubUsage{},
	}
	env.handler = NewHandler(env.store, env.renderer, env.ingestor, &stubResolver{url: "https://cdn.example.com/v.mp4"}, env.usage, nil, nil, nil, nil)
	return env
}

func performJSON(h gin.HandlerFunc, method, path string, body interface{}, params ...gin.Param) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	h(c)
	return w
}

func TestCreateSuccess(t *testing.T) {
	env := newHandlerEnv()
	video := []byte("video-bytes")
	env.renderer.On("RenderVideo", mock.Anything, "https://example.com/page", mock.Anything).
		Return(video, &render.Result{Duration: 5}, nil)
	env.ingestor.On("Store", mock.Anything, video, "https://example.com/page", mock.Anything).
		Return(&media.StoredMedia{AttachmentID: 9, FileURL: "https://example.com/uploads/v.mp4", FileSize: 11}, nil)
	env.store.On("Create", mock.Anything, mock.MatchedBy(func(f CreateFields) bool {
		return f.Status == models.RecordingStatusCompleted &&
			f.AttachmentID == 9 &&
			f.URL == "https://example.com/page" &&
			f.Options != nil && f.Options.Scenario == "scroll"
	})).Return(int64(33), nil)

	w := performJSON(env.handler.Create, http.MethodPost, "/recordings", gin.H{"url": "https://example.com/page"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			RecordingID int64  `json:"recording_id"`
			Shortcode   string `json:"shortcode"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(33), resp.Data.RecordingID)
	assert.Equal(t, `[screen_recording id="33"]`, resp.Data.Shortcode)
	assert.Equal(t, 1, env.usage.invalidated)
	env.store.AssertExpectations(t)
}

func TestCreateRenderFailureLeavesNoRow(t *testing.T) {
	env := newHandlerEnv()
	env.renderer.On("RenderVideo", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil, &render.Error{Kind: render.KindConnectivity, Message: "connection failed"})

	w := performJSON(env.handler.Create, http.MethodPost, "/recordings", gin.H{"url": "https://example.com/page"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	env.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.ingestor.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, env.usage.invalidated)
}

func TestCreateUsageLimit(t *testing.T) {
	env := newHandlerEnv()
	env.renderer.On("RenderVideo", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil, &render.Error{Kind: render.KindUsageLimit, Message: "Free recording used. Upgrade to create more recordings."})

	w := performJSON(env.handler.Create, http.MethodPost, "/recordings", gin.H{"url": "https://example.com/page"})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "Free recording used")
	env.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateValidationFailure(t *testing.T) {
	env := newHandlerEnv()
	env.renderer.On("RenderVideo", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil, &render.Error{Kind: render.KindValidation, Message: "bad parameters"})

	w := performJSON(env.handler.Create, http.MethodPost, "/recordings", gin.H{"url": "https://example.com/page"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMissingURL(t *testing.T) {
	env := newHandlerEnv()
	w := performJSON(env.handler.Create, http.MethodPost, "/recordings", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No URL provided")
	env.renderer.AssertNotCalled(t, "RenderVideo", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInvalidURL(t *testing.T) {
	env := newHandlerEnv()
	w := performJSON(env.handler.Create, http.MethodPost, "/recordings", gin.H{"url": "not-a-url"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid URL")
}

func TestStatusCompleted(t *testing.T) {
	env := newHandlerEnv()
	env.store.On("Get", mock.Anything, int64(5)).Return(&models.Recording{
		ID: 5, Status: models.RecordingStatusCompleted, AttachmentID: 9,
	}, nil)

	w := performJSON(env.handler.Status, http.MethodGet, "/recordings/5/status", nil, gin.Param{Key: "id", Value: "5"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
	assert.Contains(t, w.Body.String(), "https://cdn.example.com/v.mp4")
}

func TestStatusNotFound(t *testing.T) {
	env := newHandlerEnv()
	env.store.On("Get", mock.Anything, int64(404)).Return(nil, nil)

	w := performJSON(env.handler.Status, http.MethodGet, "/recordings/404/status", nil, gin.Param{Key: "id", Value: "404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteNotFoundThenNoop(t *testing.T) {
	env := newHandlerEnv()
	env.store.On("Delete", mock.Anything, int64(8)).Return(false, nil)

	w := performJSON(env.handler.Delete, http.MethodDelete, "/recordings/8", nil, gin.Param{Key: "id", Value: "8"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, env.usage.invalidated)
}

func TestDeleteSuccess(t *testing.T) {
	env := newHandlerEnv()
	env.store.On("Delete", mock.Anything, int64(8)).Return(true, nil)

	w := performJSON(env.handler.Delete, http.MethodDelete, "/recordings/8", nil, gin.Param{Key: "id", Value: "8"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.usage.invalidated)
}

func TestDeleteInvalidID(t *testing.T) {
	env := newHandlerEnv()
	w := performJSON(env.handler.Delete, http.MethodDelete, "/recordings/zero", nil, gin.Param{Key: "id", Value: "zero"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUsageEndpoint(t *testing.T) {
	env := newHandlerEnv()
	env.usage.status = &license.Status{Plan: "free", UsageLimit: 1, CurrentUsage: 1, CanCreate: false}

	w := performJSON(env.handler.Usage, http.MethodGet, "/recordings/usage", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plan":"free"`)
	assert.Contains(t, w.Body.String(), `"can_create":false`)
}

func TestDevicesList(t *testing.T) {
	env := newHandlerEnv()
	w := performJSON(env.handler.Devices, http.MethodGet, "/devices", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mobile_iphone_xr")
	assert.Contains(t, w.Body.String(), "No Device Frame")
	assert.Contains(t, w.Body.String(), "414x896")
}
