package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minealert/minealert-backend/dto"
	"github.com/minealert/minealert-backend/models"
	"github.com/minealert/minealert-backend/repositories"
	"github.com/minealert/minealert-backend/repositories/clock"
	"github.com/minealert/minealert-backend/repositories/dbmodels"
	"github.com/minealert/minealert-backend/usecases"
)

const testApiKey = "field-team-secret"

var testNow = time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)

func newTestRouter(t *testing.T) (*gin.Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	uc := usecases.NewUsecases(
		repositories.NewRepositories(mock, repositories.WithClock(clock.NewMock(testNow))),
		usecases.WithClock(clock.NewMock(testNow)),
	)
	router := gin.New()
	addRoutes(router, Configuration{
		ApiKeys:          map[string]string{testApiKey: "field-team"},
		DefaultTimeout:   5 * time.Second,
		ImageryTimeout:   5 * time.Second,
		MaxUploadSize:    1024 * 1024,
		EnablePrometheus: true,
	}, uc)
	return router, mock
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, testApiKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.APIErrorResponse {
	t.Helper()
	var out dto.APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func detectionRow(id uuid.UUID) []any {
	return []any{
		id,
		(*uuid.UUID)(nil),
		testNow.Add(-5 * time.Minute),
		34.0532,
		-118.2427,
		"Landmine",
		78.5,
		"fusion",
		null.String{},
		pgtype.Int4{},
		pgtype.Int4{},
		pgtype.Int4{},
		pgtype.Int4{},
	}
}

func TestApiKeyAuthentication(t *testing.T) {
	router, mock := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/detections/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).ErrorCode)

	req = httptest.NewRequest(http.MethodGet, "/detections/stats", nil)
	req.Header.Set(apiKeyHeader, "not-the-key")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLiveness_does_not_require_a_key(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	req := httptest.NewRequest(http.MethodGet, "/liveness", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetection(t *testing.T) {
	router, mock := newTestRouter(t)
	id := uuid.Must(uuid.NewV7())
	mock.ExpectQuery(`SELECT .* FROM detections WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(dbmodels.DetectionFields).AddRow(detectionRow(id)...))

	w := doRequest(router, http.MethodGet, "/detections/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Detection dto.APIDetection `json:"detection"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, id, out.Detection.Id)
	assert.Equal(t, "Landmine", out.Detection.Classification)
	assert.Equal(t, "danger", out.Detection.Severity)
	assert.Equal(t, "red", out.Detection.Color)
	assert.Equal(t, "5m ago", out.Detection.TimeAgo)
	assert.Nil(t, out.Detection.BoundingBox)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetection_errors(t *testing.T) {
	router, mock := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/detections/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeBadParameter, decodeError(t, w).ErrorCode)

	id := uuid.Must(uuid.NewV7())
	mock.ExpectQuery(`SELECT .* FROM detections WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(dbmodels.DetectionFields))
	w = doRequest(router, http.MethodGet, "/detections/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrorCodeNotFound, decodeError(t, w).ErrorCode)

	mock.ExpectQuery(`SELECT .* FROM detections WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(errors.New("connection reset"))
	w = doRequest(router, http.MethodGet, "/detections/"+id.String(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetectionStats_lists_every_classification(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.ExpectQuery(`SELECT classification, count\(\*\) AS count FROM detections GROUP BY classification`).
		WillReturnRows(pgxmock.NewRows([]string{"classification", "count"}).AddRow("Landmine", 3))

	w := doRequest(router, http.MethodGet, "/detections/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats dto.APIDetectionStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, []dto.APIClassificationCount{
		{Classification: "Landmine", Color: "red", Count: 3},
		{Classification: "Metal Debris", Color: "orange", Count: 0},
		{Classification: "Safe Zone", Color: "green", Count: 0},
	}, stats.Classifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportDetections(t *testing.T) {
	router, mock := newTestRouter(t)
	id := uuid.Must(uuid.NewV7())
	mock.ExpectQuery(`SELECT .* FROM detections WHERE classification IN \(\$1\) ORDER BY created_at, id`).
		WithArgs("Landmine").
		WillReturnRows(pgxmock.NewRows(dbmodels.DetectionFields).AddRow(detectionRow(id)...))

	w := doRequest(router, http.MethodGet, "/detections/export?format=csv&classification=Landmine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="landmine_detections_20260301_123045.csv"`,
		w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,timestamp,latitude,longitude,classification,confidence,source,image_path,x,y,width,height", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], id.String()+",2026-03-01 12:25:45,34.0532,-118.2427,Landmine,78.5,fusion"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportDetections_unknown_format(t *testing.T) {
	router, mock := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/detections/export?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestValidation(t *testing.T) {
	droneId := uuid.Must(uuid.NewV7())
	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{
			name:   "unknown drone command",
			method: http.MethodPost,
			path:   "/drones/" + droneId.String() + "/commands",
			body:   gin.H{"command": "barrel_roll"},
		},
		{
			name:   "drone without a name",
			method: http.MethodPost,
			path:   "/drones",
			body:   gin.H{"home_latitude": 34.05},
		},
		{
			name:   "reading out of range",
			method: http.MethodPost,
			path:   "/sensor-readings",
			body: gin.H{
				"latitude":  34.05,
				"longitude": -118.24,
				"readings":  []gin.H{{"modality": "gpr", "value": 120}},
			},
		},
		{
			name:   "unknown modality",
			method: http.MethodPost,
			path:   "/sensor-readings",
			body: gin.H{
				"latitude":  34.05,
				"longitude": -118.24,
				"readings":  []gin.H{{"modality": "sonar", "value": 50}},
			},
		},
		{
			name:   "sms recipient with a local number",
			method: http.MethodPost,
			path:   "/alert-recipients",
			body:   gin.H{"name": "Field team", "channel": "sms", "target": "0612345678"},
		},
		{
			name:   "unknown event type",
			method: http.MethodGet,
			path:   "/events?type=PARTY",
		},
		{
			name:   "invalid drone filter",
			method: http.MethodGet,
			path:   "/detections?drone_id=abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mock := newTestRouter(t)
			w := doRequest(router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, dto.ErrorCodeBadParameter, decodeError(t, w).ErrorCode)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPresentError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		code int
	}{
		{errors.Wrap(models.BadParameterError, "latitude"), http.StatusBadRequest},
		{models.ErrInvalidPhoneNumber, http.StatusBadRequest},
		{models.FieldValidationError{"name": "required"}, http.StatusBadRequest},
		{models.UnAuthorizedError, http.StatusUnauthorized},
		{models.ForbiddenError, http.StatusForbidden},
		{errors.Wrap(models.NotFoundError, "drone"), http.StatusNotFound},
		{models.ConflictError, http.StatusConflict},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		assert.True(t, presentError(c.Request.Context(), c, tt.err))
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, presentError(c.Request.Context(), c, nil))
}

func TestParseApiKeys(t *testing.T) {
	keys, err := ParseApiKeys("dashboard:abc123, field-team:def456,ghi789")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"abc123": "dashboard",
		"def456": "field-team",
		"ghi789": "key-3",
	}, keys)

	keys, err = ParseApiKeys("")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = ParseApiKeys("dashboard:")
	assert.Error(t, err)

	_, err = ParseApiKeys("a:same,b:same")
	assert.Error(t, err)
}

func TestBindingError_names_the_failing_fields(t *testing.T) {
	router, mock := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/sensor-readings", gin.H{
		"latitude": 34.05,
		"readings": []gin.H{{"modality": "thermal", "value": 120}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	message := decodeError(t, w).Message
	assert.Contains(t, message, "longitude:required")
	assert.Contains(t, message, "readings[0].value:max=100")
	assert.NoError(t, mock.ExpectationsWereMet())
}
