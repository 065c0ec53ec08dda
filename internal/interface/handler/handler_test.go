package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/pkg/logger"
	"kayako-stat-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImporter struct {
	gotName string
	gotBody string
	err     error
	runs    []*entity.ImportRun
	limit   int
}

func (f *fakeImporter) ImportFile(ctx context.Context, name string, r io.Reader) (*entity.ImportRun, error) {
	b, _ := io.ReadAll(r)
	f.gotName, f.gotBody = name, string(b)
	status := entity.ImportCompleted
	if f.err != nil {
		status = entity.ImportFailed
	}
	return &entity.ImportRun{ID: 1, FileName: name, Status: status}, f.err
}

func (f *fakeImporter) RecentRuns(ctx context.Context, limit int) ([]*entity.ImportRun, error) {
	f.limit = limit
	return f.runs, nil
}

type fakeReporter struct {
	got    entity.ReportQuery
	report *entity.Report
	err    error
}

func (f *fakeReporter) Report(ctx context.Context, q entity.ReportQuery) (*entity.Report, error) {
	f.got = q
	return f.report, f.err
}

func (f *fakeReporter) Filters(ctx context.Context) (*entity.FilterOptions, error) {
	return &entity.FilterOptions{Regions: []string{entity.AllRegions, "RU"}}, nil
}

func setup(imp *fakeImporter, rep *fakeReporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewStatHandler(imp, rep, metrics.NewMetrics("test", prometheus.NewRegistry()), logger.NewNopLogger(), 1<<20)
	h.now = func() time.Time { return time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC) }

	r := gin.New()
	r.POST("/imports", h.Upload)
	r.GET("/imports", h.ListImports)
	r.GET("/filters", h.Filters)
	r.GET("/report", h.Report)
	return r
}

func multipartBody(t *testing.T, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUpload(t *testing.T) {
	imp := &fakeImporter{}
	r := setup(imp, &fakeReporter{})

	body, ctype := multipartBody(t, "export.csv", "id,a,b,c,d,e,f,g\n")
	req := httptest.NewRequest(http.MethodPost, "/imports", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "export.csv", imp.gotName)
	assert.Equal(t, "id,a,b,c,d,e,f,g\n", imp.gotBody)
}

func TestUpload_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"parse", &entity.ParseError{Row: 2, Column: "id", Err: errors.New("not an integer")}, http.StatusUnprocessableEntity},
		{"storage", &entity.StorageError{Op: "insert", TicketID: 1, Err: errors.New("down")}, http.StatusBadGateway},
		{"format", entity.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"corrupt", errors.New("failed to open workbook"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setup(&fakeImporter{err: tt.err}, &fakeReporter{})
			body, ctype := multipartBody(t, "export.xlsx", "data")
			req := httptest.NewRequest(http.MethodPost, "/imports", body)
			req.Header.Set("Content-Type", ctype)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	r := setup(&fakeImporter{}, &fakeReporter{})
	req := httptest.NewRequest(http.MethodPost, "/imports", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListImports(t *testing.T) {
	imp := &fakeImporter{runs: []*entity.ImportRun{{ID: 2}, {ID: 1}}}
	r := setup(imp, &fakeReporter{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imports?limit=500", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, imp.limit)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imports?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReport_DefaultsToTodayAndAll(t *testing.T) {
	rep := &fakeReporter{report: &entity.Report{Total: 0, BySystem: []entity.ValueCount{}}}
	r := setup(&fakeImporter{}, rep)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))

	require.Equal(t, http.StatusOK, w.Code)
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, rep.got.Start)
	assert.Equal(t, today, rep.got.End)
	assert.Equal(t, entity.AllRegions, rep.got.Region)
	assert.Equal(t, entity.AllSystems, rep.got.SystemID)
	assert.Equal(t, entity.AllTypes, rep.got.Type)
	assert.Equal(t, entity.AllStatuses, rep.got.Status)

	var resp entity.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
}

func TestReport_Filters(t *testing.T) {
	rep := &fakeReporter{report: &entity.Report{Total: 3}}
	r := setup(&fakeImporter{}, rep)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report?start=2024-01-01&end=2024-01-31&region=RU&system_id=CRM&type=Incident&status=Closed", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), rep.got.End)
	assert.Equal(t, "RU", rep.got.Region)
	assert.Equal(t, "CRM", rep.got.SystemID)
	assert.Equal(t, "Incident", rep.got.Type)
	assert.Equal(t, "Closed", rep.got.Status)
}

func TestReport_BadInput(t *testing.T) {
	r := setup(&fakeImporter{}, &fakeReporter{err: entity.ErrInvalidRange})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report?start=01.01.2024", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report?start=2024-02-01&end=2024-01-01", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilters(t *testing.T) {
	r := setup(&fakeImporter{}, &fakeReporter{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/filters", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var opts entity.FilterOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Equal(t, []string{entity.AllRegions, "RU"}, opts.Regions)
}
