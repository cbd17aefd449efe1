package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamgilwell/hemat/internal/access"
	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/content"
	"github.com/iamgilwell/hemat/internal/notification"
	"github.com/iamgilwell/hemat/internal/power"
	"github.com/iamgilwell/hemat/internal/publisher"
)

const adminToken = "t0ken"

type fakeAdvisor struct {
	analysis *ai.Analysis
	draft    *ai.Draft
	err      error
	got      ai.AnalysisRequest
}

func (f *fakeAdvisor) Analyze(_ context.Context, req ai.AnalysisRequest) (*ai.Analysis, error) {
	f.got = req
	return f.analysis, f.err
}

func (f *fakeAdvisor) DraftArticle(_ context.Context, req ai.DraftRequest) (*ai.Draft, error) {
	if req.Topic == "" {
		return nil, ai.ErrTopicRequired
	}
	return f.draft, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publisher.Event
}

func (p *recordingPublisher) Publish(e publisher.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	srv     *Server
	store   *content.Store
	events  *recordingPublisher
	advisor *fakeAdvisor
	metrics *power.Metrics
}

func newFixture(t *testing.T, readOnly bool, withAdvisor bool) *fixture {
	t.Helper()
	dir := t.TempDir()

	store, err := content.NewStore(filepath.Join(dir, "hemat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	auditor, err := notification.NewAuditor(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	t.Cleanup(auditor.Close)

	f := &fixture{
		store:   store,
		events:  &recordingPublisher{},
		advisor: &fakeAdvisor{},
		metrics: power.NewMetrics(),
	}

	deps := Deps{
		Calculator: power.NewCalculator(power.Options{}),
		Metrics:    f.metrics,
		Articles:   store,
		Access:     access.NewManager([]string{adminToken}, readOnly),
		Auditor:    auditor,
		Events:     f.events,
	}
	if withAdvisor {
		deps.Advisor = f.advisor
	}

	f.srv = New(deps, Options{Version: "test", DefaultRate: 1500, MinRate: 100, PageSize: 10, MaxPageSize: 20})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false, false)

	rec := f.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["ai"])
}

func TestCalculate(t *testing.T) {
	f := newFixture(t, false, false)

	rec := f.do(t, http.MethodPost, "/api/calculate", map[string]interface{}{
		"devices": []map[string]interface{}{
			{"id": "1", "name": "AC", "power": 750, "dailyUsage": 6, "quantity": 1},
			{"id": "2", "name": "Lampu LED", "power": 10, "dailyUsage": 10, "quantity": 5},
			{"id": "3", "name": "Kulkas", "power": 150, "dailyUsage": 24, "quantity": 1},
			{"id": "4", "name": "", "power": 100, "dailyUsage": 1, "quantity": 1},
		},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		DailyConsumption     float64 `json:"dailyConsumption"`
		MonthlyConsumption   float64 `json:"monthlyConsumption"`
		Rate                 float64 `json:"rate"`
		MonthlyCost          float64 `json:"monthlyCost"`
		MonthlyCostFormatted string  `json:"monthlyCostFormatted"`
		Devices              []struct {
			Name       string  `json:"name"`
			MonthlyKwh float64 `json:"monthlyKwh"`
		} `json:"devices"`
		Chart    []power.ChartSlice `json:"chart"`
		Excluded []power.Warning    `json:"excluded"`
	}
	decodeBody(t, rec, &body)

	assert.InDelta(t, 8.6, body.DailyConsumption, 1e-9)
	assert.InDelta(t, 258.0, body.MonthlyConsumption, 1e-9)
	assert.Equal(t, 1500.0, body.Rate)
	assert.InDelta(t, 387000.0, body.MonthlyCost, 1e-6)
	assert.Equal(t, "Rp 387.000", body.MonthlyCostFormatted)
	require.Len(t, body.Devices, 3)
	assert.InDelta(t, 135.0, body.Devices[0].MonthlyKwh, 1e-9)
	require.Len(t, body.Chart, 3)
	assert.Equal(t, "#1e6626", body.Chart[0].Color)
	require.Len(t, body.Excluded, 1)
	assert.Equal(t, power.ReasonMissingName, body.Excluded[0].Reason)

	assert.Equal(t, 1, f.metrics.Served())
	assert.Equal(t, []string{publisher.CalculationCompleted}, f.events.types())
}

func TestCalculateRate(t *testing.T) {
	f := newFixture(t, false, false)
	devices := []power.Device{{Name: "TV", PowerWatts: 100, DailyUsageHours: 10, Quantity: 1}}

	tests := []struct {
		name string
		rate interface{}
		want float64
	}{
		{"custom", 1444.7, 1444.7},
		{"below minimum", 50, 100},
		{"zero", 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/calculate", map[string]interface{}{"devices": devices, "rate": tt.rate}, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Rate        float64 `json:"rate"`
				MonthlyCost float64 `json:"monthlyCost"`
			}
			decodeBody(t, rec, &body)
			assert.Equal(t, tt.want, body.Rate)
			assert.InDelta(t, 30*tt.want, body.MonthlyCost, 1e-6)
		})
	}
}

func TestCalculateValidation(t *testing.T) {
	f := newFixture(t, false, false)

	rec := f.do(t, http.MethodPost, "/api/calculate", map[string]interface{}{
		"devices": []power.Device{{Name: "TV", PowerWatts: 100, DailyUsageHours: 1, Quantity: 0}},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculateStrict(t *testing.T) {
	f := newFixture(t, false, false)
	f.srv.deps.Calculator = power.NewCalculator(power.Options{StrictHours: true})

	rec := f.do(t, http.MethodPost, "/api/calculate", map[string]interface{}{
		"devices": []power.Device{{Name: "TV", PowerWatts: 100, DailyUsageHours: 25, Quantity: 1}},
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalysis(t *testing.T) {
	f := newFixture(t, false, false)
	rec := f.do(t, http.MethodPost, "/api/electricity-analysis", map[string]interface{}{}, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f = newFixture(t, false, true)
	f.advisor.analysis = &ai.Analysis{
		MonthlyCost:       387000,
		EnergySavingTips:  []string{"a"},
		EnvironmentalTips: []string{"b"},
	}

	result := power.Calculate([]power.Device{{Name: "AC", PowerWatts: 750, DailyUsageHours: 6, Quantity: 1}})
	rec = f.do(t, http.MethodPost, "/api/electricity-analysis", map[string]interface{}{
		"devices":            result.Devices,
		"monthlyConsumption": result.MonthlyTotalKWh,
		"electricityRate":    1500,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body analysisResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, []string{"a"}, body.EnergySavingTips)
	assert.Equal(t, []string{"b"}, body.EnvironmentalTips)

	require.Len(t, f.advisor.got.Devices, 1)
	assert.InDelta(t, 135.0, f.advisor.got.Devices[0].MonthlyKWh, 1e-9)
	assert.Equal(t, 1500.0, f.advisor.got.Rate)

	f.advisor.err = errors.New("boom")
	rec = f.do(t, http.MethodPost, "/api/electricity-analysis", map[string]interface{}{"devices": result.Devices}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminAuth(t *testing.T) {
	f := newFixture(t, false, false)

	rec := f.do(t, http.MethodGet, "/api/admin/articles", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = f.do(t, http.MethodGet, "/api/admin/articles", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/articles", nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminReadOnly(t *testing.T) {
	f := newFixture(t, true, false)

	rec := f.do(t, http.MethodGet, "/api/admin/articles", nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/admin/articles", articleRequest{Title: "t", Content: "c"}, adminToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestArticleLifecycle(t *testing.T) {
	f := newFixture(t, false, false)

	rec := f.do(t, http.MethodPost, "/api/admin/articles", articleRequest{
		Title:    "Hemat AC",
		Content:  "Setel suhu 25 derajat",
		Category: "rumah_tangga",
		Tags:     []string{" ac ", "", "hemat"},
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created content.Article
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"ac", "hemat"}, created.Tags)

	// Drafts are hidden from the public.
	rec = f.do(t, http.MethodGet, "/api/articles/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/admin/articles/"+created.ID+"/publish", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/articles/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/articles?search=hemat", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page content.Page
	decodeBody(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	rec = f.do(t, http.MethodPut, "/api/admin/articles/"+created.ID, articleRequest{
		Title:   "Hemat AC di Rumah",
		Content: "isi baru",
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated content.Article
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Hemat AC di Rumah", updated.Title)
	assert.False(t, updated.IsPublished)
	assert.Equal(t, content.CategoryGeneral, updated.Category)

	rec = f.do(t, http.MethodDelete, "/api/admin/articles/"+created.ID, nil, adminToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/admin/articles/"+created.ID, nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{
		publisher.ArticleCreated,
		publisher.ArticlePublished,
		publisher.ArticleUpdated,
		publisher.ArticleUnpublished,
		publisher.ArticleDeleted,
	}, f.events.types())
}

func TestCreateArticleValidation(t *testing.T) {
	f := newFixture(t, false, false)

	rec := f.do(t, http.MethodPost, "/api/admin/articles", articleRequest{Content: "c"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/admin/articles", articleRequest{Title: "t", Content: "c", Category: "olahraga"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPublishedPaging(t *testing.T) {
	f := newFixture(t, false, false)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		require.NoError(t, f.store.Create(ctx, &content.Article{Title: "A", Content: "c", IsPublished: true}))
	}

	rec := f.do(t, http.MethodGet, "/api/articles", nil, "")
	var page content.Page
	decodeBody(t, rec, &page)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasMore)
	assert.Equal(t, 10, page.NextOffset)

	rec = f.do(t, http.MethodGet, "/api/articles?limit=100", nil, "")
	decodeBody(t, rec, &page)
	assert.Len(t, page.Items, 20, "limit is capped")

	rec = f.do(t, http.MethodGet, "/api/articles?offset=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateContent(t *testing.T) {
	f := newFixture(t, false, false)
	rec := f.do(t, http.MethodPost, "/api/generate-content", ai.DraftRequest{Topic: "AC"}, adminToken)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f = newFixture(t, false, true)
	f.advisor.draft = &ai.Draft{Title: "Hemat AC", Summary: "s", Content: "c", Tags: "ac"}

	rec = f.do(t, http.MethodPost, "/api/generate-content", ai.DraftRequest{Topic: "AC"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/generate-content", ai.DraftRequest{}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/generate-content", ai.DraftRequest{Topic: "AC"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var draft ai.Draft
	decodeBody(t, rec, &draft)
	assert.Equal(t, "Hemat AC", draft.Title)

	f.advisor.err = errors.New("quota")
	rec = f.do(t, http.MethodPost, "/api/generate-content", ai.DraftRequest{Topic: "AC"}, adminToken)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
