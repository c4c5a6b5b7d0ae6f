package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/config"
	"github.com/GBZC2708/procard-api/internal/response"
	"github.com/GBZC2708/procard-api/internal/service"
	"github.com/GBZC2708/procard-api/internal/storage"
)

type testApp struct {
	logger    internal.Logger
	cfg       *config.Config
	store     storage.Store
	dashboard *service.DashboardCache
}

func (a *testApp) Logger() internal.Logger            { return a.logger }
func (a *testApp) Config() *config.Config             { return a.cfg }
func (a *testApp) Store() storage.Store               { return a.store }
func (a *testApp) Dashboard() *service.DashboardCache { return a.dashboard }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := internal.NewLogger("development", "error")
	store, err := storage.NewFileStorage(filepath.Join(t.TempDir(), "test.json"), logger)
	require.NoError(t, err)
	dashboard := service.NewDashboardCache(store)
	t.Cleanup(func() {
		dashboard.Close()
		_ = store.Close()
	})

	app := &testApp{
		logger:    logger,
		cfg:       &config.Config{DefaultUser: "Atleta"},
		store:     store,
		dashboard: dashboard,
	}
	return NewRouter(app)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestGetProfileCreatesDefault(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/profile", nil)
	require.Equal(t, 200, w.Code)

	var p internal.UserProfile
	decodeData(t, w, &p)
	assert.Equal(t, "Atleta", p.Username)
	assert.Equal(t, internal.DefaultDisplayName, p.DisplayName)
}

func TestPatchProfileValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPatch, "/api/profile", map[string]any{"sex": "other"})
	assert.Equal(t, 400, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/profile", map[string]any{"sex": "male", "height_cm": 180})
	require.Equal(t, 200, w.Code)
	var p internal.UserProfile
	decodeData(t, w, &p)
	assert.Equal(t, internal.SexMale, p.Sex)
	assert.Equal(t, 180.0, p.HeightCm)
}

func TestPutMetricFieldAndRead(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/metrics/20700/weight", map[string]any{"value": 71.2})
	require.Equal(t, 200, w.Code)
	w = doJSON(t, router, http.MethodPut, "/api/metrics/20700/training", map[string]any{"done": true})
	require.Equal(t, 200, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/metrics/20700", nil)
	require.Equal(t, 200, w.Code)
	var m internal.DailyMetrics
	decodeData(t, w, &m)
	assert.Equal(t, 71.2, m.WeightFasted)
	assert.True(t, m.TrainingDone)
	assert.Equal(t, internal.StageDefinicion, m.Stage)
}

func TestPutMetricFieldRejectsUnknownField(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/metrics/20700/mood", map[string]any{"value": 5})
	assert.Equal(t, 400, w.Code)
}

func TestXUserHeaderSeparatesUsers(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"value": 70.0}))
	req := httptest.NewRequest(http.MethodPut, "/api/metrics/20700/weight", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", "otro")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)

	// The default user's day is untouched.
	w2 := doJSON(t, router, http.MethodGet, "/api/metrics/20700", nil)
	var m internal.DailyMetrics
	decodeData(t, w2, &m)
	assert.Zero(t, m.WeightFasted)
}

func TestFoodFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/foods", nil)
	require.Equal(t, 200, w.Code)
	var f internal.FoodItem
	decodeData(t, w, &f)
	assert.Equal(t, "Nuevo alimento", f.Name)

	w = doJSON(t, router, http.MethodPatch, "/api/foods/"+f.ID, map[string]any{"name": "Arroz", "carb_g": 75})
	require.Equal(t, 200, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/food-days/20700/entries", map[string]any{"food_id": f.ID})
	require.Equal(t, 200, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/food-days/20700/entries", map[string]any{"food_id": "missing"})
	assert.Equal(t, 404, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/food-days/20700/weekly", nil)
	require.Equal(t, 200, w.Code)
	var week []service.DayCalories
	decodeData(t, w, &week)
	require.Len(t, week, 7)
	assert.InDelta(t, 300, week[6].Calories, 1e-6)
}

func TestGetFoodDayReportsHasEntries(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/food-days/20700", nil)
	require.Equal(t, 200, w.Code)
	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp.Meta["has_entries"])

	w = doJSON(t, router, http.MethodPost, "/api/foods", nil)
	require.Equal(t, 200, w.Code)
	var f internal.FoodItem
	decodeData(t, w, &f)
	w = doJSON(t, router, http.MethodPost, "/api/food-days/20700/entries", map[string]any{"food_id": f.ID})
	require.Equal(t, 200, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/food-days/20700", nil)
	require.Equal(t, 200, w.Code)
	resp = response.APIResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp.Meta["has_entries"])
}

func TestWorkoutFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/exercises", map[string]any{"name": "Press banca"})
	require.Equal(t, 200, w.Code)
	var ex internal.WorkoutExercise
	decodeData(t, w, &ex)

	w = doJSON(t, router, http.MethodPut, "/api/routine/1", map[string]any{
		"exercises": []map[string]any{{"exercise_id": ex.ID, "default_sets": 2}},
	})
	require.Equal(t, 200, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/sessions", map[string]any{"weekday": 1, "date_epoch_day": 20700})
	require.Equal(t, 200, w.Code)
	var sess internal.WorkoutSession
	decodeData(t, w, &sess)
	assert.Equal(t, internal.SessionInProgress, sess.Status)

	// Removing down to the last set is refused.
	w = doJSON(t, router, http.MethodDelete, "/api/sessions/"+sess.ID+"/sets", map[string]any{"exercise_id": ex.ID})
	require.Equal(t, 200, w.Code)
	w = doJSON(t, router, http.MethodDelete, "/api/sessions/"+sess.ID+"/sets", map[string]any{"exercise_id": ex.ID})
	assert.Equal(t, 409, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/sessions/"+sess.ID+"/close", nil)
	require.Equal(t, 200, w.Code)
	var closed internal.WorkoutSession
	decodeData(t, w, &closed)
	assert.Equal(t, internal.SessionCompleted, closed.Status)
}

func TestDashboardEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, 200, w.Code)
	var s service.BodyCompositionSummary
	decodeData(t, w, &s)
	// A blank profile yields an all-nil summary, never an error.
	assert.Nil(t, s.BodyFatPct)
	assert.Nil(t, s.TDEE)
}
