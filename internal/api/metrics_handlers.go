package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/service"
)

func GetDailyMetrics(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		m, err := service.GetOrCreateDailyMetrics(c.Request.Context(), app.Store(), user, day)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load metrics")
			return
		}
		HandleSuccess(c, app.Logger(), m, nil)
	}
}

// metricFieldRequest carries the one value a single-field save writes. The
// field name comes from the path; the value type depends on the field.
type metricFieldRequest struct {
	Number *float64 `json:"value"`
	Flag   *bool    `json:"done"`
	Stage  *string  `json:"stage"`
}

func PutMetricField(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		var body metricFieldRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		ctx := c.Request.Context()
		repo := app.Store()
		field := c.Param("field")

		num := func() (float64, bool) {
			if body.Number == nil {
				HandleError(c, app.Logger(), errors.New("'value' is required"), 400, "Validation failed")
				return 0, false
			}
			return *body.Number, true
		}

		var m *internal.DailyMetrics
		switch field {
		case "weight":
			v, ok := num()
			if !ok {
				return
			}
			m, err = service.SaveWeight(ctx, repo, user, day, v)
		case "steps":
			v, ok := num()
			if !ok {
				return
			}
			m, err = service.SaveSteps(ctx, repo, user, day, int(v))
		case "cardio":
			v, ok := num()
			if !ok {
				return
			}
			m, err = service.SaveCardio(ctx, repo, user, day, int(v))
		case "water":
			v, ok := num()
			if !ok {
				return
			}
			m, err = service.SaveWater(ctx, repo, user, day, int(v))
		case "salt":
			v, ok := num()
			if !ok {
				return
			}
			m, err = service.SaveSalt(ctx, repo, user, day, int(v))
		case "sleep":
			v, ok := num()
			if !ok {
				return
			}
			m, err = service.SaveSleep(ctx, repo, user, day, int(v))
		case "training":
			if body.Flag == nil {
				HandleError(c, app.Logger(), errors.New("'done' is required"), 400, "Validation failed")
				return
			}
			m, err = service.SaveTrainingDone(ctx, repo, user, day, *body.Flag)
		case "stage":
			if body.Stage == nil || !internal.IsValidStage(*body.Stage) {
				HandleError(c, app.Logger(), errors.New("'stage' must be a known stage"), 400, "Validation failed")
				return
			}
			m, err = service.SaveStage(ctx, repo, user, day, internal.Stage(*body.Stage))
		default:
			HandleError(c, app.Logger(), errors.New("unknown field '"+field+"'"), 400, "Validation failed")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save "+field)
			return
		}
		HandleSuccess(c, app.Logger(), m, nil)
	}
}

func GetMetricsRange(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		from, err1 := strconv.ParseInt(c.Query("from"), 10, 64)
		to, err2 := strconv.ParseInt(c.Query("to"), 10, 64)
		if err1 != nil || err2 != nil || from > to {
			HandleError(c, app.Logger(), errors.New("'from' and 'to' must be epoch days with from <= to"), 400, "Invalid range")
			return
		}

		list, err := app.Store().ListDailyMetricsRange(c.Request.Context(), user, from, to)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to list metrics")
			return
		}
		HandleSuccess(c, app.Logger(), list, map[string]any{"count": len(list)})
	}
}

func DeleteMetricsHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		if err := service.PurgeMetricsHistory(c.Request.Context(), app.Store(), user); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to purge metrics")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"purged": true})
	}
}
