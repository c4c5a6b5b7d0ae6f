package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/service"
)

func ListExercises(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		list, err := app.Store().ListExercises(c.Request.Context(), user)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to list exercises")
			return
		}
		HandleSuccess(c, app.Logger(), list, map[string]any{"count": len(list)})
	}
}

func PostExercise(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		var body service.ExerciseRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateExerciseRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		e, err := service.CreateExercise(c.Request.Context(), app.Store(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to create exercise")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func weekdayParam(c *gin.Context) (int, error) {
	wd, err := strconv.Atoi(c.Param("weekday"))
	if err != nil || wd < 0 || wd > 6 {
		return 0, errors.New("'weekday' must be 0..6")
	}
	return wd, nil
}

func GetRoutineDay(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		wd, err := weekdayParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid weekday")
			return
		}

		r, err := app.Store().GetRoutineDay(c.Request.Context(), user, wd)
		if err != nil {
			if errors.Is(err, internal.ErrNotFound) {
				HandleSuccess(c, app.Logger(), &internal.RoutineDay{Username: user, Weekday: wd}, nil)
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to load routine")
			return
		}
		HandleSuccess(c, app.Logger(), r, nil)
	}
}

func PutRoutineDay(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		wd, err := weekdayParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid weekday")
			return
		}

		var body service.RoutineDayRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateRoutineDayRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		r, err := service.SaveRoutineDay(c.Request.Context(), app.Store(), user, wd, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save routine")
			return
		}
		HandleSuccess(c, app.Logger(), r, nil)
	}
}

type sessionRequest struct {
	Weekday      int   `json:"weekday"`
	DateEpochDay int64 `json:"date_epoch_day"`
	ForceNew     bool  `json:"force_new"`
}

func PostSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		var body sessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if body.Weekday < 0 || body.Weekday > 6 {
			HandleError(c, app.Logger(), errors.New("'weekday' must be 0..6"), 400, "Validation failed")
			return
		}

		sess, err := service.CreateOrResumeSession(c.Request.Context(), app.Store(), user,
			body.Weekday, body.DateEpochDay, time.Now().UnixMilli(), body.ForceNew)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to start session")
			return
		}
		HandleSuccess(c, app.Logger(), sess, nil)
	}
}

func GetSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess, err := app.Store().GetSession(ctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, internal.ErrNotFound) {
				HandleError(c, app.Logger(), err, 404, "Session not found")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to load session")
			return
		}
		sets, err := app.Store().ListSetEntries(ctx, sess.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load sets")
			return
		}
		HandleSuccess(c, app.Logger(), sess, map[string]any{"sets": sets})
	}
}

type addSetRequest struct {
	ExerciseID string `json:"exercise_id"`
}

func PostSet(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body addSetRequest
		if err := c.ShouldBindJSON(&body); err != nil || body.ExerciseID == "" {
			HandleError(c, app.Logger(), errors.New("'exercise_id' is required"), 400, "Invalid JSON")
			return
		}

		e, err := service.AddSet(c.Request.Context(), app.Store(), c.Param("id"), body.ExerciseID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to add set")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func DeleteLastSet(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body addSetRequest
		if err := c.ShouldBindJSON(&body); err != nil || body.ExerciseID == "" {
			HandleError(c, app.Logger(), errors.New("'exercise_id' is required"), 400, "Invalid JSON")
			return
		}

		err := service.RemoveLastSet(c.Request.Context(), app.Store(), c.Param("id"), body.ExerciseID)
		if err != nil {
			if errors.Is(err, internal.ErrLastSet) {
				HandleError(c, app.Logger(), err, 409, "Cannot remove set")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to remove set")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"removed": true})
	}
}

func PatchSet(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.SetPatchRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateSetPatch(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		e, err := service.UpdateSetEntry(c.Request.Context(), app.Store(), c.Param("setId"), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update set")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func PostCloseSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := service.CloseSession(c.Request.Context(), app.Store(), c.Param("id"), time.Now().UnixMilli())
		if err != nil {
			if errors.Is(err, internal.ErrNotFound) {
				HandleError(c, app.Logger(), err, 404, "Session not found")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to close session")
			return
		}
		HandleSuccess(c, app.Logger(), sess, nil)
	}
}
