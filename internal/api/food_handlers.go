package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/service"
)

func ListFoods(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		foods, err := app.Store().ListFoodItems(c.Request.Context(), user)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to list foods")
			return
		}
		HandleSuccess(c, app.Logger(), foods, map[string]any{"count": len(foods)})
	}
}

func PostFood(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		f, err := service.CreateBlankFood(c.Request.Context(), app.Store(), user)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to create food")
			return
		}
		HandleSuccess(c, app.Logger(), f, nil)
	}
}

func PatchFood(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.FoodPatchRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateFoodPatch(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		f, err := service.UpdateFood(c.Request.Context(), app.Store(), c.Param("id"), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update food")
			return
		}
		HandleSuccess(c, app.Logger(), f, nil)
	}
}

func DeleteFood(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.DeleteFood(c.Request.Context(), app.Store(), c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete food")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": true})
	}
}

type foodEntryRequest struct {
	FoodID string `json:"food_id"`
}

func PostFoodEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		var body foodEntryRequest
		if err := c.ShouldBindJSON(&body); err != nil || body.FoodID == "" {
			HandleError(c, app.Logger(), errors.New("'food_id' is required"), 400, "Invalid JSON")
			return
		}

		e, err := service.AddFoodEntry(c.Request.Context(), app.Store(), user, day, body.FoodID)
		if err != nil {
			if errors.Is(err, internal.ErrNotFound) {
				HandleError(c, app.Logger(), err, 404, "Food not found")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to add entry")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

type consumedAmountRequest struct {
	Amount float64 `json:"amount"`
}

func PutFoodEntryAmount(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body consumedAmountRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if body.Amount < 0 {
			HandleError(c, app.Logger(), errors.New("'amount' must be >= 0"), 400, "Validation failed")
			return
		}

		e, err := service.UpdateConsumedAmount(c.Request.Context(), app.Store(), c.Param("id"), body.Amount)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update entry")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func DeleteFoodEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.DeleteFoodEntry(c.Request.Context(), app.Store(), c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete entry")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": true})
	}
}

func GetFoodDay(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}
		ctx := c.Request.Context()

		entries, err := app.Store().ListFoodEntries(ctx, user, day)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to list entries")
			return
		}
		summary, err := service.DailyNutritionSummary(ctx, app.Store(), user, day)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to summarize")
			return
		}
		hasEntries, err := service.HasFoodEntries(ctx, app.Store(), user, day)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to check entries")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{
			"summary":     summary,
			"has_entries": hasEntries,
		})
	}
}

func GetWeeklyCalories(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		week, err := service.WeeklyCalories(c.Request.Context(), app.Store(), user, day)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to build weekly chart")
			return
		}
		HandleSuccess(c, app.Logger(), week, nil)
	}
}

func PostCopyYesterday(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		copied, err := service.CopyFromYesterday(c.Request.Context(), app.Store(), user, day)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to copy entries")
			return
		}
		HandleSuccess(c, app.Logger(), copied, map[string]any{"copied": len(copied)})
	}
}
