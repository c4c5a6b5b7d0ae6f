package api

import "github.com/gin-gonic/gin"

// NewRouter wires every route under /api. The caller owns the App.
func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(UserMiddleware(app.Config()))

	g := r.Group("/api")

	g.GET("/profile", GetProfile(app))
	g.PATCH("/profile", PatchProfile(app))

	g.GET("/metrics", GetMetricsRange(app))
	g.GET("/metrics/:date", GetDailyMetrics(app))
	g.PUT("/metrics/:date/:field", PutMetricField(app))
	g.DELETE("/metrics", DeleteMetricsHistory(app))

	g.GET("/foods", ListFoods(app))
	g.POST("/foods", PostFood(app))
	g.PATCH("/foods/:id", PatchFood(app))
	g.DELETE("/foods/:id", DeleteFood(app))
	g.GET("/food-days/:date", GetFoodDay(app))
	g.POST("/food-days/:date/entries", PostFoodEntry(app))
	g.PUT("/food-entries/:id", PutFoodEntryAmount(app))
	g.DELETE("/food-entries/:id", DeleteFoodEntry(app))
	g.GET("/food-days/:date/weekly", GetWeeklyCalories(app))
	g.POST("/food-days/:date/copy-yesterday", PostCopyYesterday(app))

	g.GET("/supplements", ListSupplements(app))
	g.POST("/supplements", PostSupplement(app))
	g.PUT("/supplements/:id", PutSupplement(app))
	g.DELETE("/supplements/:id", DeleteSupplement(app))
	g.GET("/supplement-days/:date", GetSupplementPlan(app))
	g.PUT("/supplement-days/:date/entries", PutSupplementPlanEntry(app))
	g.PATCH("/supplement-days/:date/entries", PatchSupplementPlanAmount(app))
	g.DELETE("/supplement-days/:date/entries", DeleteSupplementPlanEntry(app))

	g.GET("/exercises", ListExercises(app))
	g.POST("/exercises", PostExercise(app))
	g.GET("/routine/:weekday", GetRoutineDay(app))
	g.PUT("/routine/:weekday", PutRoutineDay(app))
	g.POST("/sessions", PostSession(app))
	g.GET("/sessions/:id", GetSession(app))
	g.POST("/sessions/:id/sets", PostSet(app))
	g.DELETE("/sessions/:id/sets", DeleteLastSet(app))
	g.PATCH("/sessions/:id/sets/:setId", PatchSet(app))
	g.POST("/sessions/:id/close", PostCloseSession(app))

	g.GET("/dashboard", GetDashboard(app))

	return r
}
