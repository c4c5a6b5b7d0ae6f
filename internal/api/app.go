package api

import (
	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/config"
	"github.com/GBZC2708/procard-api/internal/service"
	"github.com/GBZC2708/procard-api/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Config() *config.Config
	Store() storage.Store
	Dashboard() *service.DashboardCache
}
