package storage

import (
	"fmt"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/config"
)

// NewStore builds the backend selected by config.
func NewStore(cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "file":
		return NewFileStorage(cfg.DataFile, logger)
	case "postgres":
		return NewPostgresStorage(cfg.DBDSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.DBType)
	}
}
