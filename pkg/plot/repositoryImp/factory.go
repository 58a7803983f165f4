package repositoryImp

import (
	"errors"

	"gorm.io/gorm"

	"garden/config"
	"garden/pkg/plot/repository"
)

// FromConfig picks the backend named by cfg.StoreBackend. db is only used by
// the sqlite backend.
func FromConfig(cfg config.AppConfig, db *gorm.DB) (repository.PlotRepository, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgREST:
		if cfg.RESTURL == "" || cfg.RESTAnonKey == "" {
			return nil, errors.New("postgrest backend needs REST_URL and REST_ANON_KEY")
		}
		return NewPostgREST(cfg.RESTURL, cfg.RESTAnonKey, nil), nil
	case config.BackendSQLite, "":
		if db == nil {
			return nil, errors.New("sqlite backend needs an open database")
		}
		return NewSQLite(db), nil
	}
	return nil, errors.New("unknown store backend " + cfg.StoreBackend)
}
