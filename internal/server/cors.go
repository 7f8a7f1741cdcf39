package server

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/lumpybrain/DedMult/internal/config"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

func newCORS(cfg config.ServerConfig) *cors.Cors {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"component":       "cors",
		"allowed_origins": origins,
		"debug_mode":      cfg.CORSDebug,
	}).Debug("CORS middleware configured")

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		// С "*" браузер не примет ответ с учётными данными.
		AllowCredentials: !wildcard,
		Debug:            cfg.CORSDebug,
	})
}
