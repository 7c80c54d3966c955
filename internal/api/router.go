package api

import (
	"database/sql"
	"net/http"

	"github.com/TWRT/wmx-migrator/internal/api/handlers"
	"github.com/TWRT/wmx-migrator/internal/repository"
)

// SetupRouter exposes the run ledger read-only, for checking past export and
// import runs without opening the sqlite file by hand.
func SetupRouter(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()

	runRepo := repository.NewRunRepository(db)
	itemRepo := repository.NewItemResultRepository(db)

	runHandler := handlers.NewRunHandler(runRepo, itemRepo)

	mux.HandleFunc("GET /runs", runHandler.ListRuns)
	mux.HandleFunc("GET /runs/{id}", runHandler.GetRun)

	return mux
}
