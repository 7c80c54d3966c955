package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/TWRT/wmx-migrator/internal/repository"
)

type RunHandler struct {
	runRepo  *repository.RunRepository
	itemRepo *repository.ItemResultRepository
}

func NewRunHandler(runRepo *repository.RunRepository, itemRepo *repository.ItemResultRepository) *RunHandler {
	return &RunHandler{
		runRepo:  runRepo,
		itemRepo: itemRepo,
	}
}

func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runRepo.GetRuns()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "list runs: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"runs": runs,
	})
}

func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	run, err := h.runRepo.GetRun(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "get run: " + err.Error(),
		})
		return
	}

	items, err := h.itemRepo.GetByRunID(id)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "get run items: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"run":   run,
		"items": items,
	})
}
