package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// HealthText is the body of GET /.
const HealthText = "HobbyByRox Sync Server is running."

// SyncHandler commits admin payloads to the content store.
type SyncHandler struct {
	Publisher Publisher
}

// savePayload accepts the current keys and their legacy aliases.
type savePayload struct {
	Products         model.Catalog       `json:"products"`
	HeroSlides       []string            `json:"heroSlides"`
	HeroImages       []string            `json:"heroImages"`
	InspirationItems []model.GalleryItem `json:"inspirationItems"`
	Inspiration      []model.GalleryItem `json:"inspiration"`
}

type saveResponse struct {
	OK     bool   `json:"ok"`
	Commit string `json:"commit"`
}

// Health handles GET /.
func (h *SyncHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(HealthText))
}

// SaveProducts handles POST /api/save-products.
func (h *SyncHandler) SaveProducts(w http.ResponseWriter, r *http.Request) {
	var req savePayload
	if err := decodeJSON(r, &req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, http.StatusRequestEntityTooLarge, "Payload too large.")
			return
		}
		jsonFailure(w, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	banners := req.HeroSlides
	if banners == nil {
		banners = req.HeroImages
	}
	gallery := req.InspirationItems
	if gallery == nil {
		gallery = req.Inspiration
	}
	if req.Products == nil || banners == nil || gallery == nil {
		jsonError(w, http.StatusBadRequest, "Missing required data fields.")
		return
	}

	state := model.State{Products: req.Products, HeroSlides: banners, InspirationItems: gallery}
	rev, err := h.Publisher.Publish(r.Context(), state.Documents().Durable())
	if err != nil {
		slog.Error("sync failed", "error", err)
		jsonFailure(w, http.StatusInternalServerError, "Failed to sync with GitHub repository.", err)
		return
	}

	slog.Info("synced data files", "commit", rev.Short(), "products", len(req.Products))
	jsonResponse(w, http.StatusOK, saveResponse{OK: true, Commit: string(rev)})
}
