package v1

import (
	"net/http"

	"geozone-backend/internal/domain"
	"geozone-backend/internal/usecase"
	"geozone-backend/pkg/utils"
)

// ZoneHandler serves the public, unauthenticated zone endpoints.
type ZoneHandler struct {
	resolver *usecase.SpatialResolver
	zoneUC   *usecase.ZoneUsecase
}

func NewZoneHandler(resolver *usecase.SpatialResolver, zoneUC *usecase.ZoneUsecase) *ZoneHandler {
	return &ZoneHandler{resolver: resolver, zoneUC: zoneUC}
}

// Resolve always answers 200; the status field carries the outcome.
func (h *ZoneHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	pt, err := parseLocation(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	match, err := h.resolver.Resolve(r.Context(), pt)
	if err != nil {
		writeZoneError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: match})
}

func (h *ZoneHandler) ZoneMap(w http.ResponseWriter, r *http.Request) {
	fc, err := h.zoneUC.ZoneMap(r.Context())
	if err != nil {
		writeZoneError(w, r, err)
		return
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
