package v1

import (
	"net/http"

	"geozone-backend/internal/domain"
	"geozone-backend/internal/usecase"
	"geozone-backend/pkg/utils"
)

type AdminZoneHandler struct {
	zoneUC   *usecase.ZoneUsecase
	resolver *usecase.SpatialResolver
}

func NewAdminZoneHandler(zoneUC *usecase.ZoneUsecase, resolver *usecase.SpatialResolver) *AdminZoneHandler {
	return &AdminZoneHandler{zoneUC: zoneUC, resolver: resolver}
}

func (h *AdminZoneHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeZonePayload(w, r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	req, err := payload.createRequest()
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	zone, err := h.zoneUC.CreateZone(r.Context(), req)
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, domain.Response{
		Success: true,
		Message: "Zone created successfully",
		Data:    zone,
	})
}

func (h *AdminZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := utils.ParseInt(q.Get("page"), 1)
	limit := utils.ParseInt(q.Get("limit"), 0)

	zones, pagination, err := h.zoneUC.ListZones(r.Context(), page, limit, q.Get("q"))
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    zones,
		Meta:    &pagination,
	})
}

func (h *AdminZoneHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	zone, err := h.zoneUC.GetZone(r.Context(), id)
	if err != nil {
		writeZoneError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: zone})
}

func (h *AdminZoneHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	payload, err := decodeZonePayload(w, r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if payload.isEmpty() {
		utils.WriteError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	req, err := payload.updateRequest()
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	zone, err := h.zoneUC.UpdateZone(r.Context(), id, req)
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Zone updated successfully",
		Data:    zone,
	})
}

func (h *AdminZoneHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	zone, err := h.zoneUC.DeleteZone(r.Context(), id)
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Zone deleted successfully",
		Data:    zone,
	})
}

// LookupZones lists every active zone containing the point, deliverable or
// not.
func (h *AdminZoneHandler) LookupZones(w http.ResponseWriter, r *http.Request) {
	pt, err := parseLocation(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	zones, err := h.resolver.FindZonesContainingPoint(r.Context(), pt)
	if err != nil {
		writeZoneError(w, r, err)
		return
	}
	if zones == nil {
		zones = []domain.Zone{}
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: zones})
}

func (h *AdminZoneHandler) ListZonePolygons(w http.ResponseWriter, r *http.Request) {
	polygons, err := h.zoneUC.ListZonePolygons(r.Context())
	if err != nil {
		writeZoneError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: polygons})
}

func (h *AdminZoneHandler) PublishZoneMap(w http.ResponseWriter, r *http.Request) {
	url, err := h.zoneUC.PublishZoneMap(r.Context())
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Zone map published",
		Data:    map[string]string{"url": url},
	})
}
