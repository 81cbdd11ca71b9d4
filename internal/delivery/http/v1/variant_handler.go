package v1

import (
	"net/http"

	"geozone-backend/internal/domain"
	"geozone-backend/internal/usecase"
	"geozone-backend/pkg/utils"
)

type VariantHandler struct {
	variantUC *usecase.VariantUsecase
}

func NewVariantHandler(variantUC *usecase.VariantUsecase) *VariantHandler {
	return &VariantHandler{variantUC: variantUC}
}

type variantMeta struct {
	domain.Pagination
	ZoneIDs []int64 `json:"zoneIds"`
}

// ListVariants returns the variants deliverable to the caller's location.
func (h *VariantHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	pt, err := parseLocation(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	q := r.URL.Query()
	categoryID, err := utils.ParseOptionalInt64(q.Get("category_id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid category_id")
		return
	}

	page, err := h.variantUC.ListDeliverableVariants(r.Context(), usecase.VariantQuery{
		Point:      pt,
		Page:       utils.ParseInt(q.Get("page"), 1),
		PageSize:   utils.ParseInt(q.Get("limit"), 0),
		CategoryID: categoryID,
	})
	if err != nil {
		writeZoneError(w, r, err)
		return
	}

	items := page.Items
	if items == nil {
		items = []domain.ProductVariant{}
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    items,
		Meta: &variantMeta{
			Pagination: page.Pagination,
			ZoneIDs:    page.ZoneIDs,
		},
	})
}
