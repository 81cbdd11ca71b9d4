package v1

import (
	"errors"
	"net/http"

	"geozone-backend/internal/domain"
	"geozone-backend/internal/usecase"
	"geozone-backend/pkg/geo"
	"geozone-backend/pkg/logger"
	"geozone-backend/pkg/utils"
)

// writeZoneError maps zone and location errors onto HTTP responses. Anything
// unrecognised is logged and reported as a 500 without internal detail.
func writeZoneError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation  *geo.ValidationError
		overlap     *domain.OverlapError
		serviceArea *domain.ServiceAreaError
	)

	switch {
	case errors.As(err, &validation):
		utils.WriteErrorCode(w, http.StatusBadRequest, "invalid_polygon", validation.Error())
	case errors.Is(err, domain.ErrInvalidZone):
		utils.WriteErrorCode(w, http.StatusBadRequest, "invalid_zone", err.Error())
	case errors.As(err, &overlap):
		utils.WriteErrorCode(w, http.StatusConflict, "zone_overlap", overlap.Error())
	case errors.Is(err, domain.ErrZoneNotFound):
		utils.WriteErrorCode(w, http.StatusNotFound, "zone_not_found", "Zone not found")
	case errors.As(err, &serviceArea):
		utils.WriteErrorCode(w, http.StatusUnprocessableEntity, serviceArea.Status, serviceArea.Error())
	case errors.Is(err, usecase.ErrMapPublishingDisabled):
		utils.WriteErrorCode(w, http.StatusServiceUnavailable, "storage_disabled", err.Error())
	default:
		logger.WithContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("Request failed")
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
