package handlers

import (
	"net/http"

	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type LocationHandler struct {
	locationService LocationServiceInterface
}

func NewLocationHandler(locationService LocationServiceInterface) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// Create stores a location and saves it to the caller's list.
func (h *LocationHandler) Create(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateLocationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	loc, err := h.locationService.Create(c.Request.Context(), userID, req.Name, req.Address, req.Latitude, req.Longitude)
	if err != nil {
		writeError(c, err, "failed to create location")
		return
	}

	_ = c.JSON(http.StatusCreated, toLocationResponse(loc))
}

func (h *LocationHandler) ListSaved(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	locations, err := h.locationService.ListSaved(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to list locations")
		return
	}

	resp := make([]dto.LocationResponse, len(locations))
	for i := range locations {
		resp[i] = toLocationResponse(&locations[i])
	}
	_ = c.JSON(http.StatusOK, resp)
}

func (h *LocationHandler) Unsave(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	locationID, ok := uuidParam(c, "id", "location")
	if !ok {
		return
	}

	if err := h.locationService.Unsave(c.Request.Context(), userID, locationID); err != nil {
		writeError(c, err, "failed to remove location")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "location removed"})
}
