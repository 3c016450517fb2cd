package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ItemView is one catalog entry.
type ItemView struct {
	Label string `json:"label" example:"B2"`
	Group string `json:"group" example:"B"`
}

// ListItemsResponse is the body returned by GET /items.
type ListItemsResponse struct {
	Items []ItemView `json:"items"`
	Total int        `json:"total"`
}

// ListItems godoc
// @ID          listItems
// @Summary     Current item catalog
// @Description Returns the items derived by the most recent successful generate request, in derivation order. Each request replaces the catalog.
// @Tags        Combinations
// @Produce     json
// @Success     200  {object}  handlers.ListItemsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Database operation failed"
// @Router      /items [get]
func (h *Handlers) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	out := make([]ItemView, len(items))
	for i, it := range items {
		out[i] = ItemView{Label: it.Label, Group: it.GroupLetter}
	}
	ok(c, http.StatusOK, ListItemsResponse{Items: out, Total: len(out)})
}
