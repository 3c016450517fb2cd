package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dianaantanyan/combinations-api/internal/domain"
	"github.com/dianaantanyan/combinations-api/internal/utils"
)

// ResponseRecord is the stored request/result cycle returned by
// GET /responses/{id}.
type ResponseRecord struct {
	ID               uint                  `json:"id" example:"17"`
	Request          domain.RequestPayload `json:"request"`
	Result           domain.ResultPayload  `json:"result"`
	ProcessingTimeMs float64               `json:"processing_time_ms" example:"0.42"`
	CallerAddress    string                `json:"caller_address" example:"203.0.113.7"`
	CreatedAt        time.Time             `json:"created_at"`
	CombinationCount int64                 `json:"combination_count" example:"4"`
}

// CombinationRow is one stored combination with its content hash.
type CombinationRow struct {
	ID          uint      `json:"id"`
	Combination []string  `json:"combination"`
	Hash        string    `json:"hash" example:"e3e4bf5cb42e6414104fec3b99fb9e8acfa7f9359b009dbc1bd335803c3ca984"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListCombinationsResponse contains a page of combination rows.
type ListCombinationsResponse struct {
	ResponseID   uint             `json:"response_id"`
	Combinations []CombinationRow `json:"combinations"`
	Pagination   Pagination       `json:"pagination"`
}

// GetResponse godoc
// @ID          getResponse
// @Summary     Get a stored response
// @Description Returns the stored request, full result set, timing and caller for a response id. Responses are immutable, so a weak ETag is always sent.
// @Tags        Responses
// @Produce     json
//
// @Param       id             path    int     true  "Response ID"  minimum(1)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ResponseRecord
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown id"
// @Failure     500  {object}  handlers.ErrorResponse "Database operation failed"
// @Router      /responses/{id} [get]
func (h *Handlers) GetResponse(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}

	r, count, err := h.svc.GetResponse(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	if notModified(c, fmt.Sprintf(`W/"response:%d:%d"`, id, count)) {
		return
	}
	ok(c, http.StatusOK, ResponseRecord{
		ID:               r.ID,
		Request:          r.RequestJSON.Data(),
		Result:           r.ResponseJSON.Data(),
		ProcessingTimeMs: r.ProcessingTimeMs,
		CallerAddress:    r.CallerAddress,
		CreatedAt:        r.CreatedAt,
		CombinationCount: count,
	})
}

// ListCombinations godoc
// @ID          listCombinations
// @Summary     List stored combinations of a response
// @Description Returns the combination rows of a response with their order-independent SHA-256 hashes, in generation order.
// @Tags        Responses
// @Produce     json
//
// @Param       id             path    int     true  "Response ID"     minimum(1)
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Rows per page"   minimum(1) maximum(500) default(50)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ListCombinationsResponse
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown id"
// @Failure     500  {object}  handlers.ErrorResponse "Database operation failed"
// @Router      /responses/{id}/combinations [get]
func (h *Handlers) ListCombinations(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}
	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"), 50, 500)

	rows, total, err := h.svc.ListCombinations(c.Request.Context(), id, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}

	if notModified(c, fmt.Sprintf(`W/"combinations:%d:%d:%d:%d"`, id, total, page, pageSize)) {
		return
	}

	out := make([]CombinationRow, len(rows))
	for i, r := range rows {
		out[i] = CombinationRow{
			ID:          r.ID,
			Combination: []string(r.CombinationJSON),
			Hash:        r.CombinationHash,
			CreatedAt:   r.CreatedAt,
		}
	}
	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListCombinationsResponse{
		ResponseID:   id,
		Combinations: out,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// notModified sets the ETag and answers 304 when the client already has it.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
