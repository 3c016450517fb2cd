package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dianaantanyan/combinations-api/internal/combination"
	"github.com/dianaantanyan/combinations-api/internal/http/middleware"
	"github.com/dianaantanyan/combinations-api/internal/services"
)

// GenerateRequest is the JSON payload for POST /generate.
type GenerateRequest struct {
	// Items holds one size per group; group letters are assigned by position.
	Items []int `json:"items" example:"1,2,1"`
	// Length is the number of distinct groups in every combination.
	Length int `json:"length" example:"2"`
}

// GenerateResponse is the body returned by POST /generate.
type GenerateResponse struct {
	ID          uint       `json:"id" example:"17"`
	Combination [][]string `json:"combination"`
}

// Validation messages returned in ErrorResponse.Details.
const (
	msgBodyRequired     = "Request body is required"
	msgItemsNotArray    = "Items must be an array"
	msgItemsEmpty       = "Items array cannot be empty"
	msgItemsTooMany     = "Items array cannot exceed 26 elements"
	msgItemsNotPositive = "All items must be positive integers"
	msgLengthInvalid    = "Length must be a positive integer"
	msgLengthTooLarge   = "Length cannot exceed the number of item types"
)

// Generate godoc
// @ID          generate
// @Summary     Generate combinations
// @Description Derives labeled items from group sizes, returns every combination of `length` distinct groups, and stores the request, result and per-combination hashes atomically.
// @Description Supports safe retries via the Idempotency-Key header (same key and body → same result).
// @Tags        Combinations
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                    false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.GenerateRequest  true  "Group sizes and combination length"
//
// @Success     200  {object}  handlers.GenerateResponse
// @Header      200  {string}  Idempotency-Replayed "true when served from a stored result"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid request"
// @Failure     409  {object}  handlers.ErrorResponse "Idempotency-Key reused with a different body"
// @Failure     413  {object}  handlers.ErrorResponse "Body too large"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse "Database operation failed"
// @Failure     503  {object}  handlers.ErrorResponse "No database capacity; retry later"
// @Router      /generate [post]
func (h *Handlers) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read request body")
		return
	}

	req, details, err := parseGenerateRequest(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed JSON body")
		return
	}
	if len(details) > 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request", details...)
		return
	}

	caller := c.ClientIP()
	lg := middleware.LoggerFrom(c)

	key, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey {
		prev, err := h.svc.Replay(ctx, caller, key, req.Items, req.Length)
		switch {
		case errors.Is(err, services.ErrIdempotencyConflict):
			failService(c, err)
			return
		case err != nil:
			// Lookup trouble should not block a fresh request.
			lg.Warn().Err(err).Msg("idempotency replay lookup failed")
		case prev != nil:
			c.Header(middleware.HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusOK, GenerateResponse{ID: prev.ID, Combination: prev.Combination})
			return
		}
	}

	res, err := h.svc.ProcessRequest(ctx, req.Items, req.Length, caller)
	if err != nil {
		failService(c, err)
		return
	}

	if hasKey {
		if err := h.svc.Remember(ctx, caller, key, req.Items, req.Length, res.ID); err != nil {
			lg.Warn().Err(err).Uint("response_id", res.ID).Msg("could not store idempotency key")
		}
	}

	ok(c, http.StatusOK, GenerateResponse{ID: res.ID, Combination: res.Combination})
}

// parseGenerateRequest decodes and validates the body, collecting every
// validation failure rather than stopping at the first. A non-nil error
// means the body was not JSON at all.
//
// Numbers are accepted when they are integral, so 2 and 2.0 are the same.
func parseGenerateRequest(raw []byte) (GenerateRequest, []string, error) {
	var req GenerateRequest
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return req, []string{msgBodyRequired}, nil
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return req, []string{msgBodyRequired}, nil
		}
		return req, nil, err
	}

	var details []string
	var rawItems []json.RawMessage
	if err := json.Unmarshal(body["items"], &rawItems); err != nil || rawItems == nil {
		details = append(details, msgItemsNotArray)
	} else {
		switch {
		case len(rawItems) == 0:
			details = append(details, msgItemsEmpty)
		case len(rawItems) > combination.MaxGroups:
			details = append(details, msgItemsTooMany)
		default:
			req.Items = make([]int, len(rawItems))
			for i, v := range rawItems {
				n, ok := positiveInt(v)
				if !ok {
					details = append(details, msgItemsNotPositive)
					req.Items = nil
					break
				}
				req.Items[i] = n
			}
		}
	}

	length, lengthOK := positiveInt(body["length"])
	switch {
	case !lengthOK:
		details = append(details, msgLengthInvalid)
	case rawItems != nil && length > len(rawItems):
		details = append(details, msgLengthTooLarge)
	}
	req.Length = length
	return req, details, nil
}

// positiveInt reports whether v is a JSON number holding a positive integer
// that fits in an int.
func positiveInt(v json.RawMessage) (int, bool) {
	var f float64
	if len(v) == 0 || json.Unmarshal(v, &f) != nil {
		return 0, false
	}
	if f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
