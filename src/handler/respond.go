package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// uintURLParam parses a chi URL parameter as an unsigned integer id.
func uintURLParam(r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// urlSymbol reads the {symbol} route parameter.
func urlSymbol(r *http.Request) string {
	return chi.URLParam(r, "symbol")
}

// maxPageSize bounds client-supplied page sizes so a single request
// cannot ask for an unbounded LIMIT.
const maxPageSize = 500

// pagination reads page/pageSize query params and returns limit and
// offset. Page numbering starts at 1; page sizes are clamped to
// maxPageSize.
func pagination(r *http.Request, defaultSize int) (limit int, offset int, ok bool) {
	page := 1
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		parsed, err := strconv.Atoi(pageParam)
		if err != nil || parsed <= 0 {
			return 0, 0, false
		}
		page = parsed
	}

	pageSize := defaultSize
	if sizeParam := r.URL.Query().Get("pageSize"); sizeParam != "" {
		parsed, err := strconv.Atoi(sizeParam)
		if err != nil || parsed <= 0 {
			return 0, 0, false
		}
		if parsed > maxPageSize {
			parsed = maxPageSize
		}
		pageSize = parsed
	}

	return pageSize, (page - 1) * pageSize, true
}
