package utils

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"wayfare/globals"
)

func GetUUID() string {
	return uuid.New().String()
}

// GetUserIDFromRequest returns the authenticated user id, or "" for anonymous calls.
func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

// QueryLimit reads the "limit" query parameter, falling back to def and
// capping at max.
func QueryLimit(r *http.Request, def, max int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		return def
	}
	return min(limit, max)
}
