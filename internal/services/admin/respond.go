package admin

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/requestctx"
)

// langParam selects the response language; Accept-Language is the fallback.
const langParam = "lang"

// errorBody is the localized JSON error envelope of the admin surface.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders the error with a message in the caller's language.
// Internal details never leave the logs.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Printf("admin request failed path=%s code=%s request_id=%s err=%v",
			r.URL.Path, code, requestctx.RequestIDFromContext(r.Context()), err)
	}

	locale := s.resolveLocale(r)
	s.writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(code),
		Message: s.bundle.Printer(locale).Sprintf("error." + string(code)),
	}})
}

// resolveLocale picks the response locale from the lang query parameter or
// the Accept-Language header, defaulting to the base locale.
func (s *Server) resolveLocale(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get(langParam)); lang != "" && s.bundle.HasLocale(lang) {
		return lang
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			for _, tag := range tags {
				if s.bundle.HasLocale(tag.String()) {
					return tag.String()
				}
			}
		}
	}
	return ""
}
