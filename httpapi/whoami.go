package httpapi

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/apierr"
)

type whoamiResponse struct {
	Username string      `json:"username"`
	AccType  account.Type `json:"acc_type"`
}

// handleWhoami implements GET /api/whoami (§8): 200 with the caller's
// identity when a session cookie resolves, 401 otherwise.
func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	acc, loggedIn, err := s.authz.CurrentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !loggedIn {
		writeError(w, apierr.Auth("not logged in"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(whoamiResponse{
		Username: acc.Username,
		AccType:  acc.AccType,
	})
	_, _ = w.Write(b)
}
