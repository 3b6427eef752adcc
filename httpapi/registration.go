package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/apierr"
)

type checkRegistrationCodeResponse struct {
	AccountKind account.Type `json:"account_kind"`
}

// handleRegistrationCode implements GET /api/registration_code/{kind}
// (§8): admin-only, mints a UUID for the requested account kind, stores
// it, and returns it as plain text. The handler answers 201 even though
// the verb is GET — an existing client contract this implementation
// preserves rather than redesigns.
func (s *Server) handleRegistrationCode(w http.ResponseWriter, r *http.Request) {
	if _, err := s.authz.RequireAdmin(r); err != nil {
		writeError(w, err)
		return
	}

	kind, ok := accountKindFromPath(mux.Vars(r)["kind"])
	if !ok {
		writeError(w, apierr.BadRequest("kind must be \"admin\" or \"user\""))
		return
	}

	code := uuid.New()
	writer, release := s.db.RegistrationCodesWriter()
	writer.Add(account.RegistrationCode{Code: code, AccountKind: kind})
	release()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(code.String()))
}

// handleCheckRegistrationCode implements GET /api/check_registration_code/{code}
// (§8): 200 with the code's account_kind if valid, 404 otherwise.
func (s *Server) handleCheckRegistrationCode(w http.ResponseWriter, r *http.Request) {
	code, err := uuid.Parse(mux.Vars(r)["code"])
	if err != nil {
		writeError(w, apierr.BadRequest("registration code is not a valid uuid"))
		return
	}

	view, release := s.db.RegistrationCodesReader()
	rc, found := view.Find(code)
	release()
	if !found {
		writeError(w, apierr.NotFound("registration code not found"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(checkRegistrationCodeResponse{AccountKind: rc.AccountKind})
	_, _ = w.Write(b)
}

func accountKindFromPath(kind string) (account.Type, bool) {
	switch strings.ToLower(kind) {
	case "admin":
		return account.Admin, true
	case "user":
		return account.User, true
	default:
		return "", false
	}
}
