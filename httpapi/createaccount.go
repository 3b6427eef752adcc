package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/apierr"
	"github.com/aqasend/aqasend/cookie"
)

type createAccountResponse struct {
	UUID uuid.UUID `json:"uuid"`
}

// handleCreateAccount implements POST /api/create_account (§8): a
// multipart body of username, password, and registration_code. Unlike
// login's cookie, the one set here carries no SameSite attribute.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	fields, apiErr := readSmallMultipartFields(r, "username", "password", "registration_code")
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	username, password, codeRaw := fields["username"], fields["password"], fields["registration_code"]
	if username == "" || password == "" || codeRaw == "" {
		writeError(w, apierr.BadRequest("username, password, and registration_code are all required"))
		return
	}

	code, err := uuid.Parse(codeRaw)
	if err != nil {
		writeError(w, apierr.BadRequest("registration_code is not a valid uuid"))
		return
	}

	regView, release := s.db.RegistrationCodesReader()
	rc, found := regView.Find(code)
	release()
	if !found {
		writeError(w, apierr.BadRequest("unknown registration code"))
		return
	}

	uuidsView, releaseUUIDs := s.db.AccountUUIDsReader()
	_, taken := uuidsView.Get(username)
	releaseUUIDs()
	if taken {
		writeError(w, apierr.BadRequest("username already taken"))
		return
	}

	hash, err := account.Hash(password)
	if err != nil {
		writeError(w, apierr.Internal(err))
		return
	}

	id := uuid.New()
	acc := account.Account{UUID: id, Username: username, PasswordHash: hash, AccType: rc.AccountKind}
	if err := s.db.AddAccount(id, acc); err != nil {
		writeError(w, apierr.BadRequest("username already taken"))
		return
	}
	if err := s.Save(s.cfg.Get().Root); err != nil {
		s.log.Error("snapshot save after add_account failed", zap.Error(err))
	}

	sessionID := uuid.New()
	s.sessions.Insert(sessionID, id)
	sc := cookie.Cookie{Name: "session", Value: sessionID.String(), Secure: true, HTTPOnly: true}
	w.Header().Set("Set-Cookie", sc.Render())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	b, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(createAccountResponse{UUID: id})
	_, _ = w.Write(b)
}
