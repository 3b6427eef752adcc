package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/apierr"
	"github.com/aqasend/aqasend/cookie"
	mp "github.com/aqasend/aqasend/multipart"
)

const smallFormMaxBytes = 5 * 1024 // login/create_account bodies never carry a file

// handleLogin implements POST /api/login (§8): a multipart body carrying
// username and password fields, verified against the KDF-stored hash.
// Unknown username and wrong password both produce the same 401, the
// uniform login failure the original implementation uses to avoid
// leaking which usernames exist.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	fields, apiErr := readSmallMultipartFields(r, "username", "password")
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	username, password := fields["username"], fields["password"]
	if username == "" || password == "" {
		writeError(w, apierr.BadRequest("username and password are both required"))
		return
	}

	uuidsView, release := s.db.AccountUUIDsReader()
	accountID, ok := uuidsView.Get(username)
	release()
	if !ok {
		writeError(w, apierr.Auth("invalid username or password"))
		return
	}

	acc, ok := s.db.GetAccount(accountID)
	if !ok {
		writeError(w, apierr.Auth("invalid username or password"))
		return
	}

	if err := account.Verify(acc.PasswordHash, password); err != nil {
		writeError(w, apierr.Auth("invalid username or password"))
		return
	}

	sessionID := uuid.New()
	s.sessions.Insert(sessionID, acc.UUID)

	sameSiteNone := cookie.SameSiteNone
	sc := cookie.Cookie{
		Name: "session", Value: sessionID.String(),
		Secure: true, HTTPOnly: true, SameSite: &sameSiteNone,
	}
	w.Header().Set("Set-Cookie", sc.Render())
	w.WriteHeader(http.StatusCreated)
}

// readSmallMultipartFields drains a small, boundedly-sized multipart/
// form-data body and returns the named text fields. Used by the two
// handlers (login, create_account) whose bodies never carry a file part.
func readSmallMultipartFields(r *http.Request, wanted ...string) (map[string]string, *apierr.Error) {
	boundary, apiErr := boundaryFromContentType(r.Header.Get("Content-Type"))
	if apiErr != nil {
		return nil, apiErr
	}

	reader := mp.New(boundary, smallFormMaxBytes)
	out := make(map[string]string, len(wanted))
	buf := make([]byte, uploadReadChunk)
	for {
		part, apiErr := nextPart(r.Body, reader, buf)
		if apiErr != nil {
			return nil, apiErr
		}
		if part == nil {
			break
		}

		var value []byte
		for {
			chunk, done, err := reader.ReadData()
			if err != nil {
				return nil, multipartToAPIErr(err)
			}
			value = append(value, chunk...)
			if done {
				break
			}
			if chunk == nil {
				more, apiErr := feedMore(r.Body, reader, buf)
				if apiErr != nil {
					return nil, apiErr
				}
				if !more {
					return nil, apierr.BadRequest("multipart body ended mid-part")
				}
			}
		}
		out[part.Name] = string(value)
	}
	return out, nil
}
