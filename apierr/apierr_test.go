package apierr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aqasend/aqasend/apierr"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *apierr.Error
		want int
	}{
		{apierr.BadRequest("bad"), http.StatusBadRequest},
		{apierr.Auth("nope"), http.StatusUnauthorized},
		{apierr.Forbidden("nope"), http.StatusForbidden},
		{apierr.NotFound("gone"), http.StatusNotFound},
		{apierr.PayloadTooLarge("too big"), http.StatusRequestEntityTooLarge},
		{apierr.Internal(errors.New("boom")), http.StatusInternalServerError},
		{apierr.Storage(errors.New("disk")), http.StatusInternalServerError},
		{apierr.Transport(errors.New("conn")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := c.err.Status(); got != c.want {
			t.Errorf("%v: Status() = %d, want %d", c.err.Kind, got, c.want)
		}
	}
}

func TestPresentableMessagesSurviveWriteResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.WriteResponse(rec, apierr.BadRequest("invalid aqa-lifetime header value"), apierr.ContentTypePlainText)
	if !strings.Contains(rec.Body.String(), "invalid aqa-lifetime header value") {
		t.Fatalf("expected presentable message in body, got %q", rec.Body.String())
	}
}

func TestInternalErrorsNeverLeakTheirCause(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.WriteResponse(rec, apierr.Internal(errors.New("leaked secret detail")), apierr.ContentTypePlainText)
	if strings.Contains(rec.Body.String(), "leaked secret detail") {
		t.Fatalf("internal error cause leaked into response body: %q", rec.Body.String())
	}
}

func TestJSONContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.WriteResponse(rec, apierr.NotFound("no such file"), apierr.ContentTypeJSON)

	var body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body.Status != http.StatusNotFound || body.Message != "no such file" {
		t.Fatalf("unexpected JSON body: %+v", body)
	}
}
