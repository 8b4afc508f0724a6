package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(Validation("bad")); got != KindValidation {
		t.Fatalf("got %s, want validation", got)
	}
	if got := KindOf(fmt.Errorf("wrap: %w", NotFound("x"))); got != KindNotFound {
		t.Fatalf("wrapped: got %s, want not_found", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Fatalf("plain: got %s, want internal", got)
	}
	if got := KindOf(nil); got != KindInternal {
		t.Fatalf("nil: got %s, want internal", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("v"), http.StatusBadRequest},
		{NotFound("n"), http.StatusNotFound},
		{Forbidden("f"), http.StatusForbidden},
		{Conflict("c"), http.StatusConflict},
		{errors.New("e"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("%v: status %d, want %d", tc.err, got, tc.want)
		}
	}
}
