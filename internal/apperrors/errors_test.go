package apperrors

import (
	"errors"
	"net/http"
	"testing"
)

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(KindFetch, nil, "context"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"tagged error", New(KindNotFound, "missing"), KindNotFound},
		{"wrapped tagged error", Wrap(KindFetch, base, "fetch page"), KindFetch},
		{"double wrapped", Wrap(KindGeneration, Wrap(KindFetch, base, "inner"), "outer"), KindGeneration},
		{"untagged error", base, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	base := errors.New("boom")
	wrapped := Wrap(KindFetch, base, "fetch page")

	if !errors.Is(wrapped, base) {
		t.Error("errors.Is(wrapped, base) = false, want true")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindFetch, http.StatusBadGateway},
		{KindGeneration, http.StatusBadGateway},
		{KindInternal, http.StatusInternalServerError},
		{Kind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.kind); got != tt.want {
			t.Errorf("HTTPStatus(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
