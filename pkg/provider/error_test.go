package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "rate limited", err: &Error{Status: 429, Err: errors.New("rate limit")}, want: true},
		{name: "server error", err: &Error{Status: 503, Err: errors.New("overloaded")}, want: true},
		{name: "bad request", err: &Error{Status: 400, Err: errors.New("invalid body")}, want: false},
		{name: "auth failure", err: &Error{Status: 401, Err: errors.New("bad key")}, want: false},
		{name: "marked temporary", err: &Error{Temporary: true, Err: errors.New("conn reset")}, want: true},
		{name: "wrapped transient", err: fmt.Errorf("call failed: %w", &Error{Status: 500, Err: errors.New("boom")}), want: true},
		{name: "plain error", err: errors.New("something else"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("upstream")
	err := &Error{Status: 502, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose the inner error")
	}
	if msg := err.Error(); msg == "" {
		t.Error("Error() should not be empty")
	}
}

func TestNotAvailableResult(t *testing.T) {
	res := NotAvailableResult()
	if res.Text == "" {
		t.Error("sentinel text should not be empty")
	}
	if len(res.Sources) != 0 {
		t.Errorf("sentinel should carry no sources, got %d", len(res.Sources))
	}
}
