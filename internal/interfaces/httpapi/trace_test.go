package httpapi

import (
	"context"
	"testing"
)

func TestIsHandlerSpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.TeamPicks", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isHandlerSpan(tt.in)
			if got != tt.want {
				t.Fatalf("isHandlerSpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartSpanWithoutRequestSpanIsNoop(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.ListMatches")
	if got != ctx {
		t.Fatalf("expected context to pass through untouched")
	}
	if span.SpanContext().IsValid() {
		t.Fatalf("expected a no-op span without a request span")
	}
}
