package otel

import (
	"context"
	"testing"
)

func TestNewProviders_EmptyEndpointIsNoop(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "fintrack-test", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil || p.LoggerProvider == nil {
		t.Fatal("providers should be non-nil even when disabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestParseEndpoint(t *testing.T) {
	cases := []struct {
		in           string
		wantTarget   string
		wantInsecure bool
		wantErr      bool
	}{
		{"localhost:4317", "localhost:4317", true, false},
		{"http://collector:4317", "collector:4317", true, false},
		{"https://collector:4317/v1/traces", "collector:4317", false, false},
		{"://", "", false, true},
	}
	for _, tc := range cases {
		target, insecure, err := parseEndpoint(tc.in, false)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseEndpoint(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseEndpoint(%q): %v", tc.in, err)
			continue
		}
		if target != tc.wantTarget || insecure != tc.wantInsecure {
			t.Errorf("parseEndpoint(%q) = %q, %v; want %q, %v", tc.in, target, insecure, tc.wantTarget, tc.wantInsecure)
		}
	}
}

func TestParseEndpoint_InsecureOverride(t *testing.T) {
	_, insecure, err := parseEndpoint("https://collector:4317", true)
	if err != nil {
		t.Fatalf("parseEndpoint: %v", err)
	}
	if !insecure {
		t.Error("override should force insecure for https endpoints")
	}
}
