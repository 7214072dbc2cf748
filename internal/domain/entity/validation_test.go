package entity

import (
	"errors"
	"net"
	"testing"
)

func TestValidateChannelURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{
			name:    "valid https URL",
			url:     "https://hooks.example.com/alerts",
			wantErr: false,
		},
		{
			name:    "valid http URL",
			url:     "http://hooks.example.com/alerts",
			wantErr: false,
		},
		{
			name:    "valid URL with port",
			url:     "https://hooks.example.com:8443/alerts",
			wantErr: false,
		},
		{
			name:    "valid URL with query",
			url:     "https://hooks.example.com/alerts?token=abc",
			wantErr: false,
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: true,
		},
		{
			name:    "invalid scheme - ftp",
			url:     "ftp://hooks.example.com/alerts",
			wantErr: true,
		},
		{
			name:    "invalid scheme - file",
			url:     "file:///etc/passwd",
			wantErr: true,
		},
		{
			name:    "no host",
			url:     "https://",
			wantErr: true,
		},
		{
			name:    "malformed URL",
			url:     "ht!tp://hooks.example.com",
			wantErr: true,
		},
		{
			name:    "no scheme",
			url:     "hooks.example.com",
			wantErr: true,
		},
		{
			name:    "URL exceeding maximum length",
			url:     "https://hooks.example.com/" + string(make([]byte, 2050)),
			wantErr: true,
		},
		{
			name:    "localhost URL",
			url:     "http://localhost/alerts",
			wantErr: true,
		},
		{
			name:    "loopback address",
			url:     "http://127.0.0.1/alerts",
			wantErr: true,
		},
		{
			name:    "private network address",
			url:     "http://192.168.1.1/alerts",
			wantErr: true,
		},
		{
			name:    "cloud metadata endpoint",
			url:     "http://169.254.169.254/latest/meta-data",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChannelURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChannelURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChannelURL_ErrorTypes(t *testing.T) {
	t.Run("empty URL returns ValidationError", func(t *testing.T) {
		err := ValidateChannelURL("")
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("expected ValidationError, got %T", err)
		}
	})

	t.Run("invalid scheme returns ValidationError", func(t *testing.T) {
		err := ValidateChannelURL("ftp://hooks.example.com")
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("expected ValidationError, got %T", err)
		}
	})

	t.Run("blocked address returns ValidationError", func(t *testing.T) {
		err := ValidateChannelURL("http://127.0.0.1")
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("expected ValidationError, got %T", err)
		}
	})
}

func TestIsBlockedIP(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		blocked bool
	}{
		{
			name:    "IPv4 loopback",
			ip:      "127.0.0.1",
			blocked: true,
		},
		{
			name:    "IPv6 loopback",
			ip:      "::1",
			blocked: true,
		},
		{
			name:    "link-local (cloud metadata)",
			ip:      "169.254.169.254",
			blocked: true,
		},
		{
			name:    "private 10.0.0.0/8",
			ip:      "10.123.45.67",
			blocked: true,
		},
		{
			name:    "private 172.16.0.0/12",
			ip:      "172.20.10.5",
			blocked: true,
		},
		{
			name:    "private 192.168.0.0/16",
			ip:      "192.168.1.1",
			blocked: true,
		},
		{
			name:    "public IPv4",
			ip:      "8.8.8.8",
			blocked: false,
		},
		{
			name:    "public IPv6",
			ip:      "2001:4860:4860::8888",
			blocked: false,
		},
		{
			name:    "just outside 172.16.0.0/12",
			ip:      "172.32.0.0",
			blocked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse IP: %s", tt.ip)
			}

			got := isBlockedIP(ip)
			if got != tt.blocked {
				t.Errorf("isBlockedIP(%s) = %v, want %v", tt.ip, got, tt.blocked)
			}
		})
	}
}
