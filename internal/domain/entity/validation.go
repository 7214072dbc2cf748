package entity

import (
	"fmt"
	"net"
	"net/url"
)

// maxChannelURLLength caps configured channel URLs at a sane size.
const maxChannelURLLength = 2048

// ValidateChannelURL validates an outbound alert channel URL (webhook or
// Telegram endpoint). It checks that the URL is well-formed, uses an
// HTTP/HTTPS scheme, and has a valid host, and it blocks private and
// loopback addresses so a misconfigured channel cannot probe the
// internal network.
// Returns a ValidationError if the URL is invalid or empty.
func ValidateChannelURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxChannelURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxChannelURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	host := parsedURL.Hostname()
	ips, err := net.LookupIP(host)
	if err == nil && len(ips) > 0 {
		for _, ip := range ips {
			if isBlockedIP(ip) {
				return &ValidationError{
					Field:   "url",
					Message: "url cannot point to private network",
				}
			}
		}
	}

	return nil
}

// isBlockedIP reports whether an address sits in a range alert traffic
// must never reach: loopback, link-local (which includes the cloud
// metadata endpoint), and RFC 1918 private networks.
func isBlockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate()
}
