package errors

import (
	"net/url"
	"regexp"
)

const maxBlockTypeLen = 64

// Block type keys become file names and URL path segments.
var blockTypeRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateBlockType checks that name is a usable block type key: a
// lowercase letter followed by lowercase letters, digits, dashes or
// underscores, at most 64 bytes long.
func ValidateBlockType(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidBlockType, "block type cannot be empty")
	case len(name) > maxBlockTypeLen:
		return New(ErrCodeInvalidBlockType, "block type longer than %d bytes", maxBlockTypeLen)
	case !blockTypeRe.MatchString(name):
		return New(ErrCodeInvalidBlockType, "invalid block type %q", name)
	}
	return nil
}

// ValidateURL checks that raw is an absolute http or https URL with a host.
func ValidateURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", raw)
	}
	return nil
}
