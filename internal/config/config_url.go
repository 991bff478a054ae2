// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package config

import (
	"fmt"
	"net/url"
)

// validateHTTPURL validates an origin: http or https scheme, a host, and no
// path beyond "/" or query.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := validateBase(rawURL, fieldName)
	if err != nil {
		return err
	}
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return fmt.Errorf("%s should be an origin only, remove path: %s", fieldName, parsedURL.Path)
	}
	return nil
}

// validateBaseURL validates an API base URL. A path prefix such as /api is allowed.
func validateBaseURL(rawURL, fieldName string) error {
	_, err := validateBase(rawURL, fieldName)
	return err
}

func validateBase(rawURL, fieldName string) (*url.URL, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return nil, fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return parsedURL, nil
}
