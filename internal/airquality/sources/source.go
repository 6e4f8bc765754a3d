package sources

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

// New picks a source for location: http(s) URLs are fetched over the network,
// file:// URLs and bare paths, including Windows drive paths, are read from disk.
func New(location string, client *http.Client, maxRetries int) (airquality.Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("dataset location is empty")
	}

	u, err := url.Parse(location)
	// A single-letter scheme is a drive letter, as in C:\data.csv.
	if err != nil || len(u.Scheme) <= 1 {
		return NewFileSource(location), nil
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPSource(client, location, maxRetries), nil
	case "file":
		return NewFileSource(u.Path), nil
	default:
		return nil, fmt.Errorf("unsupported dataset scheme %q", u.Scheme)
	}
}
