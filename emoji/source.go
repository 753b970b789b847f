package emoji

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/esimov/emojiconv/utils"
)

// Default locations of the remote datasets.
const (
	RegistryURL = "https://www.unicode.org/Public/emoji/15.1/emoji-test.txt"
	AliasURL    = "https://raw.githubusercontent.com/joypixels/emoji-toolkit/master/emoji.json"
)

// UserAgent is sent with every request made by a Source.
const UserAgent = "emojiconv"

// Source downloads the emoji registry and the alias dataset.
// The zero value uses the default URLs and NewHTTPClient.
type Source struct {
	Client      *http.Client
	RegistryURL string
	AliasURL    string
}

// NewHTTPClient returns the client used to reach the remote datasets.
// Pooled connections are dropped after being idle for two minutes.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.IdleConnTimeout = 2 * time.Minute

	return &http.Client{Transport: transport}
}

// FetchRegistry downloads the emoji-test registry as text.
func (s *Source) FetchRegistry(ctx context.Context) (string, error) {
	data, err := s.fetch(ctx, s.RegistryURL, RegistryURL)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchAliases downloads and decodes the alias dataset.
func (s *Source) FetchAliases(ctx context.Context) (AliasTable, error) {
	data, err := s.fetch(ctx, s.AliasURL, AliasURL)
	if err != nil {
		return nil, err
	}
	return ParseAliasTable(bytes.NewReader(data))
}

func (s *Source) fetch(ctx context.Context, uri, fallback string) ([]byte, error) {
	if uri == "" {
		uri = fallback
	}
	if !utils.IsValidUrl(uri) {
		return nil, fmt.Errorf("invalid dataset URL: %q", uri)
	}

	if s.Client == nil {
		s.Client = NewHTTPClient()
	}
	return utils.Fetch(ctx, s.Client, uri, UserAgent)
}
