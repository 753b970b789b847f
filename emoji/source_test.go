package emoji

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/esimov/emojiconv/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T) *Source {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/emoji-test.txt", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(sampleRegistry))
	})
	mux.HandleFunc("/emoji.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleAliases))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &Source{
		Client:      srv.Client(),
		RegistryURL: srv.URL + "/emoji-test.txt",
		AliasURL:    srv.URL + "/emoji.json",
	}
}

func TestSource_Fetch(t *testing.T) {
	src := newTestSource(t)

	text, err := src.FetchRegistry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleRegistry, text)

	table, err := src.FetchAliases(context.Background())
	require.NoError(t, err)
	entry, err := table.Lookup("1f600")
	require.NoError(t, err)
	assert.Equal(t, ":grinning:", entry.Shortname)
}

func TestSource_NonSuccessStatusIsFatal(t *testing.T) {
	src := newTestSource(t)
	src.AliasURL = src.RegistryURL[:len(src.RegistryURL)-len("/emoji-test.txt")] + "/missing.json"

	_, err := src.FetchAliases(context.Background())
	var statusErr *utils.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestSource_InvalidURL(t *testing.T) {
	src := &Source{RegistryURL: "emoji-test.txt"}

	_, err := src.FetchRegistry(context.Background())
	assert.Error(t, err)
}
