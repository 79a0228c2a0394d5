package cli_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/pagesel/internal/artic"
	"github.com/rshade/pagesel/internal/cli"
	"github.com/rshade/pagesel/internal/cli/pagination"
	"github.com/rshade/pagesel/internal/config"
	"github.com/rshade/pagesel/internal/selection"
)

const testTotal = 100

// setupCLITest isolates config and logging and registers cleanup for global state.
func setupCLITest(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvLogFile, "")
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvPageSize, "")
	t.Cleanup(config.ResetGlobalConfigForTest)
}

// newCollectionServer serves testTotal records with IDs 10000+position.
func newCollectionServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		offset := (page - 1) * limit
		result := artic.PageResult{
			Pagination: artic.Pagination{
				Total:       testTotal,
				Limit:       limit,
				Offset:      offset,
				TotalPages:  (testTotal + limit - 1) / limit,
				CurrentPage: page,
			},
			Data: []artic.Artwork{},
		}
		for pos := offset; pos < offset+limit && pos < testTotal; pos++ {
			result.Data = append(result.Data, artic.Artwork{
				ID:    int64(10000 + pos),
				Title: "Artwork " + strconv.Itoa(pos),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPageCmd_Table(t *testing.T) {
	setupCLITest(t)
	server := newCollectionServer(t)

	out, err := execute(t, "page", "--api-url", server.URL, "--page", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "SEL")
	assert.Contains(t, out, "Artwork 12")
	assert.Contains(t, out, "Showing 13 to 24 of 100 entries")
	assert.Contains(t, out, "Page 2/9")
	assert.Contains(t, out, "Selected: 0 rows")
	assert.NotContains(t, out, "[x]")
}

func TestPageCmd_SelectFirst(t *testing.T) {
	setupCLITest(t)
	server := newCollectionServer(t)

	out, err := execute(t, "page", "--api-url", server.URL, "--page", "2", "--select-first", "20")
	require.NoError(t, err)

	// Positions 12..19 of page 2 fall inside the first 20.
	assert.Equal(t, 8, strings.Count(out, "[x]"))
	assert.Contains(t, out, "Selected: 20 rows (first 20, 0 exceptions)")
}

func TestPageCmd_SelectFirstClamped(t *testing.T) {
	setupCLITest(t)
	server := newCollectionServer(t)

	out, err := execute(t, "page", "--api-url", server.URL, "--select-first", "150")
	require.NoError(t, err)
	assert.Contains(t, out, "Only 100 rows available. Selecting all 100 rows.")
	assert.Contains(t, out, "Selected: 100 rows")
}

func TestPageCmd_SelectFirstInvalid(t *testing.T) {
	setupCLITest(t)
	server := newCollectionServer(t)

	_, err := execute(t, "page", "--api-url", server.URL, "--select-first", "0")
	require.ErrorIs(t, err, selection.ErrInvalidBulkCount)
}

func TestPageCmd_CheckJSON(t *testing.T) {
	setupCLITest(t)
	server := newCollectionServer(t)

	out, err := execute(t, "page", "--api-url", server.URL, "--output", "json",
		"--select-first", "20", "--check", "10000,10001")
	require.NoError(t, err)

	var doc struct {
		Pagination struct {
			CurrentPage int `json:"current_page"`
			TotalItems  int `json:"total_items"`
		} `json:"pagination"`
		Selection struct {
			Mode     string  `json:"mode"`
			Count    int     `json:"count"`
			Excluded []int64 `json:"excluded"`
			Total    int     `json:"total"`
		} `json:"selection"`
		Records []struct {
			ID       int64 `json:"id"`
			Selected bool  `json:"selected"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, 1, doc.Pagination.CurrentPage)
	assert.Equal(t, testTotal, doc.Pagination.TotalItems)
	assert.Equal(t, "bulk", doc.Selection.Mode)
	assert.Equal(t, 20, doc.Selection.Count)
	assert.Len(t, doc.Selection.Excluded, 10)
	assert.Equal(t, 10, doc.Selection.Total)
	require.Len(t, doc.Records, 12)
	assert.True(t, doc.Records[0].Selected)
	assert.True(t, doc.Records[1].Selected)
	assert.False(t, doc.Records[2].Selected)
}

func TestPageCmd_CheckNotOnPage(t *testing.T) {
	setupCLITest(t)
	server := newCollectionServer(t)

	_, err := execute(t, "page", "--api-url", server.URL, "--check", "99999")
	require.ErrorIs(t, err, selection.ErrCheckedNotOnPage)
}

func TestPageCmd_NDJSON(t *testing.T) {
	setupCLITest(t)
	server := newCollectionServer(t)

	out, err := execute(t, "page", "--api-url", server.URL, "--output", "ndjson", "--page-size", "5")
	require.NoError(t, err)

	scanner := bufio.NewScanner(strings.NewReader(out))
	var lines []map[string]any
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 6)
	assert.Equal(t, "summary", lines[0]["type"])
	assert.Equal(t, "direct", lines[0]["mode"])
	assert.InDelta(t, 10000, lines[1]["id"], 0)
}

func TestPageCmd_InvalidOutput(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "page", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestPageCmd_FetchError(t *testing.T) {
	setupCLITest(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := execute(t, "page", "--api-url", server.URL)
	require.Error(t, err)

	var fetchErr *artic.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "HTTP error! status: 500", fetchErr.Message)
}

func TestPageCmd_InvalidPage(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "page", "--page", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page must be >= 1")
}

func TestPageCmd_PageBeyondLast(t *testing.T) {
	setupCLITest(t)
	server := newCollectionServer(t)

	_, err := execute(t, "page", "--api-url", server.URL, "--page", "50")
	require.ErrorIs(t, err, pagination.ErrPageOutOfRange)
	assert.Contains(t, err.Error(), "last page is 9")

	out, err := execute(t, "page", "--api-url", server.URL, "--page", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 97 to 100 of 100 entries")
}

func TestRootCmd_InvalidPageSizeFlag(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "page", "--page-size", "500")
	require.ErrorIs(t, err, config.ErrInvalidPageSize)
}

func TestBrowseCmd_RequiresTerminal(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "browse")
	require.ErrorIs(t, err, cli.ErrNotTerminal)
}

func TestConfigInit(t *testing.T) {
	setupCLITest(t)
	path := filepath.Join(t.TempDir(), "pagesel", "config.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestConfigInit_DefaultPath(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(os.Getenv(config.EnvHome), "config.yaml"))
}

func TestConfigInit_OverwritesBrokenConfig(t *testing.T) {
	setupCLITest(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui: [unterminated\n"), 0600))

	_, err := execute(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "page_size: 12")
}

func TestRootCmd_MissingExplicitConfig(t *testing.T) {
	setupCLITest(t)
	path := filepath.Join(t.TempDir(), "typo.yaml")

	_, err := execute(t, "page", "--config", path)
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestConfigShow(t *testing.T) {
	setupCLITest(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  page_size: 20\n"), 0600))

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "page_size: 20")

	out, err = execute(t, "config", "show", "--config", path, "--page-size", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "page_size: 50")
	assert.Contains(t, out, "base_url: "+config.DefaultBaseURL)
}

func TestRootCmd_Version(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestPageCmd_SendsUserAgent(t *testing.T) {
	setupCLITest(t)

	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pagination":{"total":0,"limit":12,"offset":0,"total_pages":0,"current_page":1},"data":[]}`))
	}))
	defer server.Close()

	out, err := execute(t, "page", "--api-url", server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No records on this page")
	assert.Equal(t, config.DefaultUserAgent+" pagesel/unknown", userAgent)
}
