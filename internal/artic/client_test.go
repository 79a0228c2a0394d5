package artic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/pagesel/internal/selection"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// pageHandler serves a collection of total records with sequential IDs
// starting at 1000.
func pageHandler(t *testing.T, total int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			http.Error(w, "bad page", http.StatusBadRequest)
			return
		}
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}

		offset := (page - 1) * limit
		result := PageResult{
			Pagination: Pagination{
				Total:       total,
				Limit:       limit,
				Offset:      offset,
				TotalPages:  (total + limit - 1) / limit,
				CurrentPage: page,
			},
			Data: []Artwork{},
		}
		for pos := offset; pos < offset+limit && pos < total; pos++ {
			result.Data = append(result.Data, Artwork{
				ID:            int64(1000 + pos),
				Title:         "Artwork " + strconv.Itoa(pos),
				PlaceOfOrigin: strPtr("Chicago"),
				DateStart:     intPtr(1900),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func newTestClient(server *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(server.URL + "/api/v1/artworks"),
		WithHTTPClient(server.Client()),
		WithRateLimit(1000, 100),
	}
	return NewClient(append(base, opts...)...)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()

	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, DefaultPageSize, c.PageSize)
	assert.Equal(t, DefaultFields, c.Fields)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)
	require.NotNil(t, c.limiter)
}

func TestFetchPage_Success(t *testing.T) {
	var gotQuery, gotUA, gotAICUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		gotAICUA = r.Header.Get(aicUserAgentHeader)
		pageHandler(t, 100)(w, r)
	}))
	defer server.Close()

	client := newTestClient(server, WithUserAgent("pagesel-test"))

	result, err := client.FetchPage(context.Background(), 2)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "limit=12")
	assert.Contains(t, gotQuery, "fields=id%2Ctitle")
	assert.Equal(t, "pagesel-test", gotUA)
	assert.Equal(t, "pagesel-test", gotAICUA)

	assert.Equal(t, 100, result.Pagination.Total)
	assert.Equal(t, 12, result.Pagination.Limit)
	assert.Equal(t, 9, result.Pagination.TotalPages)
	require.Len(t, result.Data, 12)
	assert.Equal(t, int64(1012), result.Data[0].ID)

	page := result.Page()
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 12, page.Size)
	assert.Equal(t, selection.ID(1012), page.IDs[0])
	assert.Equal(t, 12, page.Position(0))
	require.NoError(t, page.Validate())
}

func TestFetchPage_PartialLastPage(t *testing.T) {
	server := httptest.NewServer(pageHandler(t, 100))
	defer server.Close()

	result, err := newTestClient(server).FetchPage(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, result.Data, 4)
	assert.Equal(t, []selection.ID{1096, 1097, 1098, 1099}, result.IDs())
}

func TestFetchPage_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchPage(context.Background(), 1)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 1, fetchErr.Page)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, "HTTP error! status: 503", fetchErr.Message)
	require.ErrorIs(t, err, ErrHTTPStatus)
	assert.Equal(t, "fetching page 1: HTTP error! status: 503", err.Error())
}

func TestFetchPage_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pagination": "nope"`))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchPage(context.Background(), 1)
	require.ErrorIs(t, err, ErrDecode)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "invalid response")
}

func TestFetchPage_RejectsOversizedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(PageResult{
			Pagination: Pagination{Total: 10, Limit: 1, CurrentPage: 1},
			Data:       []Artwork{{ID: 1}, {ID: 2}},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchPage(context.Background(), 1)
	require.ErrorIs(t, err, ErrDecode)
}

func TestFetchPage_FillsMissingPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pagination":{"total":30},"data":[{"id":7,"title":"x"}]}`))
	}))
	defer server.Close()

	result, err := newTestClient(server, WithPageSize(10)).FetchPage(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Pagination.CurrentPage)
	assert.Equal(t, 10, result.Pagination.Limit)
	assert.Equal(t, 3, result.Pagination.TotalPages)
}

func TestFetchPage_InvalidPage(t *testing.T) {
	client := NewClient()

	_, err := client.FetchPage(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidPage)
}

func TestFetchPage_TransportError(t *testing.T) {
	server := httptest.NewServer(pageHandler(t, 10))
	client := newTestClient(server)
	server.Close()

	_, err := client.FetchPage(context.Background(), 1)
	require.ErrorIs(t, err, ErrTransport)
}

func TestFetchPage_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		pageHandler(t, 10)(w, r)
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := newTestClient(server).FetchPage(ctx, 1)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("FetchPage did not return after cancellation")
	}
}

func TestFetchPage_CoalescesConcurrentRequests(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		pageHandler(t, 50)(w, r)
	}))
	defer server.Close()

	client := newTestClient(server)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*PageResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = client.FetchPage(context.Background(), 2)
		}()
	}

	// Let every caller join the in-flight request before the server answers.
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, results[i].Pagination.CurrentPage)
	}
	assert.Equal(t, int32(1), calls.Load())

	// Nothing is cached: a later request hits the server again.
	_, err := client.FetchPage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchPage_RateLimited(t *testing.T) {
	server := httptest.NewServer(pageHandler(t, 10))
	defer server.Close()

	client := newTestClient(server, WithRateLimit(0.001, 1))

	_, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.FetchPage(ctx, 1)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 0, fetchErr.StatusCode)
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &FetchError{Page: 4, Message: "boom", Err: cause}
	require.ErrorIs(t, err, cause)
}

func TestTextAndYear(t *testing.T) {
	assert.Equal(t, "N/A", Text(nil))
	assert.Equal(t, "N/A", Text(strPtr("  ")))
	assert.Equal(t, "Paris", Text(strPtr("Paris")))
	assert.Equal(t, "N/A", Year(nil))
	assert.Equal(t, "1889", Year(intPtr(1889)))
}
