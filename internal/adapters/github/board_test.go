package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flowboard/internal/ports/secondary"
)

func newTestBoard(t *testing.T, handler http.HandlerFunc) *Board {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("test-token", "acme", "widgets").WithBaseURL(srv.URL)
	return NewBoard(client)
}

func TestListItemsParsesLabels(t *testing.T) {
	board := newTestBoard(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/issues", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`[
			{"number": 7, "title": "Dark mode", "labels": [
				{"name": "status: Technical Design"},
				{"name": "review: Waiting for Review"},
				{"name": "enhancement"}
			]},
			{"number": 8, "title": "A PR", "pull_request": {}, "labels": []}
		]`))
	})

	items, err := board.ListItems(context.Background(), secondary.BoardItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "issue-7", items[0].ID)
	assert.Equal(t, 7, items[0].IssueNumber)
	assert.Equal(t, "Technical Design", items[0].Status)
	assert.Equal(t, "Waiting for Review", items[0].ReviewStatus)
}

func TestListItemsStatusFilter(t *testing.T) {
	board := newTestBoard(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"number": 1, "title": "a", "labels": [{"name": "status: Implementation"}]},
			{"number": 2, "title": "b", "labels": [{"name": "status: Done"}]}
		]`))
	})

	items, err := board.ListItems(context.Background(), secondary.BoardItemFilter{Status: "Implementation"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].IssueNumber)
}

func TestUpdateItemStatusReplacesLabelGroup(t *testing.T) {
	var putLabels []string
	board := newTestBoard(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/widgets/issues/5":
			_, _ = w.Write([]byte(`{"number": 5, "labels": [
				{"name": "status: Product Design"},
				{"name": "review: Approved"},
				{"name": "bug"}
			]}`))
		case r.Method == http.MethodPut && r.URL.Path == "/repos/acme/widgets/issues/5/labels":
			var req struct {
				Labels []string `json:"labels"`
			}
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &req))
			putLabels = req.Labels
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	err := board.UpdateItemStatus(context.Background(), "issue-5", "Technical Design")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"review: Approved", "bug", "status: Technical Design"}, putLabels)
}

func TestClearItemReviewStatusRemovesLabel(t *testing.T) {
	var putLabels []string
	board := newTestBoard(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"number": 5, "labels": [
				{"name": "status: Implementation"},
				{"name": "review: Request Changes"}
			]}`))
		case http.MethodPut:
			var req struct {
				Labels []string `json:"labels"`
			}
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &req))
			putLabels = req.Labels
			_, _ = w.Write([]byte(`[]`))
		}
	})

	err := board.ClearItemReviewStatus(context.Background(), "issue-5")
	require.NoError(t, err)
	assert.Equal(t, []string{"status: Implementation"}, putLabels)
}

func TestCreateIssue(t *testing.T) {
	board := newTestBoard(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/repos/acme/widgets/issues", r.URL.Path)

		var req map[string]string
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "Dark mode", req["title"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 42, "html_url": "https://github.com/acme/widgets/issues/42", "title": "Dark mode", "state": "open"}`))
	})

	issue, err := board.CreateIssue(context.Background(), "Dark mode", "Users keep asking")
	require.NoError(t, err)
	assert.Equal(t, 42, issue.Number)
	assert.Equal(t, "https://github.com/acme/widgets/issues/42", issue.URL)
}

func TestMergePullRequestSquashes(t *testing.T) {
	board := newTestBoard(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/repos/acme/widgets/pulls/9/merge", r.URL.Path)

		var req map[string]string
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "squash", req["merge_method"])
		assert.Equal(t, "Fix login loop", req["commit_title"])

		_, _ = w.Write([]byte(`{"merged": true}`))
	})

	err := board.MergePullRequest(context.Background(), 9, "Fix login loop", "")
	require.NoError(t, err)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	board := newTestBoard(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	})

	_, err := board.GetIssueDetails(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestServerErrorIsRetried(t *testing.T) {
	calls := 0
	board := newTestBoard(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"number": 1, "title": "t", "state": "open"}`))
	})

	issue, err := board.GetIssueDetails(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, issue.Number)
	assert.Equal(t, 3, calls)
}

func TestParseItemID(t *testing.T) {
	n, err := parseItemID("issue-17")
	require.NoError(t, err)
	assert.Equal(t, 17, n)

	_, err = parseItemID("PVTI_xyz")
	assert.Error(t, err)
}
