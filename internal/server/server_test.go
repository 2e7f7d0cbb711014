package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/questkeep/internal/economy"
	"github.com/dukerupert/questkeep/internal/store"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := New(store.NewMemory(), economy.DefaultRules(), slog.New(slog.DiscardHandler))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp, out
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := testServer(t)

	var body map[string]string
	resp := getJSON(t, ts, "/health", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", resp.StatusCode, body)
	}
}

func TestQuestLifecycleOverHTTP(t *testing.T) {
	ts := testServer(t)

	resp, _ := postJSON(t, ts, "/api/members", map[string]any{"name": "Mom", "role": "admin"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create admin: %d", resp.StatusCode)
	}
	resp, _ = postJSON(t, ts, "/api/members", map[string]any{"name": "Raghav"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create member: %d", resp.StatusCode)
	}

	// Duplicate names bounce.
	resp, _ = postJSON(t, ts, "/api/members", map[string]any{"name": "Raghav"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate member = %d, want 409", resp.StatusCode)
	}

	resp, task := postJSON(t, ts, "/api/tasks", map[string]any{
		"user": "Raghav, ", "title": "Dishes", "points": 10, "frequency": "Daily",
	})
	if resp.StatusCode == http.StatusCreated {
		t.Fatal("proposer with garbage name should not resolve")
	}

	resp, task = postJSON(t, ts, "/api/tasks", map[string]any{
		"user": "Raghav", "title": "Dishes", "points": 10, "frequency": "Daily",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("propose task: %d %v", resp.StatusCode, task)
	}
	taskID := int64(task["id"].(float64))
	if task["status"] != "Pending Approval" {
		t.Errorf("proposed status = %v, want Pending Approval", task["status"])
	}

	// A pending task is not completable.
	resp, _ = postJSON(t, ts, fmt.Sprintf("/api/tasks/%d/complete", taskID), map[string]any{"user": "Raghav"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("complete pending = %d, want 409", resp.StatusCode)
	}

	// Members cannot decide.
	resp, _ = postJSON(t, ts, fmt.Sprintf("/api/tasks/%d/decide", taskID), map[string]any{
		"actor": "Raghav", "decision": "approve",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("member decide = %d, want 403", resp.StatusCode)
	}

	resp, decided := postJSON(t, ts, fmt.Sprintf("/api/tasks/%d/decide", taskID), map[string]any{
		"actor": "Mom", "decision": "approve",
	})
	if resp.StatusCode != http.StatusOK || decided["status"] != "Active" {
		t.Fatalf("decide = %d %v", resp.StatusCode, decided)
	}

	resp, result := postJSON(t, ts, fmt.Sprintf("/api/tasks/%d/complete", taskID), map[string]any{"user": "Raghav"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete = %d %v", resp.StatusCode, result)
	}
	if result["payout"].(float64) != 10 {
		t.Errorf("payout = %v, want 10", result["payout"])
	}

	// Same day, same task: gone from the visible list and rejected.
	var visible []map[string]any
	getJSON(t, ts, "/api/tasks?user=Raghav", &visible)
	if len(visible) != 0 {
		t.Errorf("visible tasks = %v, want none", visible)
	}
	resp, _ = postJSON(t, ts, fmt.Sprintf("/api/tasks/%d/complete", taskID), map[string]any{"user": "Raghav"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("repeat complete = %d, want 409", resp.StatusCode)
	}

	var profile map[string]any
	getJSON(t, ts, "/api/members/Raghav", &profile)
	if profile["points"].(float64) != 10 || profile["xp"].(float64) != 10 {
		t.Errorf("profile = %v", profile)
	}
	if profile["level"].(float64) != 2 {
		t.Errorf("level = %v, want 2 at 10 xp", profile["level"])
	}

	var board []map[string]any
	getJSON(t, ts, "/api/members", &board)
	if len(board) != 2 || board[0]["name"] != "Raghav" {
		t.Errorf("leaderboard = %v, want Raghav first", board)
	}

	var history []map[string]any
	getJSON(t, ts, "/api/history?limit=5", &history)
	if len(history) != 1 || history[0]["action"] != "QuestComplete" {
		t.Errorf("history = %v", history)
	}
}

func TestRewardLifecycleOverHTTP(t *testing.T) {
	ts := testServer(t)

	postJSON(t, ts, "/api/members", map[string]any{"name": "Mom", "role": "admin"})
	postJSON(t, ts, "/api/members", map[string]any{"name": "Rhea"})

	resp, reward := postJSON(t, ts, "/api/rewards", map[string]any{
		"user": "Rhea", "title": "Movie night", "cost": 30,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("propose reward: %d %v", resp.StatusCode, reward)
	}
	rewardID := int64(reward["id"].(float64))

	// Not in the catalog until approved.
	var catalog []map[string]any
	getJSON(t, ts, "/api/rewards", &catalog)
	if len(catalog) != 0 {
		t.Errorf("catalog before approval = %v, want empty", catalog)
	}

	resp, _ = postJSON(t, ts, fmt.Sprintf("/api/rewards/%d/decide", rewardID), map[string]any{
		"actor": "Mom", "decision": "approve",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decide reward: %d", resp.StatusCode)
	}

	// No points yet.
	resp, _ = postJSON(t, ts, fmt.Sprintf("/api/rewards/%d/redeem", rewardID), map[string]any{"user": "Rhea"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("broke redeem = %d, want 422", resp.StatusCode)
	}
}
