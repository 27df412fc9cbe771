package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		paramName string
		want      []string
		wantErr   bool
	}{
		{
			name:      "single string",
			input:     "test123",
			paramName: "testParam",
			want:      []string{"test123"},
			wantErr:   false,
		},
		{
			name:      "array of strings",
			input:     []interface{}{"id1", "id2", "id3"},
			paramName: "testParam",
			want:      []string{"id1", "id2", "id3"},
			wantErr:   false,
		},
		{
			name:      "nil input",
			input:     nil,
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "empty string",
			input:     "",
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "empty array",
			input:     []interface{}{},
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "array with non-string",
			input:     []interface{}{"id1", 123, "id3"},
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "array with empty string",
			input:     []interface{}{"id1", "", "id3"},
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "invalid type",
			input:     123,
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "JSON string array",
			input:     `["id1", "id2", "id3"]`,
			paramName: "testParam",
			want:      []string{"id1", "id2", "id3"},
			wantErr:   false,
		},
		{
			name:      "JSON string single element array",
			input:     `["msg-1"]`,
			paramName: "testParam",
			want:      []string{"msg-1"},
			wantErr:   false,
		},
		{
			name:      "JSON string empty array",
			input:     `[]`,
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "invalid JSON string",
			input:     `[invalid json`,
			paramName: "testParam",
			want:      []string{`[invalid json`},
			wantErr:   false,
		},
		{
			name:      "string starting with bracket (not JSON)",
			input:     `[urgent] follow up`,
			paramName: "testParam",
			want:      []string{`[urgent] follow up`},
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseStringOrArray() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !stringSliceEqual(got, tt.want) {
				t.Errorf("ParseStringOrArray() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		{ID: "id1", Status: "success", Result: "Operation successful"},
		{ID: "id2", Status: "success", Result: "Operation successful"},
		{ID: "id3", Status: "error", Error: "Something went wrong"},
	}

	output := FormatResults(results)

	var br BatchResult
	if err := json.Unmarshal([]byte(output), &br); err != nil {
		t.Fatalf("Failed to parse output JSON: %v", err)
	}

	if br.Total != 3 {
		t.Errorf("Total = %d, want 3", br.Total)
	}
	if br.Successful != 2 {
		t.Errorf("Successful = %d, want 2", br.Successful)
	}
	if br.Failed != 1 {
		t.Errorf("Failed = %d, want 1", br.Failed)
	}
	if len(br.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(br.Results))
	}
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%03d", i)
	}
	return ids
}

func TestRunEmptyInput(t *testing.T) {
	results := Run(context.Background(), nil, 10, func(ctx context.Context, id string) (string, error) {
		t.Fatal("fn must not be called for an empty batch")
		return "", nil
	})
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	for _, n := range []int{3, 10, 11} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ids := makeIDs(n)

			results := Run(context.Background(), ids, 10, func(ctx context.Context, id string) (string, error) {
				return "processed " + id, nil
			})

			if len(results) != n {
				t.Fatalf("len(results) = %d, want %d", len(results), n)
			}
			for i, r := range results {
				if r.ID != ids[i] {
					t.Errorf("results[%d].ID = %s, want %s", i, r.ID, ids[i])
				}
				if r.Status != "success" {
					t.Errorf("results[%d].Status = %s, want success", i, r.Status)
				}
				if r.Result != "processed "+ids[i] {
					t.Errorf("results[%d].Result = %s, want 'processed %s'", i, r.Result, ids[i])
				}
			}
		})
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	ids := makeIDs(120)

	// Every fourth item fails: 30 errors out of 120.
	results := Run(context.Background(), ids, 50, func(ctx context.Context, id string) (string, error) {
		var n int
		fmt.Sscanf(id, "id-%d", &n)
		if n%4 == 0 {
			return "", errors.New("rejected " + id)
		}
		return "ok", nil
	})

	if len(results) != 120 {
		t.Fatalf("len(results) = %d, want 120", len(results))
	}

	var failed, succeeded int
	for i, r := range results {
		if r.ID != ids[i] {
			t.Errorf("results[%d].ID = %s, want %s", i, r.ID, ids[i])
		}
		switch r.Status {
		case "success":
			succeeded++
		case "error":
			failed++
			if !strings.Contains(r.Error, r.ID) {
				t.Errorf("results[%d].Error = %q, want mention of %s", i, r.Error, r.ID)
			}
		default:
			t.Errorf("results[%d].Status = %s", i, r.Status)
		}
	}
	if succeeded != 90 || failed != 30 {
		t.Errorf("succeeded = %d, failed = %d, want 90/30", succeeded, failed)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	const chunkSize = 5

	var mu sync.Mutex
	var inFlight, peak int

	ids := makeIDs(23)
	results := Run(context.Background(), ids, chunkSize, func(ctx context.Context, id string) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()
		return "ok", nil
	})

	if len(results) != 23 {
		t.Fatalf("len(results) = %d, want 23", len(results))
	}
	if peak > chunkSize {
		t.Errorf("peak concurrency = %d, want <= %d", peak, chunkSize)
	}
}

func TestRunDefaultChunkSize(t *testing.T) {
	ids := makeIDs(3)
	results := Run(context.Background(), ids, 0, func(ctx context.Context, id string) (string, error) {
		return "ok", nil
	})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.Status != "success" {
			t.Errorf("results[%d].Status = %s, want success", i, r.Status)
		}
	}
}

func TestRunStopsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ids := makeIDs(10)
	results := Run(ctx, ids, 5, func(ctx context.Context, id string) (string, error) {
		cancel()
		return "ok", nil
	})

	if len(results) != 10 {
		t.Fatalf("len(results) = %d, want 10", len(results))
	}
	// First chunk completes, second chunk never starts.
	for i := 0; i < 5; i++ {
		if results[i].Status != "success" {
			t.Errorf("results[%d].Status = %s, want success", i, results[i].Status)
		}
	}
	for i := 5; i < 10; i++ {
		if results[i].Status != "error" {
			t.Errorf("results[%d].Status = %s, want error", i, results[i].Status)
		}
		if !strings.Contains(results[i].Error, context.Canceled.Error()) {
			t.Errorf("results[%d].Error = %q, want context cancellation", i, results[i].Error)
		}
	}
}

func TestNewSuccessResult(t *testing.T) {
	result := NewSuccessResult("test-id", "test message")

	if result.ID != "test-id" {
		t.Errorf("ID = %s, want test-id", result.ID)
	}
	if result.Status != "success" {
		t.Errorf("Status = %s, want success", result.Status)
	}
	if result.Result != "test message" {
		t.Errorf("Result = %s, want 'test message'", result.Result)
	}
	if result.Error != "" {
		t.Errorf("Error should be empty, got %s", result.Error)
	}
}

func TestNewErrorResult(t *testing.T) {
	err := errors.New("test error")
	result := NewErrorResult("test-id", err)

	if result.ID != "test-id" {
		t.Errorf("ID = %s, want test-id", result.ID)
	}
	if result.Status != "error" {
		t.Errorf("Status = %s, want error", result.Status)
	}
	if result.Error != "test error" {
		t.Errorf("Error = %s, want 'test error'", result.Error)
	}
	if result.Result != "" {
		t.Errorf("Result should be empty, got %s", result.Result)
	}
}

// Helper function to compare string slices
func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
