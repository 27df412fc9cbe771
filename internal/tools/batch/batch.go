package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// DefaultChunkSize bounds how many items run concurrently. Chunks execute
// one after another, so at most DefaultChunkSize API calls are in flight.
const DefaultChunkSize = 50

// Result represents the result of a single operation in a batch
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray parses a parameter that can be either a single string or an array of strings
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		// Some clients serialize array arguments as a JSON string.
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var parsed []string
			if err := json.Unmarshal([]byte(v), &parsed); err == nil {
				if len(parsed) == 0 {
					return nil, fmt.Errorf("%s cannot be empty", paramName)
				}
				for i, str := range parsed {
					if str == "" {
						return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
					}
				}
				return parsed, nil
			}
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		if r.Status == "success" {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return string(jsonBytes)
}

// Run executes fn once per id and collects results in input order.
//
// Ids are processed in sequential chunks of chunkSize (DefaultChunkSize
// when chunkSize <= 0); within a chunk every item runs in its own
// goroutine. A failing item is recorded and never stops its siblings or
// later chunks, and no item is retried. When ctx is cancelled, in-flight
// items finish and every item of the remaining chunks is recorded as an
// error without starting.
func Run(ctx context.Context, ids []string, chunkSize int, fn func(ctx context.Context, id string) (string, error)) []Result {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	results := make([]Result, len(ids))

	for start := 0; start < len(ids); start += chunkSize {
		if err := ctx.Err(); err != nil {
			for i := start; i < len(ids); i++ {
				results[i] = NewErrorResult(ids[i], err)
			}
			break
		}

		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := fn(ctx, ids[i])
				if err != nil {
					results[i] = NewErrorResult(ids[i], err)
				} else {
					results[i] = NewSuccessResult(ids[i], res)
				}
			}(i)
		}
		wg.Wait()
	}

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: "success",
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: "error",
		Error:  err.Error(),
	}
}
