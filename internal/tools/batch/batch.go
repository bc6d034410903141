package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrency bounds the vendor calls a batch runs at once.
const MaxConcurrency = 4

// Item outcome values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome for one identifier.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates the outcomes of a batch in input order.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray parses a parameter that can be either a single string
// or an array of strings. Some clients send arrays JSON-encoded inside a
// string; those are unpacked.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if strings.HasPrefix(v, "[") {
			var items []any
			if err := json.Unmarshal([]byte(v), &items); err == nil {
				return ParseStringOrArray(items, paramName)
			}
		}
		return []string{v}, nil
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result := make([]string, 0, len(v))
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
		return result, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}
}

// Process calls fn for every id, at most MaxConcurrency at a time, and
// summarizes the outcomes. Results keep the order of ids.
func Process(ctx context.Context, ids []string, fn func(ctx context.Context, id string) error) Summary {
	results := make([]Result, len(ids))

	var g errgroup.Group
	g.SetLimit(MaxConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = Result{ID: id, Status: StatusSuccess}
			if err := fn(ctx, id); err != nil {
				results[i].Status = StatusError
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	s := Summary{Total: len(results), Results: results}
	for _, r := range results {
		if r.Status == StatusSuccess {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}
