package apihttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/RCDNC/swipedeck/internal/domain/model"
	metricssvc "github.com/RCDNC/swipedeck/internal/services/metrics"
)

// Get reads the user's counters. A 404 means the remote API has no counters
// for the user yet and is reported as metrics.ErrNotFound.
func (c *Client) Get(ctx context.Context, userID string) (model.QuotaState, error) {
	var resp metricsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/metrics", requestOptions{userID: userID}, nil, &resp); err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
			return model.QuotaState{}, fmt.Errorf("%w: %w", metricssvc.ErrNotFound, err)
		}
		return model.QuotaState{}, err
	}
	return resp.toModel(c.limits), nil
}

// Save is a no-op: the remote API owns the counters and reports them back on
// every swipe.
func (c *Client) Save(context.Context, string, model.QuotaState) error {
	return nil
}
