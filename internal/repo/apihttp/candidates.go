package apihttp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/RCDNC/swipedeck/internal/domain/model"
)

func (c *Client) Fetch(ctx context.Context, userID string, filters model.CandidateFilters) ([]model.Candidate, error) {
	query := url.Values{}
	if filters.MinAge > 0 {
		query.Set("min_age", strconv.Itoa(filters.MinAge))
	}
	if filters.MaxAge > 0 {
		query.Set("max_age", strconv.Itoa(filters.MaxAge))
	}
	if filters.MaxDistanceKM > 0 {
		query.Set("max_distance_km", strconv.Itoa(filters.MaxDistanceKM))
	}
	if filters.Gender != "" {
		query.Set("gender", string(filters.Gender))
	}
	if filters.OnlineOnly {
		query.Set("online_only", "true")
	}
	if filters.VerifiedOnly {
		query.Set("verified_only", "true")
	}
	if len(filters.Interests) > 0 {
		query.Set("interests", strings.Join(filters.Interests, ","))
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = c.pageSize
	}
	query.Set("limit", strconv.Itoa(limit))

	var resp candidatesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/candidates", requestOptions{userID: userID, query: query}, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]model.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, item.toModel())
	}
	return items, nil
}
