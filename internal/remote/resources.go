package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"cosurvival/internal/dashboard/models"
	dErrors "cosurvival/pkg/domain-errors"
)

const (
	pathAdvisorSignals  = "/api/v1/advisor/signals"
	pathProviders       = "/api/v1/recon/providers"
	pathTribeGraph      = "/api/v1/tribe/graph"
	pathRecommendations = "/api/v1/teacher/recommendations"
	pathReviews         = "/api/v1/reviews"
)

// FetchAdvisorSignals returns the advisor feed. Both a bare array and a
// {"signals": [...]} envelope are accepted.
func (c *Client) FetchAdvisorSignals(ctx context.Context) ([]models.AdvisorSignal, error) {
	var body envelope[models.AdvisorSignal]
	body.key = "signals"
	if err := c.call(ctx, "advisor_signals", http.MethodGet, pathAdvisorSignals, nil, nil, &body); err != nil {
		return nil, err
	}
	return body.items, nil
}

// FetchProviders returns provider reliability scores.
func (c *Client) FetchProviders(ctx context.Context) ([]models.ProviderScore, error) {
	var body envelope[models.ProviderScore]
	body.key = "providers"
	if err := c.call(ctx, "providers", http.MethodGet, pathProviders, nil, nil, &body); err != nil {
		return nil, err
	}
	return body.items, nil
}

// FetchTribeGraph returns the collaboration graph.
func (c *Client) FetchTribeGraph(ctx context.Context) (models.TribeGraph, error) {
	var g models.TribeGraph
	if err := c.call(ctx, "tribe_graph", http.MethodGet, pathTribeGraph, nil, nil, &g); err != nil {
		return models.TribeGraph{}, err
	}
	if g.Nodes == nil {
		g.Nodes = []string{}
	}
	if g.Edges == nil {
		g.Edges = []models.TribeEdge{}
	}
	return g, nil
}

// FetchRecommendations returns learning recommendations for userID.
func (c *Client) FetchRecommendations(ctx context.Context, userID string) ([]models.Recommendation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "user id is required")
	}
	var body envelope[models.Recommendation]
	body.key = "recommendations"
	q := url.Values{"user_id": []string{userID}}
	if err := c.call(ctx, "recommendations", http.MethodGet, pathRecommendations, q, nil, &body); err != nil {
		return nil, err
	}
	return body.items, nil
}

// SubmitReview posts a review. The server assigns ID and CreatedAt.
func (c *Client) SubmitReview(ctx context.Context, in models.ReviewInput) (models.ReviewEntry, error) {
	if in.Highlights == nil {
		in.Highlights = []string{}
	}
	var entry models.ReviewEntry
	if err := c.call(ctx, "submit_review", http.MethodPost, pathReviews, nil, in, &entry); err != nil {
		return models.ReviewEntry{}, err
	}
	if entry.Highlights == nil {
		entry.Highlights = []string{}
	}
	return entry, nil
}
