package handler

import (
	"strings"

	"cosurvival/internal/dashboard/models"
	"cosurvival/internal/dashboard/service"
	dErrors "cosurvival/pkg/domain-errors"
)

// SubmitReviewRequest is the body of POST /dashboard/reviews. Highlights may
// be sent as a list, as comma separated text, or both.
type SubmitReviewRequest struct {
	Author         string   `json:"author"`
	Lens           string   `json:"lens"`
	Summary        string   `json:"summary"`
	Highlights     []string `json:"highlights"`
	HighlightsText string   `json:"highlightsText"`
}

// Validate only rejects obviously empty bodies; the service owns the review
// rules.
func (r *SubmitReviewRequest) Validate() error {
	if strings.TrimSpace(r.Lens) == "" && strings.TrimSpace(r.Summary) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "lens and summary are required")
	}
	return nil
}

func (r *SubmitReviewRequest) toService() service.SubmitReviewRequest {
	return service.SubmitReviewRequest{
		Author:         r.Author,
		Lens:           r.Lens,
		Summary:        r.Summary,
		Highlights:     r.Highlights,
		HighlightsText: r.HighlightsText,
	}
}

type PipelineRequest struct {
	Stages []models.PipelineStage `json:"stages"`
}

func (r *PipelineRequest) Validate() error {
	if r.Stages == nil {
		return dErrors.New(dErrors.CodeBadRequest, "stages is required")
	}
	return nil
}

type GovernanceRequest struct {
	Flags []models.GovernanceFlag `json:"flags"`
}

func (r *GovernanceRequest) Validate() error {
	if r.Flags == nil {
		return dErrors.New(dErrors.CodeBadRequest, "flags is required")
	}
	return nil
}

type CertificatesRequest struct {
	Certificates []models.CertificateMeta `json:"certificates"`
}

func (r *CertificatesRequest) Validate() error {
	if r.Certificates == nil {
		return dErrors.New(dErrors.CodeBadRequest, "certificates is required")
	}
	return nil
}

// TribeResponse adds the derived figures the tribe section shows.
type TribeResponse struct {
	Graph   *models.TribeGraph `json:"graph"`
	Density float64            `json:"density"`
	Issues  []string           `json:"issues"`
}

func toTribeResponse(g *models.TribeGraph) TribeResponse {
	resp := TribeResponse{Graph: g, Issues: []string{}}
	if g == nil {
		return resp
	}
	resp.Density = g.Density()
	for _, issue := range g.Validate() {
		resp.Issues = append(resp.Issues, issue.String())
	}
	return resp
}
