package handlers

import "github.com/abrezinsky/aesops/internal/services"

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Password string `json:"password"`
}

// ParticipantRequest creates or updates a participant
type ParticipantRequest struct {
	Name           string `json:"name"`
	CorpIdentity   string `json:"corp_identity"`
	RunnerIdentity string `json:"runner_identity"`
	Force          bool   `json:"force"`
}

func (r ParticipantRequest) registration() services.Registration {
	return services.Registration{
		Name:           r.Name,
		CorpIdentity:   r.CorpIdentity,
		RunnerIdentity: r.RunnerIdentity,
		Force:          r.Force,
	}
}

// ResultRequest reports one table, either as scores or as an outcome
type ResultRequest struct {
	Outcome     services.Outcome `json:"outcome,omitempty"`
	CorpScore   *int             `json:"corp_score,omitempty"`
	RunnerScore *int             `json:"runner_score,omitempty"`
}

// ImportResultsRequest reports many tables of one round
type ImportResultsRequest struct {
	Results []services.TableResult `json:"results"`
}
