package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/abrezinsky/aesops/internal/errors"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/pkg/nrdb"
)

// IdentityService looks up card identities for registration forms
type IdentityService struct {
	log    logger.Logger
	client nrdb.Client
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(log logger.Logger, client nrdb.Client) *IdentityService {
	return &IdentityService{log: log, client: client}
}

// ListIdentities returns identities for side ("corp" or "runner"), or all
// of them when side is empty.
func (s *IdentityService) ListIdentities(ctx context.Context, side string) ([]models.Identity, error) {
	side = strings.ToLower(strings.TrimSpace(side))
	if side != "" && side != "corp" && side != "runner" {
		return nil, errors.Validationf("side must be corp or runner")
	}
	ids, err := s.client.FetchIdentities(ctx)
	if err != nil {
		s.log.Warn("Identity lookup failed", "url", s.client.BaseURL(), "error", err)
		return nil, fmt.Errorf("fetching identities: %w", err)
	}
	if side == "" {
		return ids, nil
	}
	out := make([]models.Identity, 0, len(ids))
	for _, id := range ids {
		if id.Side == side {
			out = append(out, id)
		}
	}
	return out, nil
}
