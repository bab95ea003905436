package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/abrezinsky/aesops/internal/errors"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/services"
	"github.com/abrezinsky/aesops/pkg/nrdb"
)

func TestIdentityService_ListIdentities(t *testing.T) {
	client := nrdb.NewMockClient(nrdb.WithIdentities([]models.Identity{
		{Code: "1", Name: "Azmari EdTech", Side: "corp"},
		{Code: "2", Name: "Zahya Sadeghi", Side: "runner"},
		{Code: "3", Name: "Thule Subsea", Side: "corp"},
	}))
	svc := services.NewIdentityService(logger.Nop(), client)
	ctx := context.Background()

	tests := []struct {
		side string
		want int
	}{
		{"", 3},
		{"corp", 2},
		{"Runner", 1},
	}
	for _, tt := range tests {
		t.Run("side="+tt.side, func(t *testing.T) {
			ids, err := svc.ListIdentities(ctx, tt.side)
			if err != nil {
				t.Fatalf("ListIdentities failed: %v", err)
			}
			if len(ids) != tt.want {
				t.Errorf("expected %d identities, got %d", tt.want, len(ids))
			}
		})
	}

	if _, err := svc.ListIdentities(ctx, "both"); !errors.IsKind(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestIdentityService_ClientError(t *testing.T) {
	svc := services.NewIdentityService(logger.Nop(), nrdb.NewMockClient(nrdb.WithFetchError(stderrors.New("offline"))))
	if _, err := svc.ListIdentities(context.Background(), ""); err == nil {
		t.Error("expected error")
	}
}
