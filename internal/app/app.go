package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/aesops/internal/auth"
	"github.com/abrezinsky/aesops/internal/config"
	"github.com/abrezinsky/aesops/internal/handlers"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/metrics"
	"github.com/abrezinsky/aesops/internal/pairing"
	"github.com/abrezinsky/aesops/internal/repository"
	"github.com/abrezinsky/aesops/internal/services"
	"github.com/abrezinsky/aesops/internal/websocket"
	"github.com/abrezinsky/aesops/pkg/nrdb"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	handlers *handlers.Handlers
	repo     *repository.Repository
	hub      *websocket.Hub
	baseURL  string
}

// New creates and initializes a new application instance
func New(cfg *config.Config, log logger.Logger, adminAuth *auth.Auth, client nrdb.Client) (*App, error) {
	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", getPreferredIP(realNetworkProvider{}), cfg.Server.Port)
	}

	tie := pairing.NewRandomTieBreaker(cfg.Pairing.Seed)

	rec := metrics.NewPrometheus()
	settingsService := services.NewSettingsService(log, repo, baseURL)
	roundService := services.NewRoundService(log, repo, rec, tie)
	participantService := services.NewParticipantService(log, repo)
	svc := handlers.Services{
		Tournaments:  services.NewTournamentService(log, repo, roundService, cfg.Pairing.ScoreFactor),
		Participants: participantService,
		Rounds:       roundService,
		Standings:    services.NewStandingsService(log, repo, settingsService),
		Identities:   services.NewIdentityService(log, client),
		Settings:     settingsService,
	}

	hub := websocket.New(log)
	roundService.SetBroadcaster(hub)
	participantService.SetBroadcaster(hub)

	h := handlers.New(svc, adminAuth, hub, rec.Handler(), repo, log)

	return &App{
		log:      log,
		cfg:      cfg,
		handlers: h,
		repo:     repo,
		hub:      hub,
		baseURL:  baseURL,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL returns the address printed on QR codes until an admin changes it
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close releases the database
func (a *App) Close() error {
	return a.repo.Close()
}

// Run serves HTTP until ctx is cancelled, then drains open requests
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.hub.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "url", a.baseURL)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider lists network interfaces
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the address players on the venue network can reach.
// Private IPv4 ranges win, then any non-loopback IPv4, then localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
