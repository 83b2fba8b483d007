// Package internal contains the modelgov server: the HTTP surface over the
// model registry, the identity proxy, artifact storage, and the experiment
// tracking proxy.
package internal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/modelgov/modelgov/internal/api"
	"github.com/modelgov/modelgov/internal/authz"
	"github.com/modelgov/modelgov/internal/config"
	"github.com/modelgov/modelgov/internal/identity"
	"github.com/modelgov/modelgov/internal/registry"
	"github.com/modelgov/modelgov/internal/storage"
	"github.com/modelgov/modelgov/internal/tracking"
)

const shutdownTimeout = 10 * time.Second

// Version is the server version, stamped at build time.
var Version = "dev"

// Server ties the registry, identity proxy, artifact store and tracking
// client to the HTTP surface.
type Server struct {
	config    *config.Config
	store     registry.Store
	identity  *identity.Service
	artifacts *storage.Bucket
	tracking  *tracking.Client

	echo *echo.Echo
}

// NewServer assembles a Server from its already-constructed dependencies.
// The identity, artifact and tracking components are optional; routes that
// need an absent component answer with an internal error explaining the
// missing configuration.
func NewServer(
	conf *config.Config,
	store registry.Store,
	idSvc *identity.Service,
	artifacts *storage.Bucket,
	trackingClient *tracking.Client,
) *Server {
	s := &Server{
		config:    conf,
		store:     store,
		identity:  idSvc,
		artifacts: artifacts,
		tracking:  trackingClient,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = api.JSONErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.CORS.AllowedOrigin},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
	}))

	s.echo = e
	s.registerRoutes(e)
	return s
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/info", s.getInfo)

	e.GET("/models", s.listModels)
	e.POST("/models", s.createModel)
	e.GET("/models/metrics/summary", s.getMetricsSummary)
	e.GET("/models/:id", s.getModel)
	e.PUT("/models/:id", s.updateModel)
	e.DELETE("/models/:id", s.deleteModel)
	e.POST("/models/:id/artifacts/:type", s.uploadArtifact)
	e.POST("/models/:id/predict", s.predictModel)
	e.POST("/models/:id/retrain", s.retrainModel)

	e.POST("/auth/login", s.login)
	e.POST("/auth/register", s.register)
	e.POST("/auth/logout", s.logout)
	e.POST("/auth/refresh", s.refreshTokens)
	e.GET("/auth/profile", s.getProfile)
	e.PUT("/auth/profile", s.updateProfile)
	e.PUT("/auth/change-password", s.changePassword)
	e.POST("/auth/forgot-password", s.forgotPassword)
	e.POST("/auth/reset-password", s.resetPassword)
	e.POST("/auth/confirm-signup", s.confirmSignUp)
	e.POST("/auth/resend-confirmation", s.resendConfirmation)

	e.GET("/mlflow/experiments", s.listExperiments)
	e.GET("/mlflow/experiments/:id/runs", s.listRuns)
	e.GET("/mlflow/runs/:id", s.getRun)
	e.GET("/mlflow/runs/:id/artifacts", s.listRunArtifacts)
	e.POST("/mlflow/import", s.importRun)
}

// Run serves HTTP until the context is canceled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		errs <- s.echo.Start(fmt.Sprintf(":%d", s.config.Port))
	}()
	log.Infof("accepting incoming connections on port %d", s.config.Port)

	select {
	case err := <-errs:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(s.echo.Shutdown(shutdownCtx), "error shutting down http server")
	}
}

func (s *Server) getInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":         Version,
		"registry_source": s.config.Registry.Source,
	})
}

// systemActor is how writes without a resolvable user are attributed.
const systemActor = "system"

// authorize resolves the acting user from the request's bearer token and
// checks the capability against their role. Requests without a usable token
// act as "system"; a resolved user without the capability is rejected.
func (s *Server) authorize(c echo.Context, capability authz.Capability) (string, error) {
	if s.identity == nil {
		return systemActor, nil
	}
	token, ok := identity.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return systemActor, nil
	}
	user, err := s.identity.Profile(c.Request().Context(), token)
	if err != nil {
		return systemActor, nil
	}
	if !authz.Can(user.Role, capability) {
		return "", api.AsErrForbidden(
			"role %q does not grant %s", user.Role, capability)
	}
	return user.Email, nil
}
