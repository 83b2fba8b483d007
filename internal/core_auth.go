package internal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/modelgov/modelgov/internal/api"
	"github.com/modelgov/modelgov/internal/identity"
	"github.com/modelgov/modelgov/pkg/model"
	"github.com/modelgov/modelgov/pkg/validate"
)

func (s *Server) identityService() (*identity.Service, error) {
	if s.identity == nil {
		return nil, errors.New("identity backend is not configured")
	}
	return s.identity, nil
}

// bearer extracts the access token from the request, answering 401 when it
// is missing or malformed.
func bearer(c echo.Context) (string, error) {
	token, ok := identity.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return "", api.AsErrUnauthenticated("missing or malformed authorization header")
	}
	return token, nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return api.AsValidationError("malformed login payload")
	}
	if errs := validate.Login(req.Email, req.Password); len(errs) > 0 {
		return api.AsValidationError("%s", errs.Error())
	}
	result, err := svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) register(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	var req validate.Registration
	if err := c.Bind(&req); err != nil {
		return api.AsValidationError("malformed registration payload")
	}
	if errs := validate.Register(req); len(errs) > 0 {
		return api.AsValidationError("%s", errs.Error())
	}
	result, err := svc.Register(
		c.Request().Context(), req.Email, req.Password, req.FullName, model.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":              "registration successful, check your email for confirmation instructions",
		"userId":               result.UserID,
		"confirmationRequired": result.ConfirmationRequired,
	})
}

// logout always succeeds: a stale or missing token still ends the session
// from the client's point of view.
func (s *Server) logout(c echo.Context) error {
	if s.identity != nil {
		if token, ok := identity.BearerToken(
			c.Request().Header.Get(echo.HeaderAuthorization)); ok {
			s.identity.Logout(c.Request().Context(), token)
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (s *Server) refreshTokens(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return api.AsValidationError("a refresh token is required")
	}
	accessToken, idToken, err := svc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"accessToken": accessToken,
		"idToken":     idToken,
	})
}

func (s *Server) getProfile(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	token, err := bearer(c)
	if err != nil {
		return err
	}
	user, err := svc.Profile(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) updateProfile(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	token, err := bearer(c)
	if err != nil {
		return err
	}
	var req identity.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return api.AsValidationError("malformed profile payload")
	}
	user, err := svc.UpdateProfile(c.Request().Context(), token, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) changePassword(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	token, err := bearer(c)
	if err != nil {
		return err
	}
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return api.AsValidationError("malformed password payload")
	}
	var errs validate.Errors
	if req.CurrentPassword == "" {
		errs = append(errs, validate.FieldError{
			Field: "currentPassword", Message: "current password is required",
		})
	}
	errs = append(errs, validate.Password(req.NewPassword)...)
	if len(errs) > 0 {
		return api.AsValidationError("%s", errs.Error())
	}
	if err := svc.ChangePassword(
		c.Request().Context(), token, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// forgotPassword answers with the same message whether or not the account
// exists, to prevent address enumeration.
func (s *Server) forgotPassword(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return api.AsValidationError("an email address is required")
	}
	svc.ForgotPassword(c.Request().Context(), req.Email)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "if an account with that email exists, a password reset code has been sent",
	})
}

func (s *Server) resetPassword(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	var req struct {
		Email            string `json:"email"`
		ConfirmationCode string `json:"confirmationCode"`
		NewPassword      string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return api.AsValidationError("malformed reset payload")
	}
	if req.Email == "" || req.ConfirmationCode == "" {
		return api.AsValidationError("email and confirmation code are required")
	}
	if errs := validate.Password(req.NewPassword); len(errs) > 0 {
		return api.AsValidationError("%s", errs.Error())
	}
	if err := svc.ResetPassword(
		c.Request().Context(), req.Email, req.ConfirmationCode, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password reset successfully"})
}

func (s *Server) confirmSignUp(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	var req struct {
		Email            string `json:"email"`
		ConfirmationCode string `json:"confirmationCode"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" || req.ConfirmationCode == "" {
		return api.AsValidationError("email and confirmation code are required")
	}
	if err := svc.ConfirmSignUp(
		c.Request().Context(), req.Email, req.ConfirmationCode); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "account confirmed successfully"})
}

func (s *Server) resendConfirmation(c echo.Context) error {
	svc, err := s.identityService()
	if err != nil {
		return err
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return api.AsValidationError("an email address is required")
	}
	if err := svc.ResendConfirmation(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "confirmation code resent"})
}
