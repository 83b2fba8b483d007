// Package identity proxies credential and profile operations to the managed
// identity backend, normalizing its error codes into the server's failure
// taxonomy. The backend remains the source of record for all accounts.
package identity

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/modelgov/modelgov/internal/api"
	"github.com/modelgov/modelgov/pkg/model"
)

const (
	authFlowPassword = "USER_PASSWORD_AUTH"
	authFlowRefresh  = "REFRESH_TOKEN_AUTH"
	roleAttribute    = "custom:role"
)

// Service forwards identity operations to the backend.
type Service struct {
	client   cognitoidentityprovideriface.CognitoIdentityProviderAPI
	clientID string
}

// New returns a Service using the given backend client.
func New(
	client cognitoidentityprovideriface.CognitoIdentityProviderAPI, clientID string,
) *Service {
	return &Service{client: client, clientID: clientID}
}

// Challenge is a secondary authentication demand from the backend, surfaced
// unmodified for the client to resolve.
type Challenge struct {
	Name       string            `json:"challenge"`
	Session    string            `json:"session"`
	Parameters map[string]string `json:"challengeParameters"`
}

// LoginResult is either a token set with the user's profile, or a challenge.
type LoginResult struct {
	Challenge    *Challenge  `json:"challenge,omitempty"`
	User         *model.User `json:"user,omitempty"`
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	IDToken      string      `json:"idToken,omitempty"`
}

// Login exchanges credentials for tokens. A challenge from the backend is
// passed through rather than resolved.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	out, err := s.client.InitiateAuthWithContext(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: aws.String(authFlowPassword),
		ClientId: aws.String(s.clientID),
		AuthParameters: map[string]*string{
			"USERNAME": aws.String(email),
			"PASSWORD": aws.String(password),
		},
	})
	if err != nil {
		return nil, translateAuthErr(err)
	}

	if out.ChallengeName != nil {
		return &LoginResult{Challenge: &Challenge{
			Name:       aws.StringValue(out.ChallengeName),
			Session:    aws.StringValue(out.Session),
			Parameters: aws.StringValueMap(out.ChallengeParameters),
		}}, nil
	}

	result := &LoginResult{
		AccessToken:  aws.StringValue(out.AuthenticationResult.AccessToken),
		RefreshToken: aws.StringValue(out.AuthenticationResult.RefreshToken),
		IDToken:      aws.StringValue(out.AuthenticationResult.IdToken),
	}
	user, err := s.Profile(ctx, result.AccessToken)
	if err != nil {
		return nil, err
	}
	user.LastLogin = time.Now().UTC()
	result.User = user
	return result, nil
}

// RegisterResult reports the outcome of a signup.
type RegisterResult struct {
	UserID               string `json:"userId"`
	ConfirmationRequired bool   `json:"confirmationRequired"`
}

// Register creates an account with the backend.
func (s *Service) Register(
	ctx context.Context, email, password, fullName string, role model.Role,
) (*RegisterResult, error) {
	if role == "" {
		role = model.RoleViewer
	}
	out, err := s.client.SignUpWithContext(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []*cognitoidentityprovider.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(fullName)},
			{Name: aws.String(roleAttribute), Value: aws.String(string(role))},
		},
	})
	if err != nil {
		return nil, translateAccountErr(err)
	}
	return &RegisterResult{
		UserID:               aws.StringValue(out.UserSub),
		ConfirmationRequired: !aws.BoolValue(out.UserConfirmed),
	}, nil
}

// Refresh exchanges a refresh token for new access and id tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	out, err := s.client.InitiateAuthWithContext(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: aws.String(authFlowRefresh),
		ClientId: aws.String(s.clientID),
		AuthParameters: map[string]*string{
			"REFRESH_TOKEN": aws.String(refreshToken),
		},
	})
	if err != nil {
		return "", "", api.AsErrUnauthenticated("invalid or expired refresh token")
	}
	// The backend may answer a refresh with a challenge instead of tokens;
	// that cannot be resolved here, so the client must log in again.
	if out.AuthenticationResult == nil {
		return "", "", api.AsErrUnauthenticated("refresh token requires re-authentication")
	}
	return aws.StringValue(out.AuthenticationResult.AccessToken),
		aws.StringValue(out.AuthenticationResult.IdToken), nil
}

// Logout invalidates the session. It never fails: signing out an
// already-invalid token is still a successful logout.
func (s *Service) Logout(ctx context.Context, accessToken string) {
	_, err := s.client.GlobalSignOutWithContext(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		log.WithError(err).Debug("sign-out of invalid session ignored")
	}
}

// Profile fetches the user's profile from the backend.
func (s *Service) Profile(ctx context.Context, accessToken string) (*model.User, error) {
	out, err := s.client.GetUserWithContext(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, api.AsErrUnauthenticated("invalid or expired access token")
	}

	attrs := map[string]string{}
	for _, attr := range out.UserAttributes {
		attrs[aws.StringValue(attr.Name)] = aws.StringValue(attr.Value)
	}

	username := aws.StringValue(out.Username)
	fullName := attrs["name"]
	if fullName == "" {
		fullName = attrs["email"]
	}
	role := model.Role(attrs[roleAttribute])
	if !role.Valid() {
		role = model.RoleViewer
	}

	return &model.User{
		ID:        username,
		Username:  username,
		Email:     attrs["email"],
		FullName:  fullName,
		Role:      role,
		LastLogin: time.Now().UTC(),
	}, nil
}

// ProfileUpdate carries the attributes a user may change on their profile.
type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
}

// UpdateProfile pushes changed attributes to the backend and returns the
// refreshed profile. An update with no effective attributes is a validation
// error.
func (s *Service) UpdateProfile(
	ctx context.Context, accessToken string, update ProfileUpdate,
) (*model.User, error) {
	var attrs []*cognitoidentityprovider.AttributeType
	if update.FullName != nil && *update.FullName != "" {
		attrs = append(attrs, &cognitoidentityprovider.AttributeType{
			Name: aws.String("name"), Value: aws.String(*update.FullName),
		})
	}
	if update.Role != nil && *update.Role != "" {
		if !model.Role(*update.Role).Valid() {
			return nil, api.AsValidationError("role must be one of admin, editor, viewer")
		}
		attrs = append(attrs, &cognitoidentityprovider.AttributeType{
			Name: aws.String(roleAttribute), Value: aws.String(*update.Role),
		})
	}
	if len(attrs) == 0 {
		return nil, api.AsValidationError("no valid attributes to update")
	}

	_, err := s.client.UpdateUserAttributesWithContext(ctx,
		&cognitoidentityprovider.UpdateUserAttributesInput{
			AccessToken:    aws.String(accessToken),
			UserAttributes: attrs,
		})
	if err != nil {
		return nil, translateAccountErr(err)
	}
	return s.Profile(ctx, accessToken)
}

// ChangePassword performs an authenticated password change.
func (s *Service) ChangePassword(
	ctx context.Context, accessToken, currentPassword, newPassword string,
) error {
	_, err := s.client.ChangePasswordWithContext(ctx, &cognitoidentityprovider.ChangePasswordInput{
		AccessToken:      aws.String(accessToken),
		PreviousPassword: aws.String(currentPassword),
		ProposedPassword: aws.String(newPassword),
	})
	if err != nil {
		if awsErrCode(err) == cognitoidentityprovider.ErrCodeNotAuthorizedException {
			return api.AsValidationError("current password is incorrect")
		}
		return translateAccountErr(err)
	}
	return nil
}

// ForgotPassword starts the recovery flow. It reports success regardless of
// whether the account exists, to prevent address enumeration.
func (s *Service) ForgotPassword(ctx context.Context, email string) {
	_, err := s.client.ForgotPasswordWithContext(ctx, &cognitoidentityprovider.ForgotPasswordInput{
		ClientId: aws.String(s.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		log.WithError(err).Debug("forgot-password request suppressed")
	}
}

// ResetPassword completes the recovery flow with a confirmation code.
func (s *Service) ResetPassword(
	ctx context.Context, email, confirmationCode, newPassword string,
) error {
	_, err := s.client.ConfirmForgotPasswordWithContext(ctx,
		&cognitoidentityprovider.ConfirmForgotPasswordInput{
			ClientId:         aws.String(s.clientID),
			Username:         aws.String(email),
			ConfirmationCode: aws.String(confirmationCode),
			Password:         aws.String(newPassword),
		})
	if err != nil {
		return translateAccountErr(err)
	}
	return nil
}

// ConfirmSignUp confirms a newly registered account.
func (s *Service) ConfirmSignUp(ctx context.Context, email, confirmationCode string) error {
	_, err := s.client.ConfirmSignUpWithContext(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(confirmationCode),
	})
	if err != nil {
		return translateAccountErr(err)
	}
	return nil
}

// ResendConfirmation resends the signup confirmation code.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	_, err := s.client.ResendConfirmationCodeWithContext(ctx,
		&cognitoidentityprovider.ResendConfirmationCodeInput{
			ClientId: aws.String(s.clientID),
			Username: aws.String(email),
		})
	if err != nil {
		return errors.Wrap(translateAccountErr(err), "failed to resend confirmation code")
	}
	return nil
}
