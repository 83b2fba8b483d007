package identity

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgov/modelgov/internal/api"
	"github.com/modelgov/modelgov/pkg/model"
)

// fakeCognito implements the slices of the backend API the tests exercise;
// everything else panics through the embedded interface.
type fakeCognito struct {
	cognitoidentityprovideriface.CognitoIdentityProviderAPI

	initiateAuthErr error
	challengeName   string
	signOutCalls    int
	forgotCalls     int
	forgotErr       error
	userAttributes  map[string]string
}

func (f *fakeCognito) InitiateAuthWithContext(
	_ aws.Context, in *cognitoidentityprovider.InitiateAuthInput,
	_ ...request.Option,
) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	if f.initiateAuthErr != nil {
		return nil, f.initiateAuthErr
	}
	if f.challengeName != "" {
		return &cognitoidentityprovider.InitiateAuthOutput{
			ChallengeName: aws.String(f.challengeName),
			Session:       aws.String("session-token"),
		}, nil
	}
	return &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &cognitoidentityprovider.AuthenticationResultType{
			AccessToken:  aws.String("access"),
			RefreshToken: aws.String("refresh"),
			IdToken:      aws.String("id"),
		},
	}, nil
}

func (f *fakeCognito) GetUserWithContext(
	_ aws.Context, in *cognitoidentityprovider.GetUserInput, _ ...request.Option,
) (*cognitoidentityprovider.GetUserOutput, error) {
	var attrs []*cognitoidentityprovider.AttributeType
	for name, value := range f.userAttributes {
		attrs = append(attrs, &cognitoidentityprovider.AttributeType{
			Name: aws.String(name), Value: aws.String(value),
		})
	}
	return &cognitoidentityprovider.GetUserOutput{
		Username:       aws.String("user-1"),
		UserAttributes: attrs,
	}, nil
}

func (f *fakeCognito) GlobalSignOutWithContext(
	_ aws.Context, _ *cognitoidentityprovider.GlobalSignOutInput, _ ...request.Option,
) (*cognitoidentityprovider.GlobalSignOutOutput, error) {
	f.signOutCalls++
	return nil, awserr.NewRequestFailure(
		awserr.New(cognitoidentityprovider.ErrCodeNotAuthorizedException, "token revoked", nil),
		http.StatusUnauthorized, "req-1")
}

func (f *fakeCognito) ForgotPasswordWithContext(
	_ aws.Context, _ *cognitoidentityprovider.ForgotPasswordInput, _ ...request.Option,
) (*cognitoidentityprovider.ForgotPasswordOutput, error) {
	f.forgotCalls++
	return nil, f.forgotErr
}

func newTestService(fake *fakeCognito) *Service {
	return New(fake, "client-id")
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestService(&fakeCognito{userAttributes: map[string]string{
		"email":       "user@example.com",
		"name":        "Ada Lovelace",
		"custom:role": "editor",
	}})

	result, err := svc.Login(context.Background(), "user@example.com", "Sup3rSecret!")
	require.NoError(t, err)
	assert.Nil(t, result.Challenge)
	assert.Equal(t, "access", result.AccessToken)
	assert.Equal(t, "refresh", result.RefreshToken)
	require.NotNil(t, result.User)
	assert.Equal(t, "Ada Lovelace", result.User.FullName)
	assert.Equal(t, model.RoleEditor, result.User.Role)
}

func TestLoginChallengePassthrough(t *testing.T) {
	svc := newTestService(&fakeCognito{challengeName: "NEW_PASSWORD_REQUIRED"})

	result, err := svc.Login(context.Background(), "user@example.com", "Sup3rSecret!")
	require.NoError(t, err)
	require.NotNil(t, result.Challenge)
	assert.Equal(t, "NEW_PASSWORD_REQUIRED", result.Challenge.Name)
	assert.Equal(t, "session-token", result.Challenge.Session)
	assert.Empty(t, result.AccessToken)
	assert.Nil(t, result.User)
}

func TestLoginErrorTranslation(t *testing.T) {
	cases := []struct {
		code   string
		expect error
	}{
		{cognitoidentityprovider.ErrCodeNotAuthorizedException, api.ErrUnauthenticated},
		{cognitoidentityprovider.ErrCodeUserNotFoundException, api.ErrUnauthenticated},
		{cognitoidentityprovider.ErrCodeUserNotConfirmedException, api.ErrNotConfirmed},
		{cognitoidentityprovider.ErrCodeTooManyRequestsException, api.ErrRateLimited},
	}
	for _, tc := range cases {
		svc := newTestService(&fakeCognito{
			initiateAuthErr: awserr.New(tc.code, "backend detail", nil),
		})
		_, err := svc.Login(context.Background(), "user@example.com", "Sup3rSecret!")
		assert.ErrorIs(t, err, tc.expect, tc.code)
	}
}

func TestUserNotFoundIndistinguishableFromBadPassword(t *testing.T) {
	badPassword := newTestService(&fakeCognito{initiateAuthErr: awserr.New(
		cognitoidentityprovider.ErrCodeNotAuthorizedException, "x", nil)})
	noUser := newTestService(&fakeCognito{initiateAuthErr: awserr.New(
		cognitoidentityprovider.ErrCodeUserNotFoundException, "x", nil)})

	_, err1 := badPassword.Login(context.Background(), "a@example.com", "Sup3rSecret!")
	_, err2 := noUser.Login(context.Background(), "b@example.com", "Sup3rSecret!")
	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestRefreshRejectsChallengeResponse(t *testing.T) {
	svc := newTestService(&fakeCognito{challengeName: "NEW_PASSWORD_REQUIRED"})

	// A challenge carries no token set; the refresh must fail as
	// unauthenticated rather than crash on the missing result.
	_, _, err := svc.Refresh(context.Background(), "refresh-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthenticated)
}

func TestLogoutIsIdempotent(t *testing.T) {
	fake := &fakeCognito{}
	svc := newTestService(fake)

	// The backend rejects both calls; neither surfaces an error.
	svc.Logout(context.Background(), "stale-token")
	svc.Logout(context.Background(), "stale-token")
	assert.Equal(t, 2, fake.signOutCalls)
}

func TestForgotPasswordSuppressesFailures(t *testing.T) {
	fake := &fakeCognito{forgotErr: awserr.New(
		cognitoidentityprovider.ErrCodeUserNotFoundException, "no such user", nil)}
	svc := newTestService(fake)

	svc.ForgotPassword(context.Background(), "ghost@example.com")
	assert.Equal(t, 1, fake.forgotCalls)
}

func TestProfileDefaults(t *testing.T) {
	svc := newTestService(&fakeCognito{userAttributes: map[string]string{
		"email":       "user@example.com",
		"custom:role": "cosmonaut",
	}})

	user, err := svc.Profile(context.Background(), "access")
	require.NoError(t, err)
	// Missing name falls back to the email; unknown roles degrade to viewer.
	assert.Equal(t, "user@example.com", user.FullName)
	assert.Equal(t, model.RoleViewer, user.Role)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def.ghi")
	require.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "Bearer a b"} {
		_, ok := BearerToken(header)
		assert.False(t, ok, "header %q", header)
	}
}
