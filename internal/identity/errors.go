package identity

import (
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/modelgov/modelgov/internal/api"
)

// translateAuthErr maps identity-backend error codes for credential exchange
// into the fixed failure taxonomy. Unknown codes become internal errors.
func translateAuthErr(err error) error {
	code := awsErrCode(err)
	switch code {
	case cognitoidentityprovider.ErrCodeNotAuthorizedException:
		return api.AsErrUnauthenticated("invalid email or password")
	case cognitoidentityprovider.ErrCodeUserNotFoundException:
		return api.AsErrUnauthenticated("invalid email or password")
	case cognitoidentityprovider.ErrCodeUserNotConfirmedException:
		return api.AsErrNotConfirmed(
			"user account not confirmed, check your email for confirmation instructions")
	case cognitoidentityprovider.ErrCodeTooManyRequestsException:
		return api.AsErrRateLimited("too many login attempts, please try again later")
	}
	log.WithError(err).Error("identity backend login failure")
	return errors.Wrap(err, "identity backend failure")
}

// translateAccountErr maps error codes for registration and recovery flows.
func translateAccountErr(err error) error {
	switch awsErrCode(err) {
	case cognitoidentityprovider.ErrCodeUsernameExistsException:
		return api.AsValidationError("user with this email already exists")
	case cognitoidentityprovider.ErrCodeInvalidPasswordException:
		return api.AsValidationError("password does not meet requirements")
	case cognitoidentityprovider.ErrCodeInvalidParameterException:
		return api.AsValidationError("invalid user data provided")
	case cognitoidentityprovider.ErrCodeCodeMismatchException:
		return api.AsValidationError("invalid confirmation code")
	case cognitoidentityprovider.ErrCodeExpiredCodeException:
		return api.AsValidationError("confirmation code has expired")
	case cognitoidentityprovider.ErrCodeTooManyRequestsException:
		return api.AsErrRateLimited("too many requests, please try again later")
	}
	log.WithError(err).Error("identity backend account failure")
	return errors.Wrap(err, "identity backend failure")
}

func awsErrCode(err error) string {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code()
	}
	return ""
}
