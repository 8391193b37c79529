package errors

import (
	"fmt"

	apperrors "github.com/devayla/base-counter/common/errors"
)

func MissingAddressOrFid() *apperrors.AppError {
	return apperrors.New(apperrors.CodeInvalidInput, "Missing userAddress or fid")
}

func MissingLeaderboardFields() *apperrors.AppError {
	return apperrors.New(apperrors.CodeInvalidInput, "Missing required fields")
}

func AddressNotAssociated() *apperrors.AppError {
	return apperrors.New(apperrors.CodeForbidden, "Address verification failed: Address is not associated with this FID")
}

func FollowerFloorNotMet(required int64) *apperrors.AppError {
	return apperrors.New(apperrors.CodeForbidden,
		fmt.Sprintf("Follower count requirement not met: more than %d followers required", required))
}

func SignerNotConfigured() *apperrors.AppError {
	return apperrors.New(apperrors.CodeMisconfigured, "SIGNER_PRIVATE_KEY is not configured on the server")
}

func WrapSigningError(err error) *apperrors.AppError {
	return apperrors.Wrap(err, apperrors.CodeSigningError, "Failed to generate signature")
}

func GiftBoxLimitReached() *apperrors.AppError {
	return apperrors.New(apperrors.CodeRateLimited, "Gift box already claimed in the last 24 hours")
}

func DailyMintLimitReached(limit int) *apperrors.AppError {
	return apperrors.New(apperrors.CodeRateLimited, fmt.Sprintf("Daily mint limit of %d reached", limit))
}

func MissingAuthHeaders() *apperrors.AppError {
	return apperrors.New(apperrors.CodeUnauthorized, "Missing authentication headers")
}

func InvalidFusedKey() *apperrors.AppError {
	return apperrors.New(apperrors.CodeUnauthorized, "Invalid authentication key")
}

func AuthKeyReused() *apperrors.AppError {
	return apperrors.New(apperrors.CodeUnauthorized, "Authentication key already used")
}

func NoFileProvided() *apperrors.AppError {
	return apperrors.New(apperrors.CodeInvalidInput, "No file provided")
}

func FileTooLarge() *apperrors.AppError {
	return apperrors.New(apperrors.CodePayloadTooLarge, "File too large")
}
