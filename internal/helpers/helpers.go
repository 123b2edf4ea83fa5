package helpers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/golang-jwt/jwt/v5"
)

const AvatarFolder = "avatars"

// MintSessionToken signs an HS256 session token for the given user.
func MintSessionToken(username, userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %v", err)
	}
	return signed, nil
}

// ValidateSessionToken parses and verifies a session token.
func ValidateSessionToken(tokenStr, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

// ValidateFederatedToken verifies a provider-issued identity token
// against the provider's JWKS endpoint and returns its claims.
func ValidateFederatedToken(ctx context.Context, jwksURL, tokenStr string) (*FederatedClaims, error) {
	if jwksURL == "" {
		return nil, errors.New("federated login is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx: ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider JWKS: %v", err)
	}
	defer jwks.EndBackground()

	token, err := jwt.ParseWithClaims(tokenStr, &FederatedClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("federated token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*FederatedClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired federated token")
	}

	return claims, nil
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	return hasLower && hasUpper && hasNumber
}

// UploadProfileImage pushes a profile picture (file path or data URI)
// to Cloudinary and returns the hosted URL.
func UploadProfileImage(ctx context.Context, cld *cloudinary.Cloudinary, imageData string) (string, error) {
	if strings.TrimSpace(imageData) == "" {
		return "", errors.New("image data cannot be empty")
	}

	uploadResult, err := cld.Upload.Upload(ctx, imageData, uploader.UploadParams{
		Folder: AvatarFolder,
		Tags:   []string{"ideanote-app"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload profile image: %v", err)
	}

	return uploadResult.SecureURL, nil
}
