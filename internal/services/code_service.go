// Package services contains the business logic layer: code lifecycle,
// redirect resolution and analytics aggregation.
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"qrlink/internal/access"
	customerrors "qrlink/internal/errors"
	"qrlink/internal/models"
	"qrlink/internal/qrimage"
	"qrlink/internal/repository"
)

// charset is the alphabet for redirect tokens: 62 alphanumerics, so an
// 8-character token has 62^8 (~218 trillion) possible values.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// tokenLength is the length of generated redirect tokens.
const tokenLength = 8

// maxTokenRetries bounds the collision retry loop during creation.
const maxTokenRetries = 5

// CodeService provides the lifecycle operations for code records.
type CodeService struct {
	codeRepo repository.CodeRepository
	encoder  qrimage.Encoder
	baseURL  string
}

// NewCodeService creates and returns a new CodeService. baseURL is the
// public prefix under which redirect tokens are served.
func NewCodeService(codeRepo repository.CodeRepository, encoder qrimage.Encoder, baseURL string) *CodeService {
	return &CodeService{
		codeRepo: codeRepo,
		encoder:  encoder,
		baseURL:  baseURL,
	}
}

// GenerateToken generates a cryptographically random redirect token.
func (s *CodeService) GenerateToken(length int) (string, error) {
	token := make([]byte, length)
	for i := range token {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		token[i] = charset[num.Int64()]
	}
	return string(token), nil
}

// RedirectURL builds the public resolution URL embedded in the QR image.
func (s *CodeService) RedirectURL(token string) string {
	return fmt.Sprintf("%s/qr/%s", s.baseURL, token)
}

// CreateCode validates the input and creates a code record for the owner.
// Dynamic codes receive a fresh globally unique token and a QR image of
// their public redirect URL. When only the image encoding fails, the created
// record is still returned together with the encoding error: the record is
// durable at that point and the caller can retry encoding without
// recreating the code.
func (s *CodeService) CreateCode(ownerID, kind, targetURL string) (*models.Code, []byte, error) {
	if !models.ValidKind(kind) {
		return nil, nil, customerrors.ErrInvalidKind
	}
	if err := validateTargetURL(targetURL); err != nil {
		return nil, nil, err
	}

	code := &models.Code{
		OwnerID:   ownerID,
		Kind:      kind,
		TargetURL: targetURL,
	}

	if kind == models.KindDynamic {
		token, err := s.uniqueToken()
		if err != nil {
			return nil, nil, err
		}
		code.Token = &token
	}

	if err := s.codeRepo.Create(code); err != nil {
		return nil, nil, err
	}

	// Static codes are handed back to their owner directly; only dynamic
	// codes are reachable through the redirect path and get an image.
	if code.Token == nil {
		return code, nil, nil
	}

	png, err := s.encoder.Encode(s.RedirectURL(*code.Token))
	if err != nil {
		logrus.Warnf("QR encoding failed for code ID %d: %v", code.ID, err)
		return code, nil, err
	}
	return code, png, nil
}

// uniqueToken generates a token and verifies it is unused, retrying on
// collision. The unique index on the token column catches the remaining
// race between check and insert.
func (s *CodeService) uniqueToken() (string, error) {
	for i := 0; i < maxTokenRetries; i++ {
		token, err := s.GenerateToken(tokenLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}

		_, err = s.codeRepo.FindByToken(token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return token, nil
			}
			return "", fmt.Errorf("database error checking token uniqueness: %w", err)
		}

		logrus.Warnf("Token %q already exists, retrying generation (%d/%d)...", token, i+1, maxTokenRetries)
	}
	return "", customerrors.ErrTokenGenerationFailed
}

// UpdateTarget rewrites the target URL of a dynamic code owned by the
// caller and stamps the update time. The write itself is transactional in
// the repository so concurrent updates of the same record serialize.
func (s *CodeService) UpdateTarget(callerID string, id uint, newURL string) (*models.Code, error) {
	code, err := s.codeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrCodeNotFound
		}
		return nil, err
	}

	if err := access.RequireOwner(code, callerID); err != nil {
		return nil, err
	}
	if err := access.RequireMutable(code); err != nil {
		return nil, err
	}
	if err := validateTargetURL(newURL); err != nil {
		return nil, err
	}

	return s.codeRepo.UpdateTarget(code.ID, newURL)
}

// ListByOwner returns every code belonging to the caller.
func (s *CodeService) ListByOwner(callerID string) ([]models.Code, error) {
	return s.codeRepo.FindByOwner(callerID)
}

// QRImage regenerates the QR image for an owned dynamic code. This is the
// retry path when encoding failed during creation.
func (s *CodeService) QRImage(callerID string, id uint) ([]byte, error) {
	code, err := s.codeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrCodeNotFound
		}
		return nil, err
	}

	if err := access.RequireOwner(code, callerID); err != nil {
		return nil, err
	}
	if code.Token == nil {
		return nil, customerrors.ErrStaticNoToken
	}

	return s.encoder.Encode(s.RedirectURL(*code.Token))
}

// validateTargetURL accepts only well-formed absolute http(s) URLs.
func validateTargetURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return customerrors.ErrInvalidURL
	}
	return nil
}
