package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"qrlink/internal/classifier"
	customerrors "qrlink/internal/errors"
	"qrlink/internal/geo"
	"qrlink/internal/models"
	"qrlink/internal/repository"
)

// Resolver handles the redirect path: token lookup, client classification,
// visit recording and returning the live target URL. The redirect is the
// primary effect; telemetry must never block or fail it.
type Resolver struct {
	codeRepo repository.CodeRepository
	locator  geo.Locator
	recorder VisitRecorder
}

// NewResolver creates and returns a new Resolver.
func NewResolver(codeRepo repository.CodeRepository, locator geo.Locator, recorder VisitRecorder) *Resolver {
	return &Resolver{
		codeRepo: codeRepo,
		locator:  locator,
		recorder: recorder,
	}
}

// Resolve looks up the code behind token, records a visit with the derived
// client metadata and returns the current target URL for the caller to issue
// as a redirect.
func (r *Resolver) Resolve(ctx context.Context, token, clientIP, userAgent string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	code, err := r.codeRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", customerrors.ErrCodeNotFound
		}
		return "", err
	}

	device, platform := classifier.Classify(userAgent)

	// Geo failure is absorbed here: the visit is recorded with the
	// unknown location and resolution proceeds.
	location, err := r.locator.Locate(clientIP)
	if err != nil {
		logrus.Debugf("Geo lookup miss for %s: %v", clientIP, err)
		location = geo.LocationUnknown
	}

	event := models.VisitEvent{
		CodeID:    code.ID,
		Timestamp: time.Now(),
		IPAddress: clientIP,
		Location:  location,
		Device:    device,
		Platform:  platform,
		TargetURL: code.TargetURL,
	}

	// Recording failure is logged, not surfaced: the user still gets
	// their redirect.
	if err := r.recorder.Record(event); err != nil {
		logrus.Errorf("Failed to record visit for code ID %d (IP: %s): %v", code.ID, clientIP, err)
	}

	return code.TargetURL, nil
}
