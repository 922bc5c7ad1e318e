// Package access holds the ownership and mutability checks performed before
// any privileged read or mutation of a code record. Both checks are pure
// predicates with no side effects.
package access

import (
	customerrors "qrlink/internal/errors"
	"qrlink/internal/models"
)

// RequireOwner fails with a Forbidden error when the caller does not own the
// code record.
func RequireOwner(code *models.Code, callerID string) error {
	if code.OwnerID != callerID {
		return customerrors.ErrNotOwner
	}
	return nil
}

// RequireMutable fails with a Forbidden error when the code is static.
// A static code's target URL is fixed at creation, even for its owner.
func RequireMutable(code *models.Code) error {
	if !code.IsDynamic() {
		return customerrors.ErrStaticImmutable
	}
	return nil
}
