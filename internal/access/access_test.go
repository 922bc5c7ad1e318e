package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qrlink/internal/access"
	customerrors "qrlink/internal/errors"
	"qrlink/internal/models"
)

func TestRequireOwner(t *testing.T) {
	code := &models.Code{OwnerID: "alice"}

	assert.NoError(t, access.RequireOwner(code, "alice"))

	err := access.RequireOwner(code, "mallory")
	assert.ErrorIs(t, err, customerrors.ErrNotOwner)
	assert.ErrorIs(t, err, customerrors.ErrForbidden)
}

func TestRequireMutable(t *testing.T) {
	assert.NoError(t, access.RequireMutable(&models.Code{Kind: models.KindDynamic}))

	err := access.RequireMutable(&models.Code{Kind: models.KindStatic})
	assert.ErrorIs(t, err, customerrors.ErrStaticImmutable)
	assert.ErrorIs(t, err, customerrors.ErrForbidden)
}
