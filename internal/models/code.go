package models

import "time"

// Code kinds. A static code points at a fixed URL forever; a dynamic code
// carries a redirect token and its target may be rewritten by its owner.
const (
	KindStatic  = "static"
	KindDynamic = "dynamic"
)

// Code represents a QR code record in the database.
type Code struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OwnerID   string `gorm:"index;size:64;not null" json:"owner_id"`
	Kind      string `gorm:"size:10;not null" json:"kind"`
	TargetURL string `gorm:"not null" json:"target_url"`

	// Token is the public redirect identifier. Only dynamic codes get one;
	// it is assigned once at creation and never changes. Nullable so the
	// unique index ignores static rows.
	Token *string `gorm:"uniqueIndex;size:16" json:"token,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// LastUpdatedAt stays nil until the first target update. Mapped to a
	// plain column so GORM's UpdatedAt auto-touch does not apply.
	LastUpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// IsDynamic reports whether the code's target may be rewritten.
func (c *Code) IsDynamic() bool {
	return c.Kind == KindDynamic
}

// ValidKind reports whether s is a known code kind.
func ValidKind(s string) bool {
	return s == KindStatic || s == KindDynamic
}
