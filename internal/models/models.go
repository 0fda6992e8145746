package models

import (
	"slices"
	"time"
)

// TokenableUsers is the only principal type tokens are issued for.
const TokenableUsers = "users"

// WildcardAbility authorizes every ability check.
const WildcardAbility = "*"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PersonalAccessToken is one issued bearer credential. Token holds the
// SHA-256 hex digest of the value handed to the client, never the value.
type PersonalAccessToken struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TokenableType string     `gorm:"size:255;not null;index:idx_tokenable" json:"tokenable_type"`
	TokenableID   uint       `gorm:"not null;index:idx_tokenable" json:"tokenable_id"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Token         string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Abilities     []string   `gorm:"serializer:json;type:text" json:"abilities"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (PersonalAccessToken) TableName() string { return "personal_access_tokens" }

// Can reports whether the token grants ability, directly or through the wildcard.
func (t *PersonalAccessToken) Can(ability string) bool {
	return slices.Contains(t.Abilities, WildcardAbility) || slices.Contains(t.Abilities, ability)
}

// Expired reports whether expires_at is strictly before now. Tokens without
// an expiry never expire.
func (t *PersonalAccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

type Author struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome      string    `gorm:"size:255;not null;index" json:"nome"`
	Biografia *string   `gorm:"type:text" json:"biografia"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book.Disponivel has no column default so that false survives gorm's
// zero-value handling on insert.
type Book struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Titulo        string    `gorm:"size:255;not null;index" json:"titulo"`
	Genero        string    `gorm:"size:100" json:"genero"`
	AnoPublicacao int       `gorm:"not null" json:"ano_publicacao"`
	Disponivel    bool      `gorm:"not null" json:"disponivel"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	Author        *Author   `gorm:"constraint:OnDelete:RESTRICT" json:"author,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
