package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPersonalAccessToken_Can(t *testing.T) {
	tests := []struct {
		name      string
		abilities []string
		ability   string
		want      bool
	}{
		{name: "wildcard grants anything", abilities: []string{"*"}, ability: "catalog:write", want: true},
		{name: "wildcard grants wildcard", abilities: []string{"*"}, ability: "*", want: true},
		{name: "exact match", abilities: []string{"refresh"}, ability: "refresh", want: true},
		{name: "other ability", abilities: []string{"refresh"}, ability: "catalog:write", want: false},
		{name: "refresh does not grant wildcard", abilities: []string{"refresh"}, ability: "*", want: false},
		{name: "no abilities", abilities: nil, ability: "refresh", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &PersonalAccessToken{Abilities: tt.abilities}
			assert.Equal(t, tt.want, tok.Can(tt.ability))
		})
	}
}

func TestPersonalAccessToken_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&PersonalAccessToken{}).Expired(now))

	past := now.Add(-time.Second)
	assert.True(t, (&PersonalAccessToken{ExpiresAt: &past}).Expired(now))

	// equal instant is not strictly before now
	assert.False(t, (&PersonalAccessToken{ExpiresAt: &now}).Expired(now))
}
