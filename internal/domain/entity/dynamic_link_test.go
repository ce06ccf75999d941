package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestDynamicLink_CheckUsable(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		link entity.DynamicLink
		want error
	}{
		{"vigente", entity.DynamicLink{ExpiresAt: &future, MaxViews: 3, Views: 2}, nil},
		{"sin límites", entity.DynamicLink{}, nil},
		{"revocado", entity.DynamicLink{RevokedAt: &past}, domain.ErrLinkRevoked},
		{"expirado", entity.DynamicLink{ExpiresAt: &past}, domain.ErrLinkExpired},
		{"expira justo ahora", entity.DynamicLink{ExpiresAt: &now}, domain.ErrLinkExpired},
		{"agotado", entity.DynamicLink{MaxViews: 2, Views: 2}, domain.ErrLinkExhausted},
		// revocado tiene prioridad sobre expirado y agotado
		{"revocado y expirado", entity.DynamicLink{RevokedAt: &past, ExpiresAt: &past, MaxViews: 1, Views: 1}, domain.ErrLinkRevoked},
		{"expirado y agotado", entity.DynamicLink{ExpiresAt: &past, MaxViews: 1, Views: 1}, domain.ErrLinkExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.link.CheckUsable(now), tc.want)
			if tc.want == nil {
				assert.NoError(t, tc.link.CheckUsable(now))
			}
		})
	}
}
