// Package services – group settings updates.
//
// Settings changes travel as explicit patch structures with pointer fields.
// A nil field means "leave as is"; a non-nil field replaces exactly that
// leaf value. Sections merge field-by-field, never wholesale, so a caller
// toggling anti-tag cannot accidentally clobber the mention limit.
package services

import (
	"context"

	"github.com/tbourn/go-groupbot-backend/internal/domain"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
)

// AntiTagPatch updates the anti-tag section.
type AntiTagPatch struct {
	Enabled     *bool   `json:"enabled,omitempty"`
	MaxMentions *int    `json:"max_mentions,omitempty"`
	Action      *string `json:"action,omitempty"`
}

// AutoKickPatch updates the auto-kick section.
type AutoKickPatch struct {
	Enabled          *bool `json:"enabled,omitempty"`
	WarningThreshold *int  `json:"warning_threshold,omitempty"`
}

// AutoDeletePatch updates the auto-delete section.
type AutoDeletePatch struct {
	Enabled     *bool `json:"enabled,omitempty"`
	DeleteLinks *bool `json:"delete_links,omitempty"`
	DeleteSpam  *bool `json:"delete_spam,omitempty"`
}

// WelcomePatch updates the welcome-message section.
type WelcomePatch struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Message *string `json:"message,omitempty"`
}

// SettingsPatch is a partial update across all settings sections.
type SettingsPatch struct {
	AntiTag    *AntiTagPatch    `json:"anti_tag,omitempty"`
	AutoKick   *AutoKickPatch   `json:"auto_kick,omitempty"`
	AutoDelete *AutoDeletePatch `json:"auto_delete,omitempty"`
	GhostMode  *bool            `json:"ghost_mode,omitempty"`
	Welcome    *WelcomePatch    `json:"welcome,omitempty"`
}

// validAntiTagActions enumerates the responses a group may configure.
var validAntiTagActions = map[string]bool{"warn": true, "delete": true, "kick": true}

// apply merges the patch into s, leaf by leaf.
func (p SettingsPatch) apply(s *domain.GroupSettings) error {
	if p.AntiTag != nil {
		if p.AntiTag.Enabled != nil {
			s.AntiTag.Enabled = *p.AntiTag.Enabled
		}
		if p.AntiTag.MaxMentions != nil {
			if *p.AntiTag.MaxMentions < 1 {
				return NewCommandError(KindValidation, "max mentions must be at least 1")
			}
			s.AntiTag.MaxMentions = *p.AntiTag.MaxMentions
		}
		if p.AntiTag.Action != nil {
			if !validAntiTagActions[*p.AntiTag.Action] {
				return NewCommandError(KindValidation, "anti-tag action must be warn, delete, or kick")
			}
			s.AntiTag.Action = *p.AntiTag.Action
		}
	}
	if p.AutoKick != nil {
		if p.AutoKick.Enabled != nil {
			s.AutoKick.Enabled = *p.AutoKick.Enabled
		}
		if p.AutoKick.WarningThreshold != nil {
			if *p.AutoKick.WarningThreshold < 1 {
				return NewCommandError(KindValidation, "warning threshold must be at least 1")
			}
			s.AutoKick.WarningThreshold = *p.AutoKick.WarningThreshold
		}
	}
	if p.AutoDelete != nil {
		if p.AutoDelete.Enabled != nil {
			s.AutoDelete.Enabled = *p.AutoDelete.Enabled
		}
		if p.AutoDelete.DeleteLinks != nil {
			s.AutoDelete.DeleteLinks = *p.AutoDelete.DeleteLinks
		}
		if p.AutoDelete.DeleteSpam != nil {
			s.AutoDelete.DeleteSpam = *p.AutoDelete.DeleteSpam
		}
	}
	if p.GhostMode != nil {
		s.GhostMode = *p.GhostMode
	}
	if p.Welcome != nil {
		if p.Welcome.Enabled != nil {
			s.Welcome.Enabled = *p.Welcome.Enabled
		}
		if p.Welcome.Message != nil {
			s.Welcome.Message = *p.Welcome.Message
		}
	}
	return nil
}

// UpdateSettings loads the group, merges the patch, and persists the result.
// Unspecified leaves are left untouched.
func (s *ModerationService) UpdateSettings(ctx context.Context, groupID string, patch SettingsPatch) (*domain.Group, error) {
	g, err := s.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	merged := g.Settings
	if err := patch.apply(&merged); err != nil {
		return nil, err
	}
	if err := repo.SaveGroupSettings(ctx, s.DB, groupID, merged); err != nil {
		return nil, err
	}
	g.Settings = merged
	return g, nil
}
