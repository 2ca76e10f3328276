// Package domain defines the persistence models for users, groups, licenses,
// and the command audit log. These types are mapped with GORM and form the
// core data layer of the group-chat assistant.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// StringList stores a slice of strings as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(v), (*[]string)(l))
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(v, (*[]string)(l))
	default:
		return errors.New("unsupported source type for StringList")
	}
}

// User represents a chat participant identified by a stable phone number.
// A row is provisioned on the first command seen from an unknown identifier
// and is never hard-deleted; bans are soft state on the row itself.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - PhoneNumber: caller identity; unique and indexed.
//   - IsPremium / PremiumExpiry: paid-entitlement state. Premium is active
//     only while PremiumExpiry lies strictly in the future.
//   - IsOwner / IsAdmin: global role flags (owner implies admin).
//   - IsBanned / BanReason: global ban state, independent of group ban lists.
//   - Warnings / LastWarningAt: moderation counter, reset only explicitly.
//   - CommandCount / LastActive: activity counters bumped on every dispatch.
type User struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	PhoneNumber   string         `json:"phone_number"   gorm:"type:varchar(32);not null;uniqueIndex"`
	Name          string         `json:"name"           gorm:"type:varchar(255);not null;default:''"`
	IsPremium     bool           `json:"is_premium"     gorm:"not null;default:false;index:idx_premium"`
	PremiumExpiry *time.Time     `json:"premium_expiry" gorm:"index:idx_premium"`
	IsOwner       bool           `json:"is_owner"       gorm:"not null;default:false"`
	IsAdmin       bool           `json:"is_admin"       gorm:"not null;default:false"`
	IsBanned      bool           `json:"is_banned"      gorm:"not null;default:false;index"`
	BanReason     *string        `json:"ban_reason,omitempty" gorm:"type:varchar(255)"`
	Warnings      int            `json:"warnings"       gorm:"not null;default:0"`
	LastWarningAt *time.Time     `json:"last_warning_at,omitempty"`
	CommandCount  int64          `json:"command_count"  gorm:"not null;default:0"`
	LastActive    time.Time      `json:"last_active"`
	Language      string         `json:"language"       gorm:"type:varchar(8);not null;default:'en'"`
	SilentMode    bool           `json:"silent_mode"    gorm:"not null;default:false"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsPremiumActive reports whether the user's entitlement is currently in
// force: the premium flag must be set and the expiry strictly in the future.
func (u *User) IsPremiumActive() bool {
	if !u.IsPremium || u.PremiumExpiry == nil {
		return false
	}
	return time.Now().Before(*u.PremiumExpiry)
}

// Role returns the effective role name, applying the owner ⇒ admin ⇒ user
// precedence used by permission checks.
func (u *User) Role() string {
	switch {
	case u.IsOwner:
		return "owner"
	case u.IsAdmin:
		return "admin"
	default:
		return "user"
	}
}

// CanModerate reports whether the user passes the admin-or-owner gate.
func (u *User) CanModerate() bool { return u.IsOwner || u.IsAdmin }

// AntiTagSettings limits the number of user mentions allowed per message.
// Action is the configured response (warn, delete, or kick) returned to the
// caller on violation; detection never enforces.
type AntiTagSettings struct {
	Enabled     bool   `json:"enabled"      gorm:"not null;default:false"`
	MaxMentions int    `json:"max_mentions" gorm:"not null;default:5"`
	Action      string `json:"action"       gorm:"type:varchar(16);not null;default:'warn'"`
}

// AutoKickSettings turns warning counts into kick requests once the
// threshold is reached.
type AutoKickSettings struct {
	Enabled          bool `json:"enabled"           gorm:"not null;default:false"`
	WarningThreshold int  `json:"warning_threshold" gorm:"not null;default:3"`
}

// AutoDeleteSettings toggles content heuristics evaluated per message.
type AutoDeleteSettings struct {
	Enabled     bool `json:"enabled"      gorm:"not null;default:false"`
	DeleteLinks bool `json:"delete_links" gorm:"not null;default:false"`
	DeleteSpam  bool `json:"delete_spam"  gorm:"not null;default:false"`
}

// WelcomeSettings configures the greeting posted for new members.
type WelcomeSettings struct {
	Enabled bool   `json:"enabled" gorm:"not null;default:false"`
	Message string `json:"message" gorm:"type:varchar(1024);not null;default:'Welcome to the group!'"`
}

// GroupSettings bundles all per-group configuration. It is embedded into the
// Group row with column prefixes so partial updates map to plain columns.
type GroupSettings struct {
	AntiTag    AntiTagSettings    `json:"anti_tag"    gorm:"embedded;embeddedPrefix:anti_tag_"`
	AutoKick   AutoKickSettings   `json:"auto_kick"   gorm:"embedded;embeddedPrefix:auto_kick_"`
	AutoDelete AutoDeleteSettings `json:"auto_delete" gorm:"embedded;embeddedPrefix:auto_delete_"`
	GhostMode  bool               `json:"ghost_mode"  gorm:"not null;default:true"`
	Welcome    WelcomeSettings    `json:"welcome"     gorm:"embedded;embeddedPrefix:welcome_"`
}

// DefaultGroupSettings returns the settings applied to newly observed groups.
func DefaultGroupSettings() GroupSettings {
	return GroupSettings{
		AntiTag:   AntiTagSettings{MaxMentions: 5, Action: "warn"},
		AutoKick:  AutoKickSettings{WarningThreshold: 3},
		GhostMode: true,
		Welcome:   WelcomeSettings{Message: "Welcome to the group!"},
	}
}

// GroupStatistics keeps running per-group counters. All increments go
// through store-level atomic updates, never read-modify-write.
type GroupStatistics struct {
	TotalMessages int64 `json:"total_messages" gorm:"not null;default:0"`
	TotalCommands int64 `json:"total_commands" gorm:"not null;default:0"`
	TotalWarnings int64 `json:"total_warnings" gorm:"not null;default:0"`
	TotalKicks    int64 `json:"total_kicks"    gorm:"not null;default:0"`
}

// Group represents a chat group the assistant participates in. Created on
// first observed interaction; mutated by settings commands and moderation
// side effects.
type Group struct {
	ID         string          `json:"id"         gorm:"type:char(36);primaryKey"`
	GroupID    string          `json:"group_id"   gorm:"type:varchar(64);not null;uniqueIndex"`
	Name       string          `json:"name"       gorm:"type:varchar(255);not null"`
	Admins     StringList      `json:"admins"     gorm:"type:text"`
	Settings   GroupSettings   `json:"settings"   gorm:"embedded;embeddedPrefix:settings_"`
	Statistics GroupStatistics `json:"statistics" gorm:"embedded;embeddedPrefix:stats_"`
	LastActive time.Time       `json:"last_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Bans is the group-scoped ban list; entries are unique per phone number.
	Bans []GroupBan `json:"bans,omitempty" gorm:"foreignKey:GroupID;references:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Group.
func (Group) TableName() string { return "groups" }

// IsGroupAdmin reports whether phone appears in the group's admin list.
func (g *Group) IsGroupAdmin(phone string) bool {
	for _, a := range g.Admins {
		if a == phone {
			return true
		}
	}
	return false
}

// GroupBan is one entry of a group's ban list. The unique index on
// (group_id, phone_number) enforces the one-entry-per-identifier invariant.
type GroupBan struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	GroupID     string    `json:"group_id"     gorm:"type:varchar(64);not null;uniqueIndex:ux_group_ban,priority:1"`
	PhoneNumber string    `json:"phone_number" gorm:"type:varchar(32);not null;uniqueIndex:ux_group_ban,priority:2"`
	Reason      string    `json:"reason"       gorm:"type:varchar(255);not null;default:'No reason provided'"`
	BannedAt    time.Time `json:"banned_at"`
}

// TableName returns the database table name for GroupBan.
func (GroupBan) TableName() string { return "group_bans" }

// License plan types. Each maps to a fixed entitlement duration; lifetime is
// effectively permanent.
const (
	LicenseTrial    = "trial"
	LicenseMonthly  = "monthly"
	LicenseYearly   = "yearly"
	LicenseLifetime = "lifetime"
)

// LicenseDurations maps plan type to entitlement duration in days.
var LicenseDurations = map[string]int{
	LicenseTrial:    7,
	LicenseMonthly:  30,
	LicenseYearly:   365,
	LicenseLifetime: 36500,
}

// ValidLicenseType reports whether t names a known plan.
func ValidLicenseType(t string) bool {
	_, ok := LicenseDurations[t]
	return ok
}

// License is a single-use alphanumeric code redeemable for a time-boxed
// entitlement. ExpiresAt is the redemption deadline of the code itself,
// separate from the entitlement duration the code grants. Once activated a
// license is immutable except for reads.
type License struct {
	ID           string     `json:"id"            gorm:"type:char(36);primaryKey"`
	Code         string     `json:"code"          gorm:"type:varchar(64);not null;uniqueIndex"`
	Type         string     `json:"type"          gorm:"type:varchar(16);not null"`
	DurationDays int        `json:"duration_days" gorm:"not null"`
	IsActivated  bool       `json:"is_activated"  gorm:"not null;default:false"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	ActivatedBy  *string    `json:"activated_by,omitempty" gorm:"type:varchar(32);index"`
	ExpiresAt    time.Time  `json:"expires_at"    gorm:"not null"`
	CreatedBy    string     `json:"created_by"    gorm:"type:varchar(64);not null;default:'system'"`

	// Optional payment metadata carried for bookkeeping only.
	PaymentReference *string  `json:"payment_reference,omitempty" gorm:"type:varchar(128)"`
	Amount           *float64 `json:"amount,omitempty"`
	Currency         *string  `json:"currency,omitempty" gorm:"type:varchar(8)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for License.
func (License) TableName() string { return "licenses" }

// RedemptionExpired reports whether the code's own deadline has passed.
func (l *License) RedemptionExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// CommandLog is one append-only audit record per dispatch attempt. Rows are
// never mutated or deleted by the core; retention is an external concern.
type CommandLog struct {
	ID          string     `json:"id"        gorm:"type:char(36);primaryKey"`
	Command     string     `json:"command"   gorm:"type:varchar(64);not null;index:idx_cmd_time,priority:1"`
	UserPhone   string     `json:"user_phone" gorm:"type:varchar(32);not null;index:idx_user_time,priority:1"`
	UserName    string     `json:"user_name" gorm:"type:varchar(255);not null;default:''"`
	GroupID     *string    `json:"group_id,omitempty"   gorm:"type:varchar(64);index"`
	GroupName   *string    `json:"group_name,omitempty" gorm:"type:varchar(255)"`
	Args        StringList `json:"args"      gorm:"type:text"`
	Success     bool       `json:"success"   gorm:"not null;default:true"`
	Error       *string    `json:"error,omitempty" gorm:"type:varchar(512)"`
	ExecutionMS int64      `json:"execution_ms"    gorm:"not null;default:0"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_cmd_time,priority:2;index:idx_user_time,priority:2"`
}

// TableName returns the database table name for CommandLog.
func (CommandLog) TableName() string { return "command_logs" }
