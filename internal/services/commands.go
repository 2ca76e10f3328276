// Package services – built-in command handlers.
//
// Permission gates live inside the handlers, not in the dispatcher: a gate
// failure is ordinary control flow expressed as a permission-denied error.
// Owner implies admin implies user for every threshold check.
package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-groupbot-backend/internal/utils"
)

// menuTitler renders the menu section headings.
var menuTitler = cases.Title(language.English)

func (d *Dispatcher) registerBuiltins() {
	d.Register("menu", d.handleMenu)
	d.Register("ping", d.handlePing)
	d.Register("tagall", d.handleTagAll)
	d.Register("antitag", d.handleAntiTag)
	d.Register("warn", d.handleWarn)
	d.Register("kick", d.handleKick)
	d.Register("ban", d.handleBan)
	d.Register("unban", d.handleUnban)
	d.Register("search", d.handleSearch)
	d.Register("anonymous", d.handleAnonymous)
	d.Register("upgrade", d.handleUpgrade)
	d.Register("activate", d.handleActivate)
	d.Register("status", d.handleStatus)
	d.Register("ghost", d.handleGhost)
}

// handleMenu renders the command overview for owners. For everyone else the
// result is silent-marked so ghost mode can hide that the command exists.
func (d *Dispatcher) handleMenu(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if !cc.User.IsOwner {
		return &CommandResult{Silent: true}, nil
	}

	var b strings.Builder
	b.WriteString("╔══════════════════════╗\n")
	b.WriteString("║   ISA PROTOCOL V1    ║\n")
	b.WriteString("╚══════════════════════╝\n\n")

	section := func(icon, title string, lines []string) {
		fmt.Fprintf(&b, "%s *%s*\n", icon, menuTitler.String(title))
		for i, line := range lines {
			branch := "├"
			if i == len(lines)-1 {
				branch = "└"
			}
			fmt.Fprintf(&b, "%s %s\n", branch, line)
		}
		b.WriteString("\n")
	}

	section("🎯", "group management", []string{
		".tagall <message> - Tag all members",
		".antitag on/off - Toggle anti-tag",
		".warn @user - Warn user",
		".kick @user - Kick user",
		".ban @user - Ban user",
	})
	section("💎", "premium features", []string{
		".upgrade - Get premium info",
		".activate <code> - Activate license",
		".status - View your status",
	})
	section("🎮", "engagement", []string{
		".search <query> - Web search",
		".anonymous <msg> - Anonymous post",
		".ghost on/off - Toggle ghost mode",
	})

	return &CommandResult{Message: b.String(), Animation: true}, nil
}

func (d *Dispatcher) handlePing(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	return &CommandResult{Message: "🏓 Pong! Bot is active."}, nil
}

// handleTagAll mentions every participant in paced batches. The pause runs
// between batches only; cancellation aborts the remainder without ever
// sending a batch ahead of the pace.
func (d *Dispatcher) handleTagAll(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if err := requireGroup(cc); err != nil {
		return nil, err
	}
	if !cc.User.CanModerate() && !cc.Group.IsGroupAdmin(cc.User.PhoneNumber) {
		return nil, NewCommandError(KindPermission, "You need admin permissions to use this command.")
	}

	message := strings.Join(cc.Args, " ")
	if message == "" {
		message = "Attention everyone!"
	}

	chunks := utils.ChunkStrings(cc.Participants, d.TagBatchSize)
	mentions := make([]string, 0, len(cc.Participants))
	for i, chunk := range chunks {
		if i > 0 {
			if err := d.pause(ctx); err != nil {
				return nil, err
			}
		}
		mentions = append(mentions, chunk...)
	}

	return &CommandResult{Message: message, Mentions: mentions, Chunked: true}, nil
}

func (d *Dispatcher) handleAntiTag(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if err := requireGroup(cc); err != nil {
		return nil, err
	}
	if !cc.User.CanModerate() {
		return nil, NewCommandError(KindPermission, "Admin permission required.")
	}
	enabled, err := parseOnOff(cc.Args, ".antitag on/off")
	if err != nil {
		return nil, err
	}

	patch := SettingsPatch{AntiTag: &AntiTagPatch{Enabled: &enabled}}
	if _, err := d.Moderation.UpdateSettings(ctx, cc.Group.GroupID, patch); err != nil {
		return nil, err
	}
	return &CommandResult{Message: "✅ Anti-tag " + onOffWord(enabled)}, nil
}

func (d *Dispatcher) handleWarn(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if err := requireGroup(cc); err != nil {
		return nil, err
	}
	if !cc.User.CanModerate() {
		return nil, NewCommandError(KindPermission, "Admin permission required.")
	}
	target, err := firstMention(cc, "warn")
	if err != nil {
		return nil, err
	}
	reason := "Rule violation"
	if len(cc.Args) > 1 {
		if r := strings.Join(cc.Args[1:], " "); r != "" {
			reason = r
		}
	}

	report, err := d.Moderation.AddWarning(ctx, cc.Group.GroupID, target, reason)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("⚠️ Warning issued to @%s\nTotal warnings: %d", target, report.TotalWarnings)
	if report.ShouldKick {
		msg += "\n🚫 User will be kicked (threshold reached)"
	}
	return &CommandResult{
		Message:       msg,
		ShouldKick:    report.ShouldKick,
		TargetPhone:   target,
		TotalWarnings: report.TotalWarnings,
	}, nil
}

// handleKick only emits the kick directive; removing the member is the
// transport layer's capability.
func (d *Dispatcher) handleKick(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if err := requireGroup(cc); err != nil {
		return nil, err
	}
	if !cc.User.CanModerate() {
		return nil, NewCommandError(KindPermission, "Admin permission required.")
	}
	target, err := firstMention(cc, "kick")
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Action:      "kick",
		TargetPhone: target,
		Message:     "✅ User kicked from group.",
	}, nil
}

func (d *Dispatcher) handleBan(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if err := requireGroup(cc); err != nil {
		return nil, err
	}
	if !cc.User.IsOwner {
		return nil, NewCommandError(KindPermission, "Owner permission required.")
	}
	target, err := firstMention(cc, "ban")
	if err != nil {
		return nil, err
	}
	reason := "Banned by owner"
	if len(cc.Args) > 1 {
		if r := strings.Join(cc.Args[1:], " "); r != "" {
			reason = r
		}
	}

	if err := d.Moderation.BanUser(ctx, cc.Group.GroupID, target, reason); err != nil {
		return nil, err
	}
	return &CommandResult{
		Action:      "ban",
		TargetPhone: target,
		Message:     "🚫 User permanently banned.",
	}, nil
}

func (d *Dispatcher) handleUnban(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if err := requireGroup(cc); err != nil {
		return nil, err
	}
	if !cc.User.IsOwner {
		return nil, NewCommandError(KindPermission, "Owner permission required.")
	}
	target, err := firstMention(cc, "unban")
	if err != nil {
		return nil, err
	}
	if err := d.Moderation.UnbanUser(ctx, cc.Group.GroupID, target); err != nil {
		return nil, err
	}
	return &CommandResult{Message: "✅ User unbanned."}, nil
}

func (d *Dispatcher) handleSearch(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if len(cc.Args) == 0 {
		return nil, NewCommandError(KindValidation, "Usage: .search <query>")
	}
	query := utils.SanitizeInput(strings.Join(cc.Args, " "))
	return &CommandResult{
		Message: fmt.Sprintf("🔍 Search results for: %q\n\n"+
			"This feature requires integration with a search API.\n"+
			"Contact owner to enable web search.", query),
	}, nil
}

func (d *Dispatcher) handleAnonymous(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if len(cc.Args) == 0 {
		return nil, NewCommandError(KindValidation, "Usage: .anonymous <message>")
	}
	msg := utils.SanitizeInput(strings.Join(cc.Args, " "))
	return &CommandResult{
		Message:   "📢 *Anonymous Message*\n\n" + msg,
		Anonymous: true,
	}, nil
}

func (d *Dispatcher) handleUpgrade(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	return &CommandResult{
		Message: "💎 *Premium Subscription*\n\n" +
			"Unlock advanced features:\n" +
			"✓ Scheduled messages\n" +
			"✓ Advanced automation\n" +
			"✓ AI auto-responses\n" +
			"✓ Analytics dashboard\n\n" +
			"Plans:\n" +
			"• Trial: 7 days - Free\n" +
			"• Monthly: 30 days - $9.99\n" +
			"• Yearly: 365 days - $99.99\n\n" +
			"Contact owner for activation codes.",
	}, nil
}

func (d *Dispatcher) handleActivate(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if len(cc.Args) == 0 {
		return nil, NewCommandError(KindValidation, "Usage: .activate <code>")
	}
	res, err := d.Premium.ActivateLicense(ctx, cc.Args[0], cc.User.PhoneNumber, cc.User.Name)
	if err != nil {
		return nil, err
	}
	return &CommandResult{Message: "✅ " + res.Message}, nil
}

func (d *Dispatcher) handleStatus(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	status, err := d.Premium.CheckPremiumStatus(ctx, cc.User.PhoneNumber)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("📊 *Your Status*\n\n")
	fmt.Fprintf(&b, "Phone: %s\n", cc.User.PhoneNumber)
	fmt.Fprintf(&b, "Role: %s\n", menuTitler.String(cc.User.Role()))
	if status.IsPremium {
		b.WriteString("Premium: ✅\n")
		fmt.Fprintf(&b, "Expires: %d days remaining\n", status.DaysRemaining)
	} else {
		b.WriteString("Premium: ❌\n")
	}

	if cc.User.IsOwner && cc.Group != nil {
		stats, err := d.Moderation.Statistics(ctx, cc.Group.GroupID)
		if err != nil {
			return nil, err
		}
		b.WriteString("\n📈 *Group Stats*\n")
		fmt.Fprintf(&b, "Messages: %d\n", stats.TotalMessages)
		fmt.Fprintf(&b, "Commands: %d\n", stats.TotalCommands)
		fmt.Fprintf(&b, "Warnings: %d\n", stats.TotalWarnings)
		fmt.Fprintf(&b, "Kicks: %d\n", stats.TotalKicks)
	}

	return &CommandResult{Message: b.String()}, nil
}

func (d *Dispatcher) handleGhost(ctx context.Context, cc *CommandContext) (*CommandResult, error) {
	if err := requireGroup(cc); err != nil {
		return nil, err
	}
	if !cc.User.IsOwner {
		return nil, NewCommandError(KindPermission, "Owner permission required.")
	}
	enabled, err := parseOnOff(cc.Args, ".ghost on/off")
	if err != nil {
		return nil, err
	}

	patch := SettingsPatch{GhostMode: &enabled}
	if _, err := d.Moderation.UpdateSettings(ctx, cc.Group.GroupID, patch); err != nil {
		return nil, err
	}
	return &CommandResult{Message: "👻 Ghost mode " + onOffWord(enabled)}, nil
}

// parseOnOff reads an on/off toggle from the first argument.
func parseOnOff(args []string, usage string) (bool, error) {
	if len(args) == 0 {
		return false, NewCommandError(KindValidation, "Usage: "+usage)
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, NewCommandError(KindValidation, "Usage: "+usage)
	}
}

func onOffWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
