package discord

import (
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/internal/command/role"
)

// permissionManageGuild is Discord's MANAGE_GUILD bit.
const permissionManageGuild int64 = 1 << 5

// permissionTokens names the Discord permission bits commands can require.
var permissionTokens = map[int64]string{
	discordgo.PermissionCreateInstantInvite: "create_invite",
	discordgo.PermissionKickMembers:         "kick_members",
	discordgo.PermissionBanMembers:          "ban_members",
	discordgo.PermissionAdministrator:       "administrator",
	discordgo.PermissionManageChannels:      "manage_channels",
	permissionManageGuild:                   command.PermissionManageServer,
	discordgo.PermissionAddReactions:        "add_reactions",
	discordgo.PermissionViewAuditLogs:       "view_audit_log",
	discordgo.PermissionViewChannel:         "view_channel",
	discordgo.PermissionSendMessages:        "send_messages",
	discordgo.PermissionManageMessages:      "manage_messages",
	discordgo.PermissionEmbedLinks:          "embed_links",
	discordgo.PermissionAttachFiles:         "attach_files",
	discordgo.PermissionReadMessageHistory:  "read_message_history",
	discordgo.PermissionMentionEveryone:     "mention_everyone",
	discordgo.PermissionUseExternalEmojis:   "use_external_emojis",
	discordgo.PermissionVoiceConnect:        "connect",
	discordgo.PermissionVoiceSpeak:          "speak",
	discordgo.PermissionVoiceMuteMembers:    "mute_members",
	discordgo.PermissionVoiceDeafenMembers:  "deafen_members",
	discordgo.PermissionVoiceMoveMembers:    "move_members",
	discordgo.PermissionChangeNickname:      "change_nickname",
	discordgo.PermissionManageNicknames:     "manage_nicknames",
	discordgo.PermissionManageRoles:         role.PermissionManageRoles,
	discordgo.PermissionManageWebhooks:      "manage_webhooks",
	discordgo.PermissionManageThreads:       "manage_threads",
	discordgo.PermissionModerateMembers:     "moderate_members",
}

// PermissionTokens converts a permission bit set to sorted tokens.
// Administrators hold every token.
func PermissionTokens(perms int64) []string {
	admin := perms&discordgo.PermissionAdministrator != 0
	out := make([]string, 0, len(permissionTokens))
	for bit, name := range permissionTokens {
		if admin || perms&bit != 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// isModerator reports whether perms make a member a server moderator.
func isModerator(perms int64) bool {
	return perms&(discordgo.PermissionAdministrator|permissionManageGuild) != 0
}
