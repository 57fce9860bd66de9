package world

// ChatType discriminates chat messages in both directions.
type ChatType uint8

const (
	ChatSystem             ChatType = 0x00
	ChatSay                ChatType = 0x01
	ChatParty              ChatType = 0x02
	ChatRaid               ChatType = 0x03
	ChatGuild              ChatType = 0x04
	ChatOfficer            ChatType = 0x05
	ChatYell               ChatType = 0x06
	ChatWhisper            ChatType = 0x07
	ChatWhisperForeign     ChatType = 0x08
	ChatWhisperInform      ChatType = 0x09
	ChatEmote              ChatType = 0x0A
	ChatTextEmote          ChatType = 0x0B
	ChatMonsterSay         ChatType = 0x0C
	ChatMonsterParty       ChatType = 0x0D
	ChatMonsterYell        ChatType = 0x0E
	ChatMonsterWhisper     ChatType = 0x0F
	ChatMonsterEmote       ChatType = 0x10
	ChatChannel            ChatType = 0x11
	ChatChannelJoin        ChatType = 0x12
	ChatChannelLeave       ChatType = 0x13
	ChatChannelList        ChatType = 0x14
	ChatChannelNotice      ChatType = 0x15
	ChatChannelNoticeUser  ChatType = 0x16
	ChatAFK                ChatType = 0x17
	ChatDND                ChatType = 0x18
	ChatIgnored            ChatType = 0x19
	ChatSkill              ChatType = 0x1A
	ChatLoot               ChatType = 0x1B
	ChatRaidLeader         ChatType = 0x27
	ChatRaidWarning        ChatType = 0x28
	ChatBattleground       ChatType = 0x2C
	ChatBattlegroundLeader ChatType = 0x2D
	ChatAchievement        ChatType = 0x30
	ChatGuildAchievement   ChatType = 0x31
)

// String returns the chat type's name.
func (t ChatType) String() string {
	switch t {
	case ChatSystem:
		return "SYSTEM"
	case ChatSay:
		return "SAY"
	case ChatParty:
		return "PARTY"
	case ChatRaid:
		return "RAID"
	case ChatGuild:
		return "GUILD"
	case ChatOfficer:
		return "OFFICER"
	case ChatYell:
		return "YELL"
	case ChatWhisper:
		return "WHISPER"
	case ChatWhisperInform:
		return "WHISPER_INFORM"
	case ChatEmote:
		return "EMOTE"
	case ChatTextEmote:
		return "TEXT_EMOTE"
	case ChatMonsterSay:
		return "MONSTER_SAY"
	case ChatMonsterYell:
		return "MONSTER_YELL"
	case ChatMonsterEmote:
		return "MONSTER_EMOTE"
	case ChatChannel:
		return "CHANNEL"
	case ChatRaidLeader:
		return "RAID_LEADER"
	case ChatRaidWarning:
		return "RAID_WARNING"
	case ChatBattleground:
		return "BATTLEGROUND"
	case ChatBattlegroundLeader:
		return "BATTLEGROUND_LEADER"
	case ChatAchievement:
		return "ACHIEVEMENT"
	case ChatGuildAchievement:
		return "GUILD_ACHIEVEMENT"
	default:
		return "UNKNOWN"
	}
}

// ChatLanguage selects the in-game language of an outgoing message.
type ChatLanguage uint32

const (
	LangUniversal ChatLanguage = 0
	LangOrcish    ChatLanguage = 1
	LangCommon    ChatLanguage = 7
)

// ChatMessage is one parsed incoming chat message. Sender and channel
// fields are filled only for the types that carry them.
type ChatMessage struct {
	Type        ChatType
	Language    ChatLanguage
	SenderGUID  uint64
	SenderName  string
	Receiver    string
	ChannelName string
	Message     string
	Tag         uint8
}
