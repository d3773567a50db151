package dispatch

// DefaultRules is the built-in command table. Within a priority band
// rules keep this order, and the specific band is consulted before
// the general verbs, so "open youtube" never falls into the
// application launcher. Every pattern has at most one capture group;
// the capture is the handler's argument.
func DefaultRules() []Rule {
	specific := []string{
		"wake-ack", `^(?:are you there|you there|hear me|can you hear me)\??$`,
		"greeting", `^(?:hello|hi|hey)\b`,
		"help", `^(?:help|what can you do)\b`,
		"time", `\bwhat time is it\b|\bwhat(?:'s| is) the time\b|\bcurrent time\b|\btell me the time\b`,
		"date", `\bwhat(?:'s| is) (?:the date|today's date)\b|\bwhat day is it\b|\btoday's date\b`,
		"volume-up", `\bvolume up\b|\bturn (?:the volume|it) up\b|\bincrease (?:the )?volume\b|\blouder\b`,
		"volume-down", `\bvolume down\b|\bturn (?:the volume|it) down\b|\b(?:decrease|lower) (?:the )?volume\b|\bquieter\b`,
		"mute", `\b(?:mute|unmute|silence)\b`,
		"set-volume", `\b(?:set|change) (?:the )?volume to (\S+)`,
		"system-info", `\bsystem (?:info|information|status)\b|\bhow is the system\b|\b(?:cpu|memory|disk) usage\b`,
		"screenshot", `\bscreenshot\b|\bcapture the screen\b`,
		"set-personality", `\b(?:personality|persona) (?:mode )?to (.+)`,
		"clear-history", `\b(?:clear|reset) (?:the )?(?:conversation|chat|history)\b`,
		"shutdown", `\bshut ?down\b|\bpower off\b`,
		"restart", `\breboot\b|\brestart (?:the )?(?:computer|system|machine|pc)\b`,
		"lock-screen", `\block (?:the )?(?:screen|computer)\b`,
		"delete-file", `\bdelete (?:the )?file (.+)`,
		"open-file", `\bopen (?:the )?file (.+)`,
		"open-folder", `\bopen (?:the )?(?:folder|directory)(?: (.+))?`,
		"create-folder", `\b(?:create|make) (?:a )?(?:new )?(?:folder|directory)(?: (?:called |named )?(.+))?`,
		"search-files", `\b(?:search for|search|find) files? (?:named |called |matching |for )?(.+)`,
		"youtube", `\bplay (.+) on youtube\b`,
		"youtube", `\bsearch youtube for (.+)`,
		"youtube", `\b(?:open|go to) youtube$`,
		"youtube", `\byoutube (.+)`,
		"open-website", `\b(?:open|go to|visit) ((?:https?://)?[a-z0-9-]+(?:\.[a-z0-9-]+)+\S*)`,
		"play-music", `\bplay (?:some )?music\b(?: (.+))?`,
	}

	general := []string{
		"close-app", `\b(?:close|kill|quit|terminate) (.+)`,
		"open-app", `\b(?:open|launch|start) (.+)`,
		"play-music", `\bplay (.+)`,
	}

	var rules []Rule
	for i := 0; i < len(specific); i += 2 {
		rules = append(rules, Rule{
			Tag:      specific[i],
			Pattern:  specific[i+1],
			Priority: PrioritySpecific,
		})
	}
	for i := 0; i < len(general); i += 2 {
		rules = append(rules, Rule{
			Tag:      general[i],
			Pattern:  general[i+1],
			Priority: PriorityGeneral,
		})
	}
	return rules
}
