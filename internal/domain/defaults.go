package domain

// DefaultConfig returns the stock English configuration used when no stored
// or inline configuration is available.
func DefaultConfig() *ValentineConfig {
	return &ValentineConfig{
		Recipient: Recipient{Name: "Valentine"},
		Sender:    Sender{Name: "Secret Admirer"},
		Letter: Letter{
			Content: []string{
				"Every moment with you is a gift that I cherish deeply. Your smile brightens my days, and your love makes my world complete.",
				"On this special day, I want to remind you how much you mean to me and how grateful I am to have you in my life.",
			},
		},
		Game: Game{
			Reward: Reward{
				Code:     "LOVE2025",
				Amount:   520,
				Currency: "$",
			},
		},
		Lang: LangEN,
	}
}

// DefaultConfigZH returns the stock Chinese configuration.
func DefaultConfigZH() *ValentineConfig {
	return &ValentineConfig{
		Recipient: Recipient{Name: "亲爱的"},
		Sender:    Sender{Name: "你的爱人"},
		Letter: Letter{
			Content: []string{
				"与你在一起的每一刻都是我珍藏的礼物。你的微笑照亮了我的生活，你的爱让我的世界完整。",
				"在这特别的日子里，我想告诉你，你对我来说有多重要，以及我有多感激生命中有你的陪伴。",
			},
		},
		Game: Game{
			Reward: Reward{
				Code:     "LOVE2025",
				Amount:   520,
				Currency: "¥",
			},
		},
		Lang: LangZH,
	}
}

// DefaultConfigForLang picks the stock configuration matching the language,
// falling back to English for anything unrecognized.
func DefaultConfigForLang(lang string) *ValentineConfig {
	if lang == LangZH {
		return DefaultConfigZH()
	}
	return DefaultConfig()
}
