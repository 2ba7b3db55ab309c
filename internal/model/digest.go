package model

// Digest kinds.
const (
	DigestBriefing = "briefing"
	DigestReview   = "review"
)

// Delivery channels.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)
