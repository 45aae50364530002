package notifier

// Discord formatting constants
const (
	UrgentEmbedColor = 0xDC3545
	NotifyEmbedColor = 0xF0AD4E
	NoneEmbedColor   = 0x5CB85C

	maxListedConsumers   = 30
	maxListedUnavailable = 10
)
