package events

// Queue is the RabbitMQ queue event envelopes are published to.
const Queue = "pad_events"

// Event names, one per completed engine operation.
const (
	ConfigInitialized = "config_initialized"
	ConfigUpdated     = "config_updated"

	PadInitialized      = "pad_initialized"
	PadUpdated          = "pad_updated"
	RoundStarted        = "round_started"
	RoundEnded          = "round_ended"
	BuyCompleted        = "buy_completed"
	UnsoldLocked        = "unsold_locked_and_distribution_open"
	UnsoldUnlocked      = "unsold_unlocked"
	DistributionClaimed = "distribution_claimed"

	CollectionPadInitialized      = "collection_pad_initialized"
	CollectionPadUpdated          = "collection_pad_updated"
	CollectionRoundStarted        = "collection_round_started"
	CollectionRoundEnded          = "collection_round_ended"
	CollectionBuyCompleted        = "collection_buy_completed"
	CollectionAssetFilled         = "collection_asset_filled"
	TreasuryAndDistributionOpened = "treasury_and_distribution_opened"
	TreasuryAssetMinted           = "treasury_asset_minted"
	CollectionDistributionClaimed = "collection_distribution_claimed"
	CollectionDistributionFilled  = "collection_distribution_filled"
	UpdateAuthorityGiven          = "collection_update_authority_given"
	UpdateAuthorityTaken          = "collection_update_authority_taken"
)

// Envelope is what reaches the sink: the event name, the ledger timestamp of
// the operation and an operation-specific payload.
type Envelope struct {
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Sink receives one envelope per successful operation. Implementations must be
// fire-and-forget: the engine never reads events back and never fails an
// operation on a sink error.
type Sink interface {
	Emit(event string, timestamp int64, payload interface{})
}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

func (m MultiSink) Emit(event string, timestamp int64, payload interface{}) {
	for _, s := range m {
		s.Emit(event, timestamp, payload)
	}
}

// NopSink drops everything; used when no sink is configured.
type NopSink struct{}

func (NopSink) Emit(string, int64, interface{}) {}
