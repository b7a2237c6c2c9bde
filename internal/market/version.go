package market

// Version constants for persisted records and the engine.
const (
	// RecordTag is written as the leading tag of every persisted record.
	RecordTag = 1

	// EngineVersion is the bourse engine version.
	EngineVersion = "0.1.0"
)

// Fixed-point bases. Registry fee and treasury rates are permyriad,
// item royalties are basis points, creator shares are percent.
const (
	Permyriad     = 10000
	BasisPoints   = 10000
	PercentBase   = 100
	MaxTreasuries = 8
)

// MaxAuctionDuration bounds an auction's duration in seconds (ten years).
const MaxAuctionDuration int64 = 10 * 365 * 24 * 60 * 60
