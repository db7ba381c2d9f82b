package greenops

// Equivalency factors in tonnes CO2 per unit per year.
// Sources: EPA Greenhouse Gas Equivalencies Calculator (2024 edition) and
// IEA coal plant emission averages.
//
//	equivalency = tonnes_CO2 / factor
const (
	// TonnesPerCarYear is annual emissions of a typical passenger vehicle.
	TonnesPerCarYear = 4.6

	// TonnesPerTreeYear is annual sequestration of a mature tree.
	TonnesPerTreeYear = 0.06

	// MtPerCoalPlantYear is annual emissions of an average coal-fired power plant, in Mt.
	MtPerCoalPlantYear = 3.5

	// TonnesPerHomeYear is annual emissions from an average US home's energy use.
	TonnesPerHomeYear = 7.87
)

// SourceCitation is attached to every translation.
const SourceCitation = "EPA Greenhouse Gas Equivalencies Calculator (2024); IEA coal plant averages"

// Unit conversion factors to megatonnes.
const (
	KgToMt     = 1e-9
	TonnesToMt = 1e-6
	KtToMt     = 1e-3
	MtToMt     = 1.0
	GtToMt     = 1e3
)

// Display thresholds.
const (
	// LargeNumberThreshold is where "~X.X million" abbreviation starts.
	LargeNumberThreshold = 1_000_000

	// BillionThreshold is where "~X.X billion" abbreviation starts.
	BillionThreshold = 1_000_000_000

	// TrillionThreshold is where "~X.X trillion" abbreviation starts.
	TrillionThreshold = 1_000_000_000_000
)
