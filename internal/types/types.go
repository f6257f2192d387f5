package types

// Candle is one OHLCV bar for a fixed time bucket. T is unix seconds UTC.
// Field names match the wire format used by the history API and the
// live stream.
type Candle struct {
	T int64   `json:"t"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

// StreamMessage is one push from the live candle stream.
type StreamMessage struct {
	Type       string   `json:"type"`
	Symbol     string   `json:"symbol"`
	Resolution string   `json:"resolution"`
	Candle     Candle   `json:"candle"`
	Patterns   []string `json:"patterns"`
}

// MessageTypeCandle is the only stream message type currently emitted.
const MessageTypeCandle = "candle"

// Preset is a named time-range selection for the chart.
type Preset string

const (
	Preset1D  Preset = "1D"
	Preset5D  Preset = "5D"
	Preset1M  Preset = "1M"
	Preset3M  Preset = "3M"
	Preset6M  Preset = "6M"
	Preset1Y  Preset = "1Y"
	PresetYTD Preset = "YTD"
	PresetALL Preset = "ALL"
)

// Presets lists every valid preset in display order.
var Presets = []Preset{Preset1D, Preset5D, Preset1M, Preset3M, Preset6M, Preset1Y, PresetYTD, PresetALL}

func (p Preset) Valid() bool {
	for _, v := range Presets {
		if p == v {
			return true
		}
	}
	return false
}

// StreamResolution returns the live-stream resolution for the preset.
// Only the intraday presets stream; everything longer is history-only.
func (p Preset) StreamResolution() (string, bool) {
	switch p {
	case Preset1D:
		return "1", true
	case Preset5D:
		return "5", true
	default:
		return "", false
	}
}

// Provider selects the upstream candle source for historical data.
type Provider string

const (
	ProviderAuto    Provider = "auto"
	ProviderFinnhub Provider = "finnhub"
	ProviderYahoo   Provider = "yahoo"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderAuto, ProviderFinnhub, ProviderYahoo:
		return true
	}
	return false
}
