package objapi

import (
	"encoding/json"

	"github.com/lychee-technology/notionmap"
)

// Color is the color of an option, group or text annotation.
type Color string

const (
	ColorDefault          Color = "default"
	ColorGray             Color = "gray"
	ColorBrown            Color = "brown"
	ColorOrange           Color = "orange"
	ColorYellow           Color = "yellow"
	ColorGreen            Color = "green"
	ColorBlue             Color = "blue"
	ColorPurple           Color = "purple"
	ColorPink             Color = "pink"
	ColorRed              Color = "red"
	ColorGrayBackground   Color = "gray_background"
	ColorBrownBackground  Color = "brown_background"
	ColorOrangeBackground Color = "orange_background"
	ColorYellowBackground Color = "yellow_background"
	ColorGreenBackground  Color = "green_background"
	ColorBlueBackground   Color = "blue_background"
	ColorPurpleBackground Color = "purple_background"
	ColorPinkBackground   Color = "pink_background"
	ColorRedBackground    Color = "red_background"
)

// NumberFormat is the display format of a number column.
type NumberFormat string

const (
	NumberFormatNumber           NumberFormat = "number"
	NumberFormatNumberCommas     NumberFormat = "number_with_commas"
	NumberFormatPercent          NumberFormat = "percent"
	NumberFormatDollar           NumberFormat = "dollar"
	NumberFormatCanadianDollar   NumberFormat = "canadian_dollar"
	NumberFormatEuro             NumberFormat = "euro"
	NumberFormatPound            NumberFormat = "pound"
	NumberFormatYen              NumberFormat = "yen"
	NumberFormatRuble            NumberFormat = "ruble"
	NumberFormatRupee            NumberFormat = "rupee"
	NumberFormatWon              NumberFormat = "won"
	NumberFormatYuan             NumberFormat = "yuan"
	NumberFormatReal             NumberFormat = "real"
	NumberFormatLira             NumberFormat = "lira"
	NumberFormatRupiah           NumberFormat = "rupiah"
	NumberFormatFranc            NumberFormat = "franc"
	NumberFormatHongKongDollar   NumberFormat = "hong_kong_dollar"
	NumberFormatNewZealandDollar NumberFormat = "new_zealand_dollar"
	NumberFormatKrona            NumberFormat = "krona"
	NumberFormatNorwegianKrone   NumberFormat = "norwegian_krone"
	NumberFormatMexicanPeso      NumberFormat = "mexican_peso"
	NumberFormatRand             NumberFormat = "rand"
	NumberFormatNewTaiwanDollar  NumberFormat = "new_taiwan_dollar"
	NumberFormatDanishKrone      NumberFormat = "danish_krone"
	NumberFormatZloty            NumberFormat = "zloty"
	NumberFormatBaht             NumberFormat = "baht"
	NumberFormatForint           NumberFormat = "forint"
	NumberFormatKoruna           NumberFormat = "koruna"
	NumberFormatShekel           NumberFormat = "shekel"
	NumberFormatChileanPeso      NumberFormat = "chilean_peso"
	NumberFormatPhilippinePeso   NumberFormat = "philippine_peso"
	NumberFormatDirham           NumberFormat = "dirham"
	NumberFormatColombianPeso    NumberFormat = "colombian_peso"
	NumberFormatRiyal            NumberFormat = "riyal"
	NumberFormatRinggit          NumberFormat = "ringgit"
	NumberFormatLeu              NumberFormat = "leu"
	NumberFormatArgentinePeso    NumberFormat = "argentine_peso"
	NumberFormatUruguayanPeso    NumberFormat = "uruguayan_peso"
	NumberFormatSingaporeDollar  NumberFormat = "singapore_dollar"
)

// Function is the aggregation a rollup applies to related values.
type Function string

const (
	FunctionCount            Function = "count"
	FunctionCountValues      Function = "count_values"
	FunctionEmpty            Function = "empty"
	FunctionNotEmpty         Function = "not_empty"
	FunctionUnique           Function = "unique"
	FunctionShowUnique       Function = "show_unique"
	FunctionPercentEmpty     Function = "percent_empty"
	FunctionPercentNotEmpty  Function = "percent_not_empty"
	FunctionSum              Function = "sum"
	FunctionAverage          Function = "average"
	FunctionMedian           Function = "median"
	FunctionMin              Function = "min"
	FunctionMax              Function = "max"
	FunctionRange            Function = "range"
	FunctionEarliestDate     Function = "earliest_date"
	FunctionLatestDate       Function = "latest_date"
	FunctionDateRange        Function = "date_range"
	FunctionChecked          Function = "checked"
	FunctionUnchecked        Function = "unchecked"
	FunctionPercentChecked   Function = "percent_checked"
	FunctionPercentUnchecked Function = "percent_unchecked"
	FunctionCountPerGroup    Function = "count_per_group"
	FunctionPercentPerGroup  Function = "percent_per_group"
	FunctionShowOriginal     Function = "show_original"
)

// VerificationState is the state of a verification property.
type VerificationState string

const (
	VerificationStateVerified   VerificationState = "verified"
	VerificationStateUnverified VerificationState = "unverified"
	VerificationStateExpired    VerificationState = "expired"
)

// UnmarshalJSON rejects states the model does not know, naming the offending value.
func (s *VerificationState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return notionmap.NewDecodeError("verification state is not a string", err)
	}
	switch VerificationState(raw) {
	case VerificationStateVerified, VerificationStateUnverified, VerificationStateExpired:
		*s = VerificationState(raw)
		return nil
	default:
		return notionmap.NewInvalidEnumError("verification state", raw)
	}
}
