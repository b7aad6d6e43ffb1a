package model

import "strings"

// ChartType is the visualization hint the analyzer attaches to a data point.
// The analyzer's contract is a closed set; anything else maps to Unknown.
type ChartType string

// Chart types understood by the rendering layer.
const (
	ChartTypeLine       ChartType = "LineChart"
	ChartTypeBar        ChartType = "BarChart"
	ChartTypePie        ChartType = "PieChart"
	ChartTypeChoropleth ChartType = "ChoroplethMap"
	ChartTypeUnknown    ChartType = "Unknown"
)

// ParseChartType maps an analyzer-provided chart type string onto the closed
// set, falling back to ChartTypeUnknown for unrecognized values.
func ParseChartType(s string) ChartType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linechart":
		return ChartTypeLine
	case "barchart":
		return ChartTypeBar
	case "piechart":
		return ChartTypePie
	case "choroplethmap":
		return ChartTypeChoropleth
	default:
		return ChartTypeUnknown
	}
}

// IndicatorCategory tags a data point with the kind of indicator it measures.
type IndicatorCategory string

// Indicator categories, matching the analyzer's extraction contract.
const (
	IndicatorClimateEmissions     IndicatorCategory = "climate_emissions"
	IndicatorClimateTemperature   IndicatorCategory = "climate_temperature"
	IndicatorBiodiversity         IndicatorCategory = "biodiversity"
	IndicatorDeforestation        IndicatorCategory = "deforestation"
	IndicatorWaterQuality         IndicatorCategory = "water_quality"
	IndicatorPollution            IndicatorCategory = "pollution"
	IndicatorEnergy               IndicatorCategory = "energy"
	IndicatorFinanceLoan          IndicatorCategory = "finance_loan"
	IndicatorFinanceCost          IndicatorCategory = "finance_cost"
	IndicatorFinanceBudget        IndicatorCategory = "finance_budget"
	IndicatorFinanceGDP           IndicatorCategory = "finance_gdp"
	IndicatorSocialPopulation     IndicatorCategory = "social_population"
	IndicatorSocialEmployment     IndicatorCategory = "social_employment"
	IndicatorSocialHealth         IndicatorCategory = "social_health"
	IndicatorInfrastructureArea   IndicatorCategory = "infrastructure_area"
	IndicatorInfrastructureLength IndicatorCategory = "infrastructure_length"
	IndicatorTemporalDuration     IndicatorCategory = "temporal_duration"
	IndicatorTemporalDeadline     IndicatorCategory = "temporal_deadline"
	IndicatorOther                IndicatorCategory = "other"
)

var indicatorCategories = map[string]IndicatorCategory{
	string(IndicatorClimateEmissions):     IndicatorClimateEmissions,
	string(IndicatorClimateTemperature):   IndicatorClimateTemperature,
	string(IndicatorBiodiversity):         IndicatorBiodiversity,
	string(IndicatorDeforestation):        IndicatorDeforestation,
	string(IndicatorWaterQuality):         IndicatorWaterQuality,
	string(IndicatorPollution):            IndicatorPollution,
	string(IndicatorEnergy):               IndicatorEnergy,
	string(IndicatorFinanceLoan):          IndicatorFinanceLoan,
	string(IndicatorFinanceCost):          IndicatorFinanceCost,
	string(IndicatorFinanceBudget):        IndicatorFinanceBudget,
	string(IndicatorFinanceGDP):           IndicatorFinanceGDP,
	string(IndicatorSocialPopulation):     IndicatorSocialPopulation,
	string(IndicatorSocialEmployment):     IndicatorSocialEmployment,
	string(IndicatorSocialHealth):         IndicatorSocialHealth,
	string(IndicatorInfrastructureArea):   IndicatorInfrastructureArea,
	string(IndicatorInfrastructureLength): IndicatorInfrastructureLength,
	string(IndicatorTemporalDuration):     IndicatorTemporalDuration,
	string(IndicatorTemporalDeadline):     IndicatorTemporalDeadline,
	string(IndicatorOther):                IndicatorOther,
}

// ParseIndicatorCategory maps an analyzer-provided indicator category onto
// the closed set, falling back to IndicatorOther.
func ParseIndicatorCategory(s string) IndicatorCategory {
	if cat, ok := indicatorCategories[strings.ToLower(strings.TrimSpace(s))]; ok {
		return cat
	}
	return IndicatorOther
}

// DataPoint is one key/value datum mined from a document. The (DocumentID,
// Key) pair is unique; re-running analysis overwrites the value for the same
// key. Value always holds the canonical text representation, even when the
// analyzer returned a number.
type DataPoint struct {
	Key               string
	Value             string
	Unit              string
	ChartType         ChartType
	IndicatorCategory IndicatorCategory
	Page              *int
	ID                int64
	DocumentID        int64
	Confidence        float64
}
