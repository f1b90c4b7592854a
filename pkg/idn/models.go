package idn

import "strings"

// models is the table of known SourceMeter models
var models = map[string]Model{
	"2400": {Number: "2400", Description: "General purpose SourceMeter", MaxVoltage: 210, MaxCurrent: 1.05},
	"2401": {Number: "2401", Description: "Low voltage SourceMeter", MaxVoltage: 21, MaxCurrent: 1.05},
	"2410": {Number: "2410", Description: "High voltage SourceMeter", MaxVoltage: 1100, MaxCurrent: 1.05},
	"2420": {Number: "2420", Description: "High current SourceMeter", MaxVoltage: 63, MaxCurrent: 3.15},
	"2425": {Number: "2425", Description: "100W SourceMeter", MaxVoltage: 105, MaxCurrent: 3.15},
	"2430": {Number: "2430", Description: "Pulse mode SourceMeter", MaxVoltage: 105, MaxCurrent: 10.5},
	"2440": {Number: "2440", Description: "5A SourceMeter", MaxVoltage: 42, MaxCurrent: 5.25},
}

// LookupModel returns the model entry for an identity, matching the model
// number anywhere in the model field ("MODEL 2400" and "2400" both work).
func LookupModel(id Identity) (Model, bool) {
	for _, field := range strings.Fields(id.Model) {
		if m, ok := models[field]; ok {
			return m, true
		}
	}
	return Model{Number: id.Model, Description: "Unknown model"}, false
}
