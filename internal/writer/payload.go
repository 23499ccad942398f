// internal/writer/payload.go
package writer

import (
	"encoding/json"
	"time"

	"github.com/tamzrod/saunum-bridge/internal/saunum"
)

type stateAlarms struct {
	DoorOpenDuringSession bool `json:"door_open_during_session"`
	DoorOpenTooLong       bool `json:"door_open_too_long"`
	ThermalCutoff         bool `json:"thermal_cutoff"`
	InternalOvertemp      bool `json:"internal_overtemp"`
	SensorShort           bool `json:"sensor_short"`
	SensorOpen            bool `json:"sensor_open"`
}

type stateAnomaly struct {
	Field  string `json:"field"`
	Raw    uint16 `json:"raw"`
	Reason string `json:"reason"`
}

// stateDocument is the published form of a snapshot.
// Enumerations carry both the name and the raw code.
type stateDocument struct {
	Unit string    `json:"unit"`
	At   time.Time `json:"at"`

	SessionActive     bool    `json:"session_active"`
	SaunaType         string  `json:"sauna_type"`
	SaunaTypeCode     uint16  `json:"sauna_type_code"`
	SaunaDuration     int     `json:"sauna_duration"`
	FanDuration       int     `json:"fan_duration"`
	TargetTemperature int     `json:"target_temperature"`
	FanSpeed          *string `json:"fan_speed"`
	LightOn           bool    `json:"light_on"`

	CurrentTemperature   float64 `json:"current_temperature"`
	OnTimeSeconds        uint32  `json:"on_time_seconds"`
	HeaterElementsActive int     `json:"heater_elements_active"`
	DoorOpen             bool    `json:"door_open"`

	Alarms    stateAlarms    `json:"alarms"`
	AlarmAny  bool           `json:"alarm_any"`
	Anomalies []stateAnomaly `json:"anomalies,omitempty"`
}

func encodeState(unit string, at time.Time, s saunum.Snapshot) ([]byte, error) {
	doc := stateDocument{
		Unit: unit,
		At:   at.UTC(),

		SessionActive:     s.SessionActive,
		SaunaType:         s.SaunaType.String(),
		SaunaTypeCode:     s.SaunaType.Raw(),
		SaunaDuration:     s.SaunaDuration,
		FanDuration:       s.FanDuration,
		TargetTemperature: s.TargetTemperature,
		LightOn:           s.LightOn,

		CurrentTemperature:   s.CurrentTemperature,
		OnTimeSeconds:        s.OnTime,
		HeaterElementsActive: s.HeaterElementsActive,
		DoorOpen:             s.DoorOpen,

		Alarms: stateAlarms{
			DoorOpenDuringSession: s.Alarms.DoorOpenDuringSession,
			DoorOpenTooLong:       s.Alarms.DoorOpenTooLong,
			ThermalCutoff:         s.Alarms.ThermalCutoff,
			InternalOvertemp:      s.Alarms.InternalOvertemp,
			SensorShort:           s.Alarms.SensorShort,
			SensorOpen:            s.Alarms.SensorOpen,
		},
		AlarmAny: s.Alarms.Any(),
	}

	// absent fan speed is published as null
	if fs, ok := s.FanSpeed.Get(); ok {
		name := fs.String()
		doc.FanSpeed = &name
	}

	for _, a := range s.Anomalies {
		doc.Anomalies = append(doc.Anomalies, stateAnomaly{Field: a.Field, Raw: a.Raw, Reason: a.Reason})
	}

	return json.Marshal(doc)
}
