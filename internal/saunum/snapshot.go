// internal/saunum/snapshot.go
package saunum

import (
	"fmt"
	"time"
)

// Alarms are the six independent alarm flags.
type Alarms struct {
	DoorOpenDuringSession bool
	DoorOpenTooLong       bool
	ThermalCutoff         bool
	InternalOvertemp      bool
	SensorShort           bool
	SensorOpen            bool
}

// Any reports whether at least one alarm is raised.
func (a Alarms) Any() bool {
	return a.DoorOpenDuringSession || a.DoorOpenTooLong || a.ThermalCutoff ||
		a.InternalOvertemp || a.SensorShort || a.SensorOpen
}

// Anomaly records a field whose raw value was outside its documented domain.
// The field is still decoded; anomalies are informational.
type Anomaly struct {
	Field  string
	Raw    uint16
	Reason string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s=%d: %s", a.Field, a.Raw, a.Reason)
}

// Snapshot is one fully decoded read of device state.
// It is created fresh by every read and never mutated afterwards.
//
// Temperatures are °C. Durations are minutes; 0 means "type default".
type Snapshot struct {
	// control
	SessionActive     bool
	SaunaType         Enum[SaunaType]
	SaunaDuration     int
	FanDuration       int
	TargetTemperature int
	FanSpeed          Optional[FanSpeed]
	LightOn           bool

	// status
	CurrentTemperature   float64
	OnTime               uint32 // seconds since last reset
	HeaterElementsActive int
	DoorOpen             bool

	Alarms Alarms

	Anomalies []Anomaly
}

// OnTimeDuration returns OnTime as a time.Duration.
func (s Snapshot) OnTimeDuration() time.Duration {
	return time.Duration(s.OnTime) * time.Second
}

// BuildSnapshot decodes the three raw blocks into a Snapshot.
// Only a wrong word count fails; suspicious field values degrade and are
// listed in Snapshot.Anomalies.
func BuildSnapshot(control, status, alarms []uint16) (Snapshot, error) {
	if err := checkLen(ControlBlock, control); err != nil {
		return Snapshot{}, err
	}
	if err := checkLen(StatusBlock, status); err != nil {
		return Snapshot{}, err
	}
	if err := checkLen(AlarmBlock, alarms); err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	var anomalies []Anomaly
	flag := func(field string, raw uint16, reason string) {
		anomalies = append(anomalies, Anomaly{Field: field, Raw: raw, Reason: reason})
	}

	ctl := func(addr uint16) uint16 { return control[ControlBlock.Offset(addr)] }
	sts := func(addr uint16) uint16 { return status[StatusBlock.Offset(addr)] }
	alm := func(addr uint16) uint16 { return alarms[AlarmBlock.Offset(addr)] }

	// ---- control ----

	s.SessionActive = DecodeBool(ctl(RegSessionActive))

	s.SaunaType = DecodeEnum(ctl(RegSaunaType), SaunaType.Valid)
	if !s.SaunaType.IsKnown() {
		flag("sauna_type", s.SaunaType.Raw(), "unrecognized type code")
	}

	raw := ctl(RegSaunaDuration)
	s.SaunaDuration = int(raw)
	if raw > MaxSaunaDuration {
		flag("sauna_duration", raw, "exceeds maximum")
	}

	raw = ctl(RegFanDuration)
	s.FanDuration = int(raw)
	if raw > MaxFanDuration {
		flag("fan_duration", raw, "exceeds maximum")
	}

	raw = ctl(RegTargetTemperature)
	s.TargetTemperature = int(raw)
	if raw != 0 && (raw < MinTemperature || raw > MaxTemperature) {
		flag("target_temperature", raw, "outside 40-100")
	}

	raw = ctl(RegFanSpeed)
	if fs := FanSpeed(raw); fs.Valid() {
		s.FanSpeed = Some(fs)
	} else {
		s.FanSpeed = None[FanSpeed]()
		flag("fan_speed", raw, "unrecognized fan speed")
	}

	s.LightOn = DecodeBool(ctl(RegLight))

	// ---- status ----

	s.CurrentTemperature = float64(DecodeSignedWord(sts(RegCurrentTemperature)))
	s.OnTime = DecodeComposite32(sts(RegOnTimeHigh), sts(RegOnTimeLow))

	raw = sts(RegHeaterElementsActive)
	s.HeaterElementsActive = int(raw)
	if raw > MaxHeaterElements {
		flag("heater_elements_active", raw, "exceeds element count")
	}

	s.DoorOpen = DecodeBool(sts(RegDoorStatus))

	// ---- alarms ----

	s.Alarms = Alarms{
		DoorOpenDuringSession: DecodeBool(alm(RegAlarmDoorOpen)),
		DoorOpenTooLong:       DecodeBool(alm(RegAlarmDoorSensor)),
		ThermalCutoff:         DecodeBool(alm(RegAlarmThermalCutoff)),
		InternalOvertemp:      DecodeBool(alm(RegAlarmInternalTemp)),
		SensorShort:           DecodeBool(alm(RegAlarmTempSensorShort)),
		SensorOpen:            DecodeBool(alm(RegAlarmTempSensorOpen)),
	}

	s.Anomalies = anomalies
	return s, nil
}

func checkLen(b Block, words []uint16) error {
	if len(words) != int(b.Count) {
		return newError(KindInvalidData, "decode "+b.Name,
			fmt.Errorf("got %d words, want %d", len(words), b.Count))
	}
	return nil
}
