// internal/saunum/registers.go
package saunum

import "time"

// Register map of the Saunum controller.
// Addresses are protocol-locked and MUST NOT be configurable.

// ---- CONNECTION DEFAULTS ----

const (
	DefaultPort    = 502
	DefaultUnitID  = 1
	DefaultTimeout = 10 * time.Second
)

// ---- CONTROL BLOCK (read/write) ----

const (
	RegSessionActive     uint16 = 0
	RegSaunaType         uint16 = 1
	RegSaunaDuration     uint16 = 2
	RegFanDuration       uint16 = 3
	RegTargetTemperature uint16 = 4
	RegFanSpeed          uint16 = 5
	RegLight             uint16 = 6
)

// ---- STATUS BLOCK (read-only) ----

const (
	RegCurrentTemperature   uint16 = 100
	RegOnTimeHigh           uint16 = 101
	RegOnTimeLow            uint16 = 102
	RegHeaterElementsActive uint16 = 103
	RegDoorStatus           uint16 = 104
)

// ---- ALARM BLOCK (read-only) ----

const (
	RegAlarmDoorOpen        uint16 = 200
	RegAlarmDoorSensor      uint16 = 201
	RegAlarmThermalCutoff   uint16 = 202
	RegAlarmInternalTemp    uint16 = 203
	RegAlarmTempSensorShort uint16 = 204
	RegAlarmTempSensorOpen  uint16 = 205
)

// ---- LIMITS ----

const (
	MinTemperature = 40
	MaxTemperature = 100

	MinSaunaDuration     = 0
	MaxSaunaDuration     = 720
	DefaultSaunaDuration = 120

	MinFanDuration = 0
	MaxFanDuration = 30

	MaxHeaterElements = 3
)

// Block is one contiguous register range read in a single transport call.
type Block struct {
	Name  string
	Base  uint16
	Count uint16
}

// Offset returns the index of addr inside the block's word slice.
func (b Block) Offset(addr uint16) int {
	return int(addr - b.Base)
}

var (
	ControlBlock = Block{Name: "control", Base: RegSessionActive, Count: 7}
	StatusBlock  = Block{Name: "status", Base: RegCurrentTemperature, Count: 5}
	AlarmBlock   = Block{Name: "alarms", Base: RegAlarmDoorOpen, Count: 6}
)

// Blocks lists the blocks in the order a full read issues them.
var Blocks = []Block{ControlBlock, StatusBlock, AlarmBlock}

// Access is the direction a register may be used in.
type Access uint8

const (
	ReadOnly Access = iota
	ReadWrite
)

func (a Access) String() string {
	if a == ReadWrite {
		return "rw"
	}
	return "ro"
}

// Register describes a single addressable word.
type Register struct {
	Name    string
	Address uint16
	Block   Block
	Access  Access
	Unit    string
}

// Registers is the full static map, ordered by address.
var Registers = []Register{
	{Name: "session_active", Address: RegSessionActive, Block: ControlBlock, Access: ReadWrite},
	{Name: "sauna_type", Address: RegSaunaType, Block: ControlBlock, Access: ReadWrite},
	{Name: "sauna_duration", Address: RegSaunaDuration, Block: ControlBlock, Access: ReadWrite, Unit: "min"},
	{Name: "fan_duration", Address: RegFanDuration, Block: ControlBlock, Access: ReadWrite, Unit: "min"},
	{Name: "target_temperature", Address: RegTargetTemperature, Block: ControlBlock, Access: ReadWrite, Unit: "°C"},
	{Name: "fan_speed", Address: RegFanSpeed, Block: ControlBlock, Access: ReadWrite},
	{Name: "light", Address: RegLight, Block: ControlBlock, Access: ReadWrite},

	{Name: "current_temperature", Address: RegCurrentTemperature, Block: StatusBlock, Access: ReadOnly, Unit: "°C"},
	{Name: "on_time_high", Address: RegOnTimeHigh, Block: StatusBlock, Access: ReadOnly, Unit: "s"},
	{Name: "on_time_low", Address: RegOnTimeLow, Block: StatusBlock, Access: ReadOnly, Unit: "s"},
	{Name: "heater_elements_active", Address: RegHeaterElementsActive, Block: StatusBlock, Access: ReadOnly},
	{Name: "door_open", Address: RegDoorStatus, Block: StatusBlock, Access: ReadOnly},

	{Name: "alarm_door_open", Address: RegAlarmDoorOpen, Block: AlarmBlock, Access: ReadOnly},
	{Name: "alarm_door_sensor", Address: RegAlarmDoorSensor, Block: AlarmBlock, Access: ReadOnly},
	{Name: "alarm_thermal_cutoff", Address: RegAlarmThermalCutoff, Block: AlarmBlock, Access: ReadOnly},
	{Name: "alarm_internal_temp", Address: RegAlarmInternalTemp, Block: AlarmBlock, Access: ReadOnly},
	{Name: "alarm_temp_sensor_short", Address: RegAlarmTempSensorShort, Block: AlarmBlock, Access: ReadOnly},
	{Name: "alarm_temp_sensor_open", Address: RegAlarmTempSensorOpen, Block: AlarmBlock, Access: ReadOnly},
}

// Lookup returns the register at addr. Writes go through it to refuse
// read-only addresses.
func Lookup(addr uint16) (Register, bool) {
	for _, r := range Registers {
		if r.Address == addr {
			return r, true
		}
	}
	return Register{}, false
}
