// internal/command/command.go
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/saunum-bridge/internal/saunum"
)

// ErrInvalidCommand is matched by every Parse failure.
var ErrInvalidCommand = errors.New("command: invalid command")

// Parameter names, used as the last topic level of a set request.
const (
	ParamSession           = "session"
	ParamTargetTemperature = "target_temperature"
	ParamSaunaDuration     = "sauna_duration"
	ParamFanDuration       = "fan_duration"
	ParamFanSpeed          = "fan_speed"
	ParamSaunaType         = "sauna_type"
	ParamLight             = "light"
)

// Params lists every settable parameter.
var Params = []string{
	ParamSession,
	ParamTargetTemperature,
	ParamSaunaDuration,
	ParamFanDuration,
	ParamFanSpeed,
	ParamSaunaType,
	ParamLight,
}

// Device is the write surface of a sauna session.
type Device interface {
	StartSession(ctx context.Context) error
	StopSession(ctx context.Context) error
	SetTargetTemperature(ctx context.Context, celsius int) error
	SetSaunaDuration(ctx context.Context, minutes int) error
	SetFanDuration(ctx context.Context, minutes int) error
	SetFanSpeed(ctx context.Context, speed saunum.FanSpeed) error
	SetSaunaType(ctx context.Context, t saunum.SaunaType) error
	SetLight(ctx context.Context, on bool) error
}

// Command is one parsed set request.
// Value carries the numeric argument; On carries the boolean one.
type Command struct {
	Param string
	Value int
	On    bool
}

func (c Command) String() string {
	switch c.Param {
	case ParamSession, ParamLight:
		return fmt.Sprintf("%s=%t", c.Param, c.On)
	case ParamFanSpeed:
		return fmt.Sprintf("%s=%s", c.Param, saunum.FanSpeed(c.Value))
	case ParamSaunaType:
		return fmt.Sprintf("%s=%s", c.Param, saunum.SaunaType(c.Value))
	default:
		return fmt.Sprintf("%s=%d", c.Param, c.Value)
	}
}

// Apply calls the matching setter. Range checks happen in the setter.
func (c Command) Apply(ctx context.Context, d Device) error {
	switch c.Param {
	case ParamSession:
		if c.On {
			return d.StartSession(ctx)
		}
		return d.StopSession(ctx)
	case ParamTargetTemperature:
		return d.SetTargetTemperature(ctx, c.Value)
	case ParamSaunaDuration:
		return d.SetSaunaDuration(ctx, c.Value)
	case ParamFanDuration:
		return d.SetFanDuration(ctx, c.Value)
	case ParamFanSpeed:
		return d.SetFanSpeed(ctx, saunum.FanSpeed(c.Value))
	case ParamSaunaType:
		return d.SetSaunaType(ctx, saunum.SaunaType(c.Value))
	case ParamLight:
		return d.SetLight(ctx, c.On)
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidCommand, c.Param)
	}
}

// Parse decodes a payload for param.
// Payloads are plain text; surrounding whitespace and quotes are ignored.
func Parse(param string, payload []byte) (Command, error) {
	raw := strings.ToLower(strings.Trim(strings.TrimSpace(string(payload)), `"`))
	if raw == "" {
		return Command{}, fmt.Errorf("%w: %s: empty payload", ErrInvalidCommand, param)
	}

	c := Command{Param: param}

	switch param {
	case ParamSession, ParamLight:
		on, err := parseSwitch(raw)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %s: %v", ErrInvalidCommand, param, err)
		}
		c.On = on

	case ParamTargetTemperature, ParamSaunaDuration, ParamFanDuration:
		v, err := parseNumber(raw)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %s: %v", ErrInvalidCommand, param, err)
		}
		c.Value = v

	case ParamFanSpeed:
		v, err := parseNamed(raw, fanSpeedNames)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %s: %v", ErrInvalidCommand, param, err)
		}
		c.Value = v

	case ParamSaunaType:
		v, err := parseNamed(raw, saunaTypeNames)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %s: %v", ErrInvalidCommand, param, err)
		}
		c.Value = v

	default:
		return Command{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidCommand, param)
	}

	return c, nil
}

// ---- payload helpers ----

var fanSpeedNames = map[string]int{
	saunum.FanOff.String():    int(saunum.FanOff),
	saunum.FanLow.String():    int(saunum.FanLow),
	saunum.FanMedium.String(): int(saunum.FanMedium),
	saunum.FanHigh.String():   int(saunum.FanHigh),
}

var saunaTypeNames = map[string]int{
	saunum.SaunaType1.String(): int(saunum.SaunaType1),
	saunum.SaunaType2.String(): int(saunum.SaunaType2),
	saunum.SaunaType3.String(): int(saunum.SaunaType3),
}

func parseSwitch(raw string) (bool, error) {
	switch raw {
	case "on", "start", "true", "1":
		return true, nil
	case "off", "stop", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q is not on/off", raw)
}

// parseNumber accepts integers and integral floats ("80", "80.0").
func parseNumber(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	return int(f), nil
}

func parseNamed(raw string, names map[string]int) (int, error) {
	if v, ok := names[raw]; ok {
		return v, nil
	}
	return parseNumber(raw)
}
