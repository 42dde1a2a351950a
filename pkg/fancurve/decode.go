package fancurve

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

var tableType = reflect.TypeOf(Table{})

// TableDecodeHook converts lists of numbers from profile files into Tables,
// rejecting values outside 0..255
func TableDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != tableType {
			return data, nil
		}
		if from.Kind() != reflect.Slice && from.Kind() != reflect.Array {
			return data, nil
		}

		v := reflect.ValueOf(data)
		tbl := make(Table, v.Len())
		for i := 0; i < v.Len(); i++ {
			n, err := toInt(v.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("entry %d: value %d out of range 0..255", i, n)
			}
			tbl[i] = uint8(n)
		}
		return tbl, nil
	}
}

func toInt(v interface{}) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("value %v is not an integer", f)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

// DecodeConfig decodes a generic map (as produced by viper or a JSON/YAML decoder) into a Config
func DecodeConfig(input interface{}) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  TableDecodeHook(),
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(input); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
