package json

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"

	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// nolint: gochecknoglobals
var jsonLib = jsoniter.ConfigCompatibleWithStandardLibrary

func Encode(v any, pretty bool) ([]byte, error) {
	var data []byte
	var err error
	if pretty {
		data, err = jsonLib.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = jsonLib.Marshal(v)
	}
	if err != nil {
		return nil, processJSONError(err)
	}
	return data, nil
}

func MustEncode(v any, pretty bool) []byte {
	data, err := Encode(v, pretty)
	if err != nil {
		panic(err)
	}
	return data
}

func EncodeString(v any, pretty bool) (string, error) {
	data, err := Encode(v, pretty)
	return string(data), err
}

func MustEncodeString(v any, pretty bool) string {
	data, err := EncodeString(v, pretty)
	if err != nil {
		panic(err)
	}
	return data
}

func Decode(data []byte, m any) error {
	if err := jsonLib.Unmarshal(data, m); err != nil {
		return processJSONError(err)
	}
	return nil
}

func MustDecode(data []byte, m any) {
	if err := Decode(data, m); err != nil {
		panic(err)
	}
}

func DecodeString(data string, m any) error {
	return Decode([]byte(data), m)
}

func MustDecodeString(data string, m any) {
	if err := DecodeString(data, m); err != nil {
		panic(err)
	}
}

func processJSONError(err error) error {
	switch err := err.(type) { // nolint: errorlint
	// Custom error message
	case *json.UnmarshalTypeError:
		return errors.Errorf(`key "%s" has invalid type "%s"`, err.Field, err.Value)
	case *json.SyntaxError:
		return errors.Errorf("%s, offset: %d", err, err.Offset)
	default:
		return errors.WithStack(err)
	}
}
