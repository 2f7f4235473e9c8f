package configuration

import (
	"encoding/hex"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// KgKey holds the raw bytes of a BMC key.
type KgKey []byte

// ParseKgKey decodes the given text as hex, falling back to its literal bytes
// if it isn't valid hex. An empty text results in no key.
func ParseKgKey(text string) KgKey {
	text = strings.TrimSpace(text)
	if len(text) <= 0 {
		return nil
	}
	decoded, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(text), "0x"))
	if err == nil {
		return decoded
	}
	return KgKey(text)
}

// Hex returns the key in the hex format ipmitool expects.
func (k KgKey) Hex() string {
	return hex.EncodeToString(k)
}

// KgKeyHookFunc returns a mapstructure decode hook function for KgKey.
func KgKeyHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{}) (interface{}, error) {

		if t != reflect.TypeOf(KgKey{}) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ParseKgKey(v), nil
		case nil:
			return KgKey(nil), nil
		default:
			return data, nil
		}
	}
}
