package config

import (
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
)

// HexIdentity is a host.Identity as it appears in config files: a 64-hex-
// character string.
type HexIdentity [32]byte

func decodeHexIdentity() mapstructure.DecodeHookFunc {
	identityType := reflect.TypeOf(HexIdentity{})
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != identityType || from.Kind() != reflect.String {
			return data, nil
		}
		s, _ := data.(string)
		if s == "" {
			return HexIdentity{}, nil
		}
		raw, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("decoding identity %q: %w", s, err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("identity %q must be 32 bytes hex-encoded, got %d", s, len(raw))
		}
		var id HexIdentity
		copy(id[:], raw)
		return id, nil
	}
}

// Identity converts h into a host.Identity.
func (h HexIdentity) Identity() host.Identity { return host.Identity(h) }
