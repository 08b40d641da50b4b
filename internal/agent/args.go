package agent

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeArgs maps a parsed argument object onto a tool's typed parameter
// struct. Decoding is weakly typed so models that send "60" for a numeric
// field still work. Unknown keys are ignored.
func DecodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building argument decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decoding arguments: %w", err)
	}
	return nil
}
