package metrics

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const hexLabelPrefix = "hex:"

// QueueLabel maps a queue name to a valid Prometheus label value. Valid UTF-8
// names pass through unchanged; anything else, and any name that already
// starts with "hex:", is written as "hex:" followed by its bytes in hex so two
// distinct names never share a label.
func QueueLabel(name string) string {
	if utf8.ValidString(name) && !strings.HasPrefix(name, hexLabelPrefix) {
		return name
	}
	return hexLabelPrefix + hex.EncodeToString([]byte(name))
}
