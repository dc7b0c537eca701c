package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// deviceKeyPrefix marks SpaceLink-issued device keys.
const deviceKeyPrefix = "ok"

// deviceKeyEntropyBytes is the random suffix length. 16 bytes gives 128 bits
// of entropy; uniqueness rests on that, not on a store constraint.
const deviceKeyEntropyBytes = 16

// GenerateDeviceKey creates an unguessable device key bound to a device id.
// Format: ok_<device_id>_<urlsafe random>.
func GenerateDeviceKey(deviceID string) (string, error) {
	buf := make([]byte, deviceKeyEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	suffix := base64.RawURLEncoding.EncodeToString(buf)
	return fmt.Sprintf("%s_%s_%s", deviceKeyPrefix, deviceID, suffix), nil
}
