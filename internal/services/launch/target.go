package launch

import (
	"crypto/md5"

	"github.com/google/uuid"

	"github.com/cwmc/portable-launcher/internal/model"
)

// offlinePrefix is hashed together with the username by the game's offline mode
const offlinePrefix = "OfflinePlayer:"

// Build assembles the launch target from the derived identity, the directory resolution
// and the prepared instance path. It does not touch the filesystem or the network.
func Build(identity model.Identity, resolution model.Resolution, instancePath string) model.LaunchTarget {
	return model.LaunchTarget{
		Identity:     identity,
		PlayerUUID:   PlayerUUID(identity),
		Host:         resolution.Host,
		Port:         resolution.ServerPort,
		InstancePath: instancePath,
	}
}

// PlayerUUID returns the player UUID handed to the offline session. Directory-issued
// stable ids are already UUIDs and are used as-is; anything else gets the offline-mode
// UUID the game server itself would compute for the username.
func PlayerUUID(identity model.Identity) string {
	if id, err := uuid.Parse(identity.StableID); err == nil {
		return id.String()
	}
	return OfflineUUID(identity.Username).String()
}

// OfflineUUID computes the name-based version 3 UUID of "OfflinePlayer:<username>"
func OfflineUUID(username string) uuid.UUID {
	id := uuid.UUID(md5.Sum([]byte(offlinePrefix + username)))
	id[6] = (id[6] & 0x0f) | 0x30
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}
