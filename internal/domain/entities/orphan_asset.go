package entities

import "time"

// OrphanAsset is a stored media object that no record references anymore
// and whose deletion has not succeeded yet.
type OrphanAsset struct {
	PublicID     string    `json:"publicId"`
	ResourceType string    `json:"resourceType"`
	Reason       string    `json:"reason"`
	Attempts     int       `json:"attempts"`
	FirstSeenAt  time.Time `json:"firstSeenAt"`
}
