package queue

import (
	"encoding/json"
	"fmt"

	"video-hub/internal/domain/entities"
)

// OrphanQueueKey is the redis list holding pending orphan deletions.
const OrphanQueueKey = "orphan_assets"

func SerializeOrphan(asset entities.OrphanAsset) (string, error) {
	bytes, err := json.Marshal(asset)
	if err != nil {
		return "", fmt.Errorf("failed to serialize orphan asset: %w", err)
	}
	return string(bytes), nil
}

func DeserializeOrphan(data string) (*entities.OrphanAsset, error) {
	var asset entities.OrphanAsset
	if err := json.Unmarshal([]byte(data), &asset); err != nil {
		return nil, fmt.Errorf("failed to deserialize orphan asset: %w", err)
	}
	return &asset, nil
}
