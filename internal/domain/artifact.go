package domain

import "fmt"

// ArtifactPrefix namespaces llms.txt blobs in the artifact store
const ArtifactPrefix = "llm"

// ArtifactKey returns the storage key of the llms.txt for a shop
func ArtifactKey(shopID int64) string {
	return fmt.Sprintf("%s/%d.txt", ArtifactPrefix, shopID)
}
