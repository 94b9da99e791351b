package compilation

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/abiharness/logging"
	"github.com/crytic/abiharness/logging/colors"
	"github.com/crytic/abiharness/utils"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/slices"
)

// ArtifactHashCacheFileName is the name of the file used to store the artifact hash.
const ArtifactHashCacheFileName = ".abiharness-artifact-hash"

// ArtifactHashCache stores the hash of generated sources along with metadata.
type ArtifactHashCache struct {
	// Hash is the keccak256 hash of the generated sources.
	Hash string `json:"hash"`
	// Timestamp is when the hash was computed.
	Timestamp time.Time `json:"timestamp"`
}

// SourceArtifact describes one generated source which contributes to the artifact hash.
type SourceArtifact struct {
	// Name describes the logical name of the source.
	Name string
	// Source describes the generated source text.
	Source string
}

// ComputeArtifactHash computes a keccak256 hash of the provided generated sources. The hash is computed
// deterministically by sorting sources by name (and then by content) before hashing.
func ComputeArtifactHash(sources []SourceArtifact) string {
	hasher := sha3.NewLegacyKeccak256()

	// Sort a copy of the sources for deterministic hashing
	sorted := slices.Clone(sources)
	slices.SortFunc(sorted, func(a, b SourceArtifact) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Source, b.Source)
	})

	// Hash each source, length-prefixing the name so adjacent entries cannot alias
	for _, source := range sorted {
		hasher.Write([]byte(fmt.Sprintf("%d:%s", len(source.Name), source.Name)))
		hasher.Write([]byte(source.Source))
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

// LoadArtifactHashCache loads the artifact hash cache from the specified directory.
// Returns nil if the cache file does not exist or cannot be parsed.
func LoadArtifactHashCache(directory string) *ArtifactHashCache {
	cachePath := filepath.Join(directory, ArtifactHashCacheFileName)
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil
	}

	var cache ArtifactHashCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil
	}

	return &cache
}

// SaveArtifactHashCache saves the artifact hash cache to the specified directory.
// Returns an error if the cache cannot be written.
func SaveArtifactHashCache(directory string, cache *ArtifactHashCache) error {
	// Ensure the directory exists
	if err := utils.MakeDirectory(directory); err != nil {
		return errors.Wrap(err, "failed to create cache directory")
	}

	cachePath := filepath.Join(directory, ArtifactHashCacheFileName)
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal cache")
	}

	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write cache file")
	}

	return nil
}

// NotifyArtifactHashStatus compares the hash of the generated sources with a cached hash and logs an appropriate
// message. It also updates the cache with the new hash. Returns true if the sources changed since the cached run.
func NotifyArtifactHashStatus(sources []SourceArtifact, cacheDirectory string, logger *logging.Logger) bool {
	if len(sources) == 0 {
		return false
	}

	// Compute the current hash and load the cached one
	currentHash := ComputeArtifactHash(sources)
	cachedHash := LoadArtifactHashCache(cacheDirectory)

	// Compare and log the appropriate message
	changed := cachedHash == nil || cachedHash.Hash != currentHash
	if changed {
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			"compiling a ", colors.GreenBold, "new", colors.Reset, " set of generated bindings",
		)
	} else {
		timeSince := time.Since(cachedHash.Timestamp)
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			"compiling the ", colors.YellowBold, "same", colors.Reset,
			" generated bindings as previously (last run: ", formatDuration(timeSince), " ago)",
		)
	}

	// Update the cache with the current hash
	newCache := &ArtifactHashCache{
		Hash:      currentHash,
		Timestamp: time.Now(),
	}
	if err := SaveArtifactHashCache(cacheDirectory, newCache); err != nil {
		logger.Warn("Failed to save artifact hash cache", err)
	}
	return changed
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
