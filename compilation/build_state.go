package compilation

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/cairn/compilation/types"
	"github.com/crytic/cairn/logging"
	"github.com/crytic/cairn/logging/colors"
	"github.com/crytic/cairn/utils"
	"github.com/fxamacker/cbor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/slices"
)

// BuildStateFileName is the name of the database file build records are stored in.
const BuildStateFileName = "build-state.db"

// buildStateBucket is the database bucket holding build records.
var buildStateBucket = []byte("buildState")

// latestBuildKey is the database key the most recent build record is stored under.
var latestBuildKey = []byte("latest")

// BuildRecord describes a single completed compilation: a unique identifier, a digest of the
// artifacts it produced, and when it finished.
type BuildRecord struct {
	// BuildId uniquely identifies the build.
	BuildId string `cbor:"buildId"`

	// ArtifactHash is the SHA3-256 digest of the artifacts the build produced.
	ArtifactHash string `cbor:"artifactHash"`

	// ContractCount is the number of contract artifacts the build produced.
	ContractCount int `cbor:"contractCount"`

	// Timestamp is the unix time the build finished.
	Timestamp int64 `cbor:"timestamp"`
}

// NewBuildRecord returns a BuildRecord for the provided artifacts, stamped with a fresh build
// identifier and the current time.
func NewBuildRecord(artifacts []types.ContractType) *BuildRecord {
	return &BuildRecord{
		BuildId:       uuid.New().String(),
		ArtifactHash:  ComputeArtifactHash(artifacts),
		ContractCount: len(artifacts),
		Timestamp:     time.Now().Unix(),
	}
}

// ComputeArtifactHash computes a SHA3-256 digest over the provided contract artifacts. Artifacts
// are hashed in contract name order so the digest is independent of the order they were compiled
// in.
func ComputeArtifactHash(artifacts []types.ContractType) string {
	hasher := sha3.New256()

	// Sort a copy by contract name for deterministic hashing.
	sorted := slices.Clone(artifacts)
	slices.SortFunc(sorted, func(a types.ContractType, b types.ContractType) int {
		return strings.Compare(a.ContractName, b.ContractName)
	})

	// Hash each artifact's name and bytecode payloads.
	for _, artifact := range sorted {
		hasher.Write([]byte(artifact.ContractName))
		if artifact.DeploymentBytecode != nil {
			hasher.Write([]byte(artifact.DeploymentBytecode.Bytecode))
		}
		if artifact.RuntimeBytecode != nil {
			hasher.Write([]byte(artifact.RuntimeBytecode.Bytecode))
		}
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// BuildStateDatabase persists build records across runs.
type BuildStateDatabase struct {
	db *bbolt.DB
}

// OpenBuildStateDatabase opens the build state database at the provided path, creating it and its
// parent folder if they do not exist. Returns the database, or an error if one occurred.
func OpenBuildStateDatabase(path string) (*BuildStateDatabase, error) {
	if err := utils.MakeDirectory(filepath.Dir(path)); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Create the record bucket if it doesn't exist.
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(buildStateBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}
	return &BuildStateDatabase{db: db}, nil
}

// LatestBuild returns the most recently recorded build, or nil if no build has been recorded yet.
// Returns an error if one occurred while reading.
func (b *BuildStateDatabase) LatestBuild() (*BuildRecord, error) {
	var record *BuildRecord
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(buildStateBucket).Get(latestBuildKey)
		if data == nil {
			return nil
		}
		decoded := BuildRecord{}
		if err := cbor.Unmarshal(data, &decoded); err != nil {
			return err
		}
		record = &decoded
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return record, nil
}

// RecordBuild stores the provided record as the most recent build. Returns an error if one
// occurred.
func (b *BuildStateDatabase) RecordBuild(record *BuildRecord) error {
	data, err := cbor.Marshal(record, cbor.EncOptions{Canonical: true})
	if err != nil {
		return errors.WithStack(err)
	}
	err = b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(buildStateBucket).Put(latestBuildKey, data)
	})
	return errors.WithStack(err)
}

// Close closes the underlying database.
func (b *BuildStateDatabase) Close() error {
	return errors.WithStack(b.db.Close())
}

// NotifyBuildStatus compares the provided artifacts against the most recent build record, logs
// whether this build is new, changed, or identical, and records the build. Notification is skipped
// entirely when the build produced no artifacts.
func NotifyBuildStatus(database *BuildStateDatabase, artifacts []types.ContractType, logger *logging.Logger) {
	if len(artifacts) == 0 {
		return
	}

	// Compare the current digest against the previous build, if any.
	currentHash := ComputeArtifactHash(artifacts)
	previous, err := database.LatestBuild()
	if err != nil {
		logger.Warn("Failed to read the previous build record", err)
		previous = nil
	}
	if previous == nil {
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			"Compiled a ", colors.GreenBold, "new", colors.Reset, " set of build artifacts",
		)
	} else if previous.ArtifactHash != currentHash {
		timeSince := time.Since(time.Unix(previous.Timestamp, 0))
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			"Build artifacts ", colors.GreenBold, "changed", colors.Reset,
			" since the previous build (last build: ", formatDuration(timeSince), " ago)",
		)
	} else {
		timeSince := time.Since(time.Unix(previous.Timestamp, 0))
		logger.Warn(
			colors.Bold, "artifacts: ", colors.Reset,
			"Build artifacts are the ", colors.YellowBold, "same", colors.Reset,
			" as the previous build (last build: ", formatDuration(timeSince), " ago)",
		)
	}

	// Store this build as the most recent one.
	if err = database.RecordBuild(NewBuildRecord(artifacts)); err != nil {
		logger.Warn("Failed to record the build state", err)
	}
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
