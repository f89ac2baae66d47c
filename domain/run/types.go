package run

import (
	"crypto/sha256"
	"fmt"
	"time"

	"heartpanel/domain/core"
)

// Stage names, in execution order
const (
	StageRead      = "read"
	StageNormalize = "normalize"
	StageMerge     = "merge"
	StageReshape   = "reshape"
	StageImpute    = "impute"
	StageOverride  = "override"
	StageAssemble  = "assemble"
	StagePersist   = "persist"
)

// StageTiming records how long one stage took and what it produced
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
	Rows     int           `json:"rows"`
	Columns  int           `json:"columns"`
}

// RunFingerprint identifies the inputs of a run so identical runs can be recognized
type RunFingerprint struct {
	ManifestHash core.Hash `json:"manifest_hash"`
	SourceHash   core.Hash `json:"source_hash"`
	CodeVersion  string    `json:"code_version"`
	Fingerprint  core.Hash `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from the source manifest, the source contents and the code version
func NewRunFingerprint(manifestHash, sourceHash core.Hash, codeVersion string) RunFingerprint {
	return RunFingerprint{
		ManifestHash: manifestHash,
		SourceHash:   sourceHash,
		CodeVersion:  codeVersion,
		Fingerprint:  computeRunFingerprint(manifestHash, sourceHash, codeVersion),
	}
}

func computeRunFingerprint(manifestHash, sourceHash core.Hash, codeVersion string) core.Hash {
	data := fmt.Sprintf("manifest:%s|sources:%s|code:%s", manifestHash, sourceHash, codeVersion)
	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
