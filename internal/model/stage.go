package model

import "fmt"

// Per-item pipeline stages. An item moves forward through the happy path
// (pending -> validated -> fetched -> downloaded -> recorded) or lands on a
// terminal outcome stage; failures at one item never affect the next.
const (
	StagePending           = "pending"
	StageValidated         = "validated"
	StageFetched           = "fetched"
	StageDownloaded        = "downloaded"
	StageRecorded          = "recorded"
	StageAlreadyDownloaded = "already_downloaded"
	StageInvalidURL        = "invalid_url"
	StageFetchFailed       = "fetch_failed"
	StageDownloadFailed    = "download_failed"
	StageSaveFailed        = "store_save_failed"
)

var allowedStageTransitions = map[string]map[string]bool{
	StagePending: {
		StageValidated:  true,
		StageInvalidURL: true,
	},
	StageValidated: {
		StageFetched:           true,
		StageAlreadyDownloaded: true,
		StageFetchFailed:       true,
	},
	StageFetched: {
		StageDownloaded:     true,
		StageDownloadFailed: true,
	},
	StageDownloaded: {
		StageRecorded:   true,
		StageSaveFailed: true,
		// metadata export disabled: downloaded is already terminal
	},
	StageRecorded:          {},
	StageAlreadyDownloaded: {},
	StageInvalidURL:        {},
	StageFetchFailed:       {},
	StageDownloadFailed:    {},
	StageSaveFailed:        {},
}

func IsKnownStage(stage string) bool {
	_, ok := allowedStageTransitions[stage]
	return ok
}

// StageIsSuccess reports whether a terminal stage counts toward the batch's
// successful total. A duplicate skip is a success; a failed checkpoint save
// is not, so the caller can retry the item.
func StageIsSuccess(stage string) bool {
	switch stage {
	case StageRecorded, StageDownloaded, StageAlreadyDownloaded:
		return true
	default:
		return false
	}
}

func CanAdvanceStage(from, to string) bool {
	next, ok := allowedStageTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// AdvanceOutcome moves an outcome to the next stage, enforcing the
// transition table. Invalid transitions are programmer errors.
func AdvanceOutcome(o *ItemOutcome, toStage string) error {
	if !CanAdvanceStage(o.Stage, toStage) {
		return fmt.Errorf("invalid item stage transition: %q -> %q (url=%s)", o.Stage, toStage, o.URL)
	}
	o.Stage = toStage
	o.Success = StageIsSuccess(toStage)
	return nil
}
