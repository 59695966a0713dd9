package model

import "testing"

func TestCanAdvanceStage_AllowsExpectedPaths(t *testing.T) {
	cases := []struct {
		from string
		to   string
	}{
		{StagePending, StageValidated},
		{StagePending, StageInvalidURL},
		{StageValidated, StageFetched},
		{StageValidated, StageAlreadyDownloaded},
		{StageValidated, StageFetchFailed},
		{StageFetched, StageDownloaded},
		{StageFetched, StageDownloadFailed},
		{StageDownloaded, StageRecorded},
		{StageDownloaded, StageSaveFailed},
	}

	for _, tc := range cases {
		if !CanAdvanceStage(tc.from, tc.to) {
			t.Fatalf("expected stage transition %q -> %q to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanAdvanceStage_RejectsInvalidPaths(t *testing.T) {
	cases := []struct {
		from string
		to   string
	}{
		{StagePending, StageRecorded},
		{StageInvalidURL, StageValidated},
		{StageRecorded, StageDownloaded},
		{StageFetched, StageRecorded},
		{"not_a_stage", StageValidated},
	}

	for _, tc := range cases {
		if CanAdvanceStage(tc.from, tc.to) {
			t.Fatalf("expected stage transition %q -> %q to be rejected", tc.from, tc.to)
		}
	}
}

func TestAdvanceOutcome_BlocksIllegalTransition(t *testing.T) {
	o := ItemOutcome{URL: "https://example.com/v/1", Stage: StagePending}

	if err := AdvanceOutcome(&o, StageRecorded); err == nil {
		t.Fatalf("expected illegal transition error")
	}
	if err := AdvanceOutcome(&o, StageValidated); err != nil {
		t.Fatalf("advance to validated: %v", err)
	}
	if o.Success {
		t.Fatalf("validated is not a terminal success stage")
	}
}

func TestStageIsSuccess(t *testing.T) {
	if !StageIsSuccess(StageRecorded) || !StageIsSuccess(StageAlreadyDownloaded) || !StageIsSuccess(StageDownloaded) {
		t.Fatalf("expected recorded, downloaded and already_downloaded to count as success")
	}
	if StageIsSuccess(StageSaveFailed) || StageIsSuccess(StageFetchFailed) {
		t.Fatalf("failure stages must not count as success")
	}
}
