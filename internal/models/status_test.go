package models

import "testing"

func TestNormalizePatchStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"created", PatchCreated},
		{"started", PatchStarted},
		{"Running", PatchStarted},
		{"success", PatchSucceeded},
		{"succeeded", PatchSucceeded},
		{"failed", PatchFailed},
		{" FAILED ", PatchFailed},
		{"", PatchUnknown},
		{"something-new", PatchUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizePatchStatus(tt.in); got != tt.want {
				t.Errorf("NormalizePatchStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsFailedTaskStatus(t *testing.T) {
	failing := []string{"failed", "setup-failed", "system-failed", "task-timed-out", "test-timed-out", "SYSTEM-UNRESPONSIVE"}
	for _, s := range failing {
		if !IsFailedTaskStatus(s) {
			t.Errorf("IsFailedTaskStatus(%q) = false, want true", s)
		}
	}

	notFailing := []string{"success", "started", "dispatched", "undispatched", "will-run", "aborted", ""}
	for _, s := range notFailing {
		if IsFailedTaskStatus(s) {
			t.Errorf("IsFailedTaskStatus(%q) = true, want false", s)
		}
	}
}

func TestNormalizeTestStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fail", TestFailed},
		{"failed", TestFailed},
		{"pass", TestPassed},
		{"PASS", TestPassed},
		{"skip", TestSkipped},
		{"silentfail", "silentfail"},
		{"Timeout", "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeTestStatus(tt.in); got != tt.want {
				t.Errorf("NormalizeTestStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
