package process

// Notes:
// - Real kill behavior needs a live browser and is not covered here. Only
//   PIDs that cannot name a process we own are exercised.

import "testing"

func TestKillProcessGroup_IgnoresInvalidPIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pid  int
	}{
		{"zero would target own group", 0},
		{"negative", -42},
		{"nonexistent", 999999999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// must return without panicking or signalling this process
			KillProcessGroup(tt.pid)
		})
	}
}
