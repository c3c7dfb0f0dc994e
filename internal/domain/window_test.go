package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowSplit(t *testing.T) {
	tests := []struct {
		name      string
		window    Window
		wantLeft  Window
		wantRight Window
		wantOK    bool
	}{
		{
			name:      "even range",
			window:    Window{StartMs: 0, EndMs: 100},
			wantLeft:  Window{StartMs: 0, EndMs: 50},
			wantRight: Window{StartMs: 51, EndMs: 100},
			wantOK:    true,
		},
		{
			name:      "two units wide",
			window:    Window{StartMs: 5, EndMs: 6},
			wantLeft:  Window{StartMs: 5, EndMs: 5},
			wantRight: Window{StartMs: 6, EndMs: 6},
			wantOK:    true,
		},
		{
			name:   "single unit cannot split",
			window: Window{StartMs: 5, EndMs: 5},
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			left, right, ok := tc.window.Split()
			require.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				return
			}
			require.Equal(t, tc.wantLeft, left)
			require.Equal(t, tc.wantRight, right)
			// halves never overlap and cover the whole range
			require.Equal(t, left.EndMs+1, right.StartMs)
			require.Equal(t, tc.window.StartMs, left.StartMs)
			require.Equal(t, tc.window.EndMs, right.EndMs)
		})
	}
}
