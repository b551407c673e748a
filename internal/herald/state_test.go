package herald

import (
	"reflect"
	"testing"
)

func TestSeenState_Advance(t *testing.T) {
	tests := []struct {
		name       string
		state      SeenState
		published  []Announcement
		windowSize int
		want       SeenState
	}{
		{
			name:       "first advance sets watermark",
			state:      SeenState{},
			published:  []Announcement{ann("e1", 100)},
			windowSize: 5,
			want:       SeenState{LastGID: "e1", LastPostedAt: 100, Window: []string{"e1"}},
		},
		{
			name:       "multiple published advance to last",
			state:      SeenState{LastGID: "e1", LastPostedAt: 100, Window: []string{"e1"}},
			published:  []Announcement{ann("e2", 200), ann("e3", 300)},
			windowSize: 5,
			want:       SeenState{LastGID: "e3", LastPostedAt: 300, Window: []string{"e1", "e2", "e3"}},
		},
		{
			name:       "window evicts oldest beyond bound",
			state:      SeenState{LastGID: "e2", LastPostedAt: 200, Window: []string{"e1", "e2"}},
			published:  []Announcement{ann("e3", 300), ann("e4", 400)},
			windowSize: 3,
			want:       SeenState{LastGID: "e4", LastPostedAt: 400, Window: []string{"e2", "e3", "e4"}},
		},
		{
			name:       "timestamp watermark never regresses",
			state:      SeenState{LastGID: "e2", LastPostedAt: 200, Window: []string{"e2"}},
			published:  []Announcement{ann("edited", 150)},
			windowSize: 5,
			want:       SeenState{LastGID: "edited", LastPostedAt: 200, Window: []string{"e2", "edited"}},
		},
		{
			name:       "empty publish is a no-op",
			state:      SeenState{LastGID: "e1", LastPostedAt: 100, Window: []string{"e1"}},
			published:  nil,
			windowSize: 5,
			want:       SeenState{LastGID: "e1", LastPostedAt: 100, Window: []string{"e1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.state.Advance(tt.published, tt.windowSize)
			if got.LastGID != tt.want.LastGID || got.LastPostedAt != tt.want.LastPostedAt {
				t.Errorf("Advance() watermark = %s/%d, want %s/%d",
					got.LastGID, got.LastPostedAt, tt.want.LastGID, tt.want.LastPostedAt)
			}
			if !reflect.DeepEqual(got.Window, tt.want.Window) {
				t.Errorf("Advance() window = %v, want %v", got.Window, tt.want.Window)
			}
		})
	}
}

func TestSeenState_AdvanceDoesNotMutateReceiver(t *testing.T) {
	state := SeenState{LastGID: "e1", LastPostedAt: 100, Window: []string{"e1"}}

	_ = state.Advance([]Announcement{ann("e2", 200)}, 5)

	if state.LastGID != "e1" || len(state.Window) != 1 {
		t.Errorf("receiver was mutated: %+v", state)
	}
}

func TestSeenState_Seen(t *testing.T) {
	state := SeenState{Window: []string{"a", "b"}}
	if !state.Seen("a") || !state.Seen("b") {
		t.Error("Seen() should report windowed GIDs")
	}
	if state.Seen("c") {
		t.Error("Seen() reported an unknown GID")
	}
}

func TestSeenState_WindowSet(t *testing.T) {
	state := SeenState{Window: []string{"a", "b", "c"}}

	set := state.WindowSet()
	if len(set) != 3 {
		t.Fatalf("WindowSet() has %d entries, want 3", len(set))
	}
	for _, gid := range state.Window {
		if _, ok := set[gid]; !ok {
			t.Errorf("WindowSet() missing windowed GID %q", gid)
		}
	}
	if _, ok := set["d"]; ok {
		t.Error("WindowSet() contains a GID that was never delivered")
	}
}
