package model

import "time"

// CycleState is the process-wide phase state of the Gutter cycle. It is
// owned and mutated only by the cycle coordinator.
type CycleState struct {
	IsOpen             bool
	EntryWindowActive  bool
	SearchWindowActive bool
	EntryEndTime       *time.Time
	SearchStartTime    *time.Time
	SearchEndTime      *time.Time
}
