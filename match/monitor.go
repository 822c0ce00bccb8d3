package match

import "github.com/occlab/nocmatch/core"

// MatchMonitor provides hooks to observe the matching process.
// Implement this interface to track intermediate steps during a match.
type MatchMonitor interface {
	Start(description string)
	AfterSegmentation(segments []string)
	AfterDutyMatching(matched map[int][]core.MatchedDuty)
	Finish(results []*core.MatchResult)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterSegmentation(_ []string)                   {}
func (n *noopMonitor) AfterDutyMatching(_ map[int][]core.MatchedDuty) {}
func (n *noopMonitor) Finish(_ []*core.MatchResult)                   {}
