package FAT32

import (
	"sort"
)

// ClusterUsage marks one visit of a cluster during a file's chain walk.
type ClusterUsage struct {
	Sequence    int
	FileId      int
	Deleted     bool
	WriteOffset int64 // byte offset within the owning file
}

// UsageMap accumulates cluster usage across every chain walked in one volume
// pass. It is owned by the directory table instance, never global, and is only
// consulted once overwrite analysis begins.
type UsageMap struct {
	usages   map[uint32][]ClusterUsage
	sequence int
}

func NewUsageMap() *UsageMap {
	return &UsageMap{usages: map[uint32][]ClusterUsage{}}
}

func (um *UsageMap) Record(cluster uint32, fileId int, deleted bool, writeOffset int64) {
	um.sequence++
	um.usages[cluster] = append(um.usages[cluster],
		ClusterUsage{Sequence: um.sequence, FileId: fileId, Deleted: deleted, WriteOffset: writeOffset})
}

// Claimants returns the usage records of files other than fileId for a cluster.
func (um *UsageMap) Claimants(cluster uint32, fileId int) []ClusterUsage {
	var claimants []ClusterUsage
	for _, usage := range um.usages[cluster] {
		if usage.FileId == fileId {
			continue
		}
		claimants = append(claimants, usage)
	}
	return claimants
}

// ClusterAnalysisResult describes the shape of one reconstructed chain.
type ClusterAnalysisResult struct {
	Fragmentation    float64
	IsCorrupted      bool
	BackJumps        int
	RepeatedClusters int
	LargeGaps        int
}

// OverwriteAnalysis reports clusters of one file claimed by other files.
type OverwriteAnalysis struct {
	HasOverwrite        bool
	OverwrittenClusters []uint32
	OverwrittenBy       map[uint32][]int
	OverwritePercentage float64
}

// RecoveryStatus is the terminal per file aggregate handed to the caller.
type RecoveryStatus struct {
	IsCorrupted            bool
	HasFragmentedClusters  bool
	Fragmentation          float64
	HasBackJumps           bool
	BackJumps              int
	HasRepeatedClusters    bool
	RepeatedClusters       int
	HasLargeGaps           bool
	LargeGaps              int
	HasOverwrittenClusters bool
	OverwrittenClusters    []uint32
	OverwrittenBy          map[uint32][]int
	OverwritePercentage    float64
	HasInvalidFileName     bool
	HasInvalidExtension    bool
	ExpectedClusters       int
	RecoveredClusters      int
	RecoveredBytes         int64
	ProblematicClusters    []uint32
}

// AnalyzeChain computes the forensic shape of a chain from the cluster numbers
// alone. Chains of length zero or one carry no transitions and report zero
// fragmentation. A transition is contiguous iff next equals previous plus one;
// a gap is large when the absolute distance exceeds gapThreshold clusters.
func AnalyzeChain(chain []uint32, gapThreshold uint32) ClusterAnalysisResult {
	var result ClusterAnalysisResult
	if len(chain) <= 1 {
		return result
	}

	transitions := len(chain) - 1
	contiguous := 0
	for idx := 0; idx < transitions; idx++ {
		previous := chain[idx]
		next := chain[idx+1]

		if next == previous+1 {
			contiguous++
		}
		if next < previous {
			result.BackJumps++
		}

		distance := int64(next) - int64(previous)
		if distance < 0 {
			distance = -distance
		}
		if distance > int64(gapThreshold) {
			result.LargeGaps++
		}
	}
	result.Fragmentation = 1.0 - float64(contiguous)/float64(transitions)

	seen := map[uint32]int{}
	for _, cluster := range chain {
		seen[cluster]++
	}
	for _, count := range seen {
		if count > 1 {
			result.RepeatedClusters++
		}
	}
	if result.RepeatedClusters > 0 {
		result.IsCorrupted = true
	}

	return result
}

// AnalyzeOverwrite checks every chain cluster against the volume wide usage map
// for claims by other files.
func AnalyzeOverwrite(chain []uint32, fileId int, usageMap *UsageMap) OverwriteAnalysis {
	analysis := OverwriteAnalysis{OverwrittenBy: map[uint32][]int{}}
	if len(chain) == 0 {
		return analysis
	}

	seen := map[uint32]bool{}
	for _, cluster := range chain {
		if seen[cluster] {
			continue
		}
		seen[cluster] = true

		claimants := usageMap.Claimants(cluster, fileId)
		if len(claimants) == 0 {
			continue
		}
		analysis.HasOverwrite = true
		analysis.OverwrittenClusters = append(analysis.OverwrittenClusters, cluster)
		for _, claimant := range claimants {
			analysis.OverwrittenBy[cluster] = append(analysis.OverwrittenBy[cluster], claimant.FileId)
		}
	}
	analysis.OverwritePercentage = float64(len(analysis.OverwrittenClusters)) / float64(len(chain))

	return analysis
}

// buildStatus folds the chain walk outcome and both analyses into the terminal
// per file status.
func buildStatus(record *Record, analysis ClusterAnalysisResult, overwrite OverwriteAnalysis,
	expectedClusters int, clusterBytes int64) *RecoveryStatus {

	recoveredClusters := len(record.Chain)
	recoveredBytes := int64(recoveredClusters) * clusterBytes
	declaredSize := int64(record.Entry.FileSize)
	if recoveredBytes > declaredSize {
		recoveredBytes = declaredSize
	}

	corrupted := analysis.IsCorrupted
	if recoveredClusters < expectedClusters && !record.chainEndedAtEOC {
		// the walk stopped early without a valid end of chain marker
		corrupted = true
	}

	status := &RecoveryStatus{
		IsCorrupted:            corrupted,
		HasFragmentedClusters:  analysis.Fragmentation > 0,
		Fragmentation:          analysis.Fragmentation,
		HasBackJumps:           analysis.BackJumps > 0,
		BackJumps:              analysis.BackJumps,
		HasRepeatedClusters:    analysis.RepeatedClusters > 0,
		RepeatedClusters:       analysis.RepeatedClusters,
		HasLargeGaps:           analysis.LargeGaps > 0,
		LargeGaps:              analysis.LargeGaps,
		HasOverwrittenClusters: overwrite.HasOverwrite,
		OverwrittenClusters:    overwrite.OverwrittenClusters,
		OverwrittenBy:          overwrite.OverwrittenBy,
		OverwritePercentage:    overwrite.OverwritePercentage,
		HasInvalidFileName:     !record.Entry.HasValidName(),
		HasInvalidExtension:    !record.Entry.HasValidExtension(),
		ExpectedClusters:       expectedClusters,
		RecoveredClusters:      recoveredClusters,
		RecoveredBytes:         recoveredBytes,
	}
	status.ProblematicClusters = collectProblematicClusters(record.Chain, analysis, overwrite)

	return status
}

// collectProblematicClusters unions repeated clusters, overwritten clusters
// and the targets of back jumps.
func collectProblematicClusters(chain []uint32, analysis ClusterAnalysisResult,
	overwrite OverwriteAnalysis) []uint32 {

	problematic := map[uint32]bool{}

	counts := map[uint32]int{}
	for _, cluster := range chain {
		counts[cluster]++
	}
	for cluster, count := range counts {
		if count > 1 {
			problematic[cluster] = true
		}
	}

	for _, cluster := range overwrite.OverwrittenClusters {
		problematic[cluster] = true
	}

	for idx := 0; idx+1 < len(chain); idx++ {
		previous := chain[idx]
		next := chain[idx+1]
		if next < previous {
			problematic[next] = true
		}
	}

	if len(problematic) == 0 {
		return nil
	}
	clusters := make([]uint32, 0, len(problematic))
	for cluster := range problematic {
		clusters = append(clusters, cluster)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i] < clusters[j] })
	return clusters
}
