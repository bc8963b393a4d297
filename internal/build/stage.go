package build

// Stage is a step of a build pass, reported in error context and logs
type Stage int

const (
	StageScanning Stage = iota
	StageFiltering
	StageExtractingMetadata
	StageValidatingCapability
	StageResolvingIdentifier
	StageResolvingPriority
	StageBinding
	StageAppending
	StageDone
)

var stageNames = [...]string{
	StageScanning:             "scanning",
	StageFiltering:            "filtering",
	StageExtractingMetadata:   "extracting_metadata",
	StageValidatingCapability: "validating_capability",
	StageResolvingIdentifier:  "resolving_identifier",
	StageResolvingPriority:    "resolving_priority",
	StageBinding:              "binding",
	StageAppending:            "appending",
	StageDone:                 "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
