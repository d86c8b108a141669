package pipeline

// StageReport carries enough context about a stage run to diagnose a
// failure: the stage name and record counts in and out.
type StageReport struct {
	Stage   string
	In      int
	Out     int
	Dropped int
}
