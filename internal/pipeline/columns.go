package pipeline

// Input and output column names.
const (
	ColSubject     = "Subject"
	ColSequence    = "Sequence"
	ColFormulation = "Formulation"
	ColTime        = "Time"
	ColPeriod      = "Period"
	ColTimeNumber  = "Time Number"

	ColStudyStage   = "Study Stage (Period)"
	ColRandomNo     = "Subject Randomization No."
	ColSampleNo     = "Sample No."
	ColScheduleTime = "Schedule Time"
	ColActualTime   = "Actual Time"
)

// ScheduleColumns is the header of the Schedule Time Input table.
var ScheduleColumns = []string{ColSubject, ColSequence, ColFormulation, ColTime, ColPeriod, ColTimeNumber}
