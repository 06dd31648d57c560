package sequencer

const (
	// maxIndexMarks caps how many x-axis index marks an array gets.
	maxIndexMarks = 20
	// valueLabelCount is the fixed number of y-axis value labels.
	valueLabelCount = 6
)

// AxisSpec is the display metadata handed to the rendering collaborator
// alongside one output array: the logical value range, the padded display
// range, index tick-mark positions, and evenly spaced value labels.
type AxisSpec struct {
	ValueMin      float64   `json:"value_min"`
	ValueMax      float64   `json:"value_max"`
	DisplayMin    float64   `json:"display_min"`
	DisplayMax    float64   `json:"display_max"`
	TickPositions []int     `json:"tick_positions"`
	ValueLabels   []float64 `json:"value_labels"`
}

// DeriveAxis computes the axis spec for one array. The display range pads
// the logical range by 10% of the maximum on both ends (clamped at zero
// below), index marks are evenly strided and always include the final
// index, and valueLabelCount labels are spread linearly from min to max.
// Pure: identical inputs always yield identical specs.
func DeriveAxis(values []float64, logicalMin, logicalMax float64) AxisSpec {
	displayMin := logicalMin - logicalMax*0.1
	if displayMin < 0 {
		displayMin = 0
	}

	step := 0.0
	if valueLabelCount > 1 {
		step = (logicalMax - logicalMin) / float64(valueLabelCount-1)
	}
	labels := make([]float64, valueLabelCount)
	for i := range labels {
		labels[i] = logicalMin + float64(i)*step
	}

	return AxisSpec{
		ValueMin:      logicalMin,
		ValueMax:      logicalMax,
		DisplayMin:    displayMin,
		DisplayMax:    logicalMax * 1.1,
		TickPositions: indexMarks(len(values)),
		ValueLabels:   labels,
	}
}

// indexMarks returns the x-axis mark positions for an array of length n:
// every index when n fits under the cap, otherwise an even stride that is
// forced to end on the last index.
func indexMarks(n int) []int {
	if n <= 0 {
		return []int{}
	}
	if n <= maxIndexMarks {
		marks := make([]int, n)
		for i := range marks {
			marks[i] = i
		}
		return marks
	}
	step := n / maxIndexMarks
	if step < 1 {
		step = 1
	}
	var marks []int
	for i := 0; i < n; i += step {
		marks = append(marks, i)
	}
	if marks[len(marks)-1] != n-1 {
		marks = append(marks, n-1)
	}
	return marks
}
