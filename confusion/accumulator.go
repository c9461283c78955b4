package confusion

// Contribution is one attribution produced while reconciling a recording.
// Time goes to the time matrix; Count (0 or 1) to the count matrix.
type Contribution struct {
	Truth     string
	Predicted string
	Time      float64
	Count     int
}

// Accumulator holds the time-weighted and count-weighted matrices of a run.
// Adding is commutative, so accumulators filled from disjoint recordings can
// be merged in any order.
type Accumulator struct {
	Time  *Matrix
	Count *Matrix
}

// NewAccumulator returns an accumulator with both matrices zeroed over
// labels.
func NewAccumulator(labels []string) *Accumulator {
	return &Accumulator{
		Time:  NewMatrix(labels),
		Count: NewMatrix(labels),
	}
}

// Add records a single contribution.
func (a *Accumulator) Add(c Contribution) error {
	i, j, err := a.Time.cell(c.Truth, c.Predicted)
	if err != nil {
		return err
	}
	a.add(i, j, c)
	return nil
}

// AddAll records every contribution, or none of them if any label is
// unknown.
func (a *Accumulator) AddAll(cs []Contribution) error {
	type pos struct{ i, j int }
	cells := make([]pos, len(cs))
	for k, c := range cs {
		i, j, err := a.Time.cell(c.Truth, c.Predicted)
		if err != nil {
			return err
		}
		cells[k] = pos{i, j}
	}
	for k, c := range cs {
		a.add(cells[k].i, cells[k].j, c)
	}
	return nil
}

func (a *Accumulator) add(i, j int, c Contribution) {
	n := a.Time.Len()
	a.Time.cells[i*n+j] += c.Time
	a.Count.cells[i*n+j] += float64(c.Count)
}

// Merge adds o into a.
func (a *Accumulator) Merge(o *Accumulator) error {
	if err := a.Time.Merge(o.Time); err != nil {
		return err
	}
	return a.Count.Merge(o.Count)
}
