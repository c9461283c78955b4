// Package tytalb compares two sets of labelled time intervals over the same
// audio recordings, a ground truth and a set to validate, and reports how
// well they agree.
//
// # Quick Start
//
//	gt, err := parser.Load(ctx, "annotations/manual", parser.Raven(), parser.LoadOptions{Recursive: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tv, err := parser.Load(ctx, "annotations/birdnet", parser.BirdNET(), parser.LoadOptions{Recursive: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := tytalb.New(tytalb.WithBinary("Tyto alba"), tytalb.WithLateStart(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := v.Validate(ctx, gt, tv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, m := range res.Time.Metrics {
//	    fmt.Printf("%s: precision %.2f recall %.2f f1 %.2f\n", m.Label, m.Precision, m.Recall, m.F1)
//	}
//
// # Scoring
//
// Both sets are first brought onto one sorted label space that always
// contains the background label ("Noise"). Within each recording, every
// ground-truth segment is matched against the predictions overlapping it:
// each overlap adds its shared time and one count to the (truth, predicted)
// cell, and the part of the segment no prediction covers is charged to
// (truth, background). Predictions are then matched the other way round and
// their uncovered time charged to (background, predicted). Recordings known
// to only one side count entirely as misses or false alarms. Agreement on
// silence is never scored.
//
// Two matrices come out of a run: one weighted by time, one by event count.
// Per-label precision, recall and F1 are derived from each.
//
// # Thread Safety
//
// Validator is safe for concurrent use. Recordings are reconciled on a bounded
// number of goroutines, configurable via WithWorkers, and merged in recording
// order so results do not depend on scheduling.
package tytalb
