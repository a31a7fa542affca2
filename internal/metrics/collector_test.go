package metrics

import (
	"testing"
	"time"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpParse, 10*time.Millisecond)
	c.RecordTiming(OpParse, 30*time.Millisecond)

	snap := c.Snapshot()
	if snap.Parse == nil {
		t.Fatal("Parse snapshot missing")
	}
	if snap.Parse.Count != 2 {
		t.Errorf("Count = %d, want 2", snap.Parse.Count)
	}
	if snap.Parse.MinTimeMs != 10 || snap.Parse.MaxTimeMs != 30 {
		t.Errorf("min/max = %d/%d, want 10/30", snap.Parse.MinTimeMs, snap.Parse.MaxTimeMs)
	}
	if snap.Parse.AvgTimeMs != 20 {
		t.Errorf("avg = %v, want 20", snap.Parse.AvgTimeMs)
	}
	if snap.Parse.TotalAttempts != nil {
		t.Error("attempt stats should be absent for plain timings")
	}
}

func TestRecordAcquisition(t *testing.T) {
	c := NewCollector()
	c.RecordAcquisition(time.Second, 1)
	c.RecordAcquisition(2*time.Second, 3)

	snap := c.Snapshot()
	if snap.Acquisition == nil {
		t.Fatal("Acquisition snapshot missing")
	}
	if snap.Acquisition.Count != 2 {
		t.Errorf("Count = %d, want 2", snap.Acquisition.Count)
	}
	if snap.Acquisition.TotalAttempts == nil || *snap.Acquisition.TotalAttempts != 4 {
		t.Errorf("TotalAttempts = %v, want 4", snap.Acquisition.TotalAttempts)
	}
	if snap.Acquisition.AvgAttempts == nil || *snap.Acquisition.AvgAttempts != 2 {
		t.Errorf("AvgAttempts = %v, want 2", snap.Acquisition.AvgAttempts)
	}
	if *snap.Acquisition.MinAttempts != 1 || *snap.Acquisition.MaxAttempts != 3 {
		t.Errorf("min/max attempts = %d/%d, want 1/3",
			*snap.Acquisition.MinAttempts, *snap.Acquisition.MaxAttempts)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	snap := NewCollector().Snapshot()
	if snap.Acquisition != nil || snap.Parse != nil || snap.Store != nil {
		t.Error("empty collector should snapshot nil operations")
	}
}
