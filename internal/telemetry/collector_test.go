package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"
)

func stubCollector(out string) *Collector {
	return &Collector{
		Run: func(ctx context.Context, command string) string {
			return out
		},
		Timeout: time.Second,
	}
}

func TestCategoriesFor_DepthSets(t *testing.T) {
	quick := CategoriesFor(QuickScan)
	deep := CategoriesFor(DeepScan)
	complete := CategoriesFor(CompleteScan)

	if len(quick) != 2 {
		t.Errorf("Quick scan categories = %v", quick)
	}
	if len(deep) <= len(quick) || len(complete) <= len(deep) {
		t.Errorf("Each depth must add categories: %d/%d/%d", len(quick), len(deep), len(complete))
	}
	if complete[len(complete)-1] != "startup" {
		t.Errorf("Complete scan should end with startup, got %v", complete)
	}
}

func TestCategoriesFor_DeepIncludesProcessAudit(t *testing.T) {
	for _, depth := range []ScanDepth{DeepScan, CompleteScan} {
		found := false
		for _, name := range CategoriesFor(depth) {
			if name == "processes" {
				found = true
			}
		}
		if !found {
			t.Errorf("Depth %d missing processes category: %v", depth, CategoriesFor(depth))
		}
	}

	for _, name := range CategoriesFor(QuickScan) {
		if name == "processes" {
			t.Errorf("Quick scan should not run the process audit")
		}
	}
}

func TestCollect_ProcessAuditRecorded(t *testing.T) {
	c := stubCollector("miner.exe  4242  C:\\Users\\x\\mal\\miner.exe")

	snapshot := c.Collect(context.Background(), DeepScan, nil)

	if _, ok := snapshot["processes"]; !ok {
		t.Fatalf("Deep scan snapshot missing processes category: %v", snapshot.Categories())
	}
	if snapshot["processes"]["Suspicious Audit"] == "N/A" {
		t.Errorf("Probe output not recorded: %v", snapshot["processes"])
	}
}

func TestCollect_AggregatesAllCategories(t *testing.T) {
	c := stubCollector("some value")

	var mu sync.Mutex
	var seen []string
	snapshot := c.Collect(context.Background(), CompleteScan, func(name string) {
		mu.Lock()
		seen = append(seen, name)
		mu.Unlock()
	})

	want := CategoriesFor(CompleteScan)
	if len(snapshot) != len(want) {
		t.Errorf("Snapshot has %d categories, want %d: %v", len(snapshot), len(want), snapshot.Categories())
	}
	if len(seen) != len(want) {
		t.Errorf("Progress callback fired %d times, want %d", len(seen), len(want))
	}

	if snapshot["system"]["OS"] != "some value" {
		t.Errorf("Probe output not recorded: %v", snapshot["system"])
	}
}

func TestCollect_FailedProbeDegradesToNA(t *testing.T) {
	c := stubCollector("")

	snapshot := c.Collect(context.Background(), QuickScan, nil)

	if snapshot["system"]["OS"] != "N/A" {
		t.Errorf("Failed probe should record N/A, got %v", snapshot["system"]["OS"])
	}
}

func TestFilter_CopiesOnlyNamedCategories(t *testing.T) {
	s := Snapshot{
		"system":      {"OS": "Windows 11"},
		"performance": {"CPU Usage": "12"},
	}

	filtered := s.Filter([]string{"system", "missing"})

	if len(filtered) != 1 {
		t.Fatalf("Filtered = %v, want only system", filtered.Categories())
	}

	// Mutating the copy must not touch the original.
	filtered["system"]["OS"] = "changed"
	if s["system"]["OS"] != "Windows 11" {
		t.Errorf("Filter must deep-copy category maps")
	}
}

func TestCategories_Sorted(t *testing.T) {
	s := Snapshot{"z": {}, "a": {}, "m": {}}
	got := s.Categories()
	if got[0] != "a" || got[2] != "z" {
		t.Errorf("Categories not sorted: %v", got)
	}
}
