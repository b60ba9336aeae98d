package n8n

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// newTestService creates a ScheduleService backed by a temp file.
func newTestService(t *testing.T) (*ScheduleService, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.json")
	return NewScheduleService(path), path
}

// startService starts the service in the background and returns a cancel func.
func startService(t *testing.T, s *ScheduleService) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Start(ctx) }()
	// Give Start() a moment to arm timers.
	time.Sleep(20 * time.Millisecond)
	return cancel
}

func everySchedule(ms int64) Schedule {
	return Schedule{Kind: "every", EveryMs: &ms}
}

func TestAddJob_Every(t *testing.T) {
	s, _ := newTestService(t)
	id, err := s.AddJob("tick", everySchedule(5000), Payload{Input: "hello"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	jobs := s.ListAllJobs(false)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Schedule.Kind != "every" {
		t.Errorf("expected kind=every, got %q", jobs[0].Schedule.Kind)
	}
	if jobs[0].Payload.Input != "hello" {
		t.Errorf("unexpected payload input: %q", jobs[0].Payload.Input)
	}
}

func TestAddJob_At(t *testing.T) {
	s, _ := newTestService(t)
	futureMs := time.Now().Add(time.Hour).UnixMilli()
	id, err := s.AddJob("once", Schedule{Kind: "at", AtMs: &futureMs}, Payload{Input: "do it"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jobs := s.ListAllJobs(false)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].ID != id {
		t.Errorf("id mismatch: got %q", jobs[0].ID)
	}
	if !jobs[0].DeleteAfterRun {
		t.Error("expected deleteAfterRun=true")
	}
}

func TestAddJob_Cron(t *testing.T) {
	s, _ := newTestService(t)
	expr, tz := "0 9 * * *", "UTC"
	id, err := s.AddJob("daily", Schedule{Kind: "cron", Expr: &expr, TZ: &tz},
		Payload{Input: "report", Notify: true}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jobs := s.ListAllJobs(false)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].ID != id {
		t.Errorf("id mismatch")
	}
	if !jobs[0].Payload.Notify {
		t.Error("expected notify=true")
	}
}

func TestAddJob_UnknownKind(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.AddJob("bad", Schedule{Kind: "weekly"}, Payload{Input: "msg"}, false); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestAddJob_InvalidInterval(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.AddJob("bad", everySchedule(0), Payload{Input: "msg"}, false); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestRemoveJob_Exists(t *testing.T) {
	s, _ := newTestService(t)
	id, _ := s.AddJob("job", everySchedule(1000), Payload{Input: "msg"}, false)
	if !s.RemoveJob(id) {
		t.Fatal("expected RemoveJob to return true")
	}
	if len(s.ListAllJobs(false)) != 0 {
		t.Error("expected empty job list after remove")
	}
}

func TestRemoveJob_NotFound(t *testing.T) {
	s, _ := newTestService(t)
	if s.RemoveJob("nonexistent") {
		t.Fatal("expected RemoveJob to return false for unknown id")
	}
}

func TestListJobs_OnlyEnabled(t *testing.T) {
	s, _ := newTestService(t)
	s.AddJob("a", everySchedule(1000), Payload{Input: "msg"}, false)
	id2, _ := s.AddJob("b", everySchedule(2000), Payload{Input: "msg"}, false)
	s.EnableJob(id2, false)

	summaries := s.ListJobs()
	if len(summaries) != 1 {
		t.Fatalf("expected 1 enabled job summary, got %d", len(summaries))
	}
	if summaries[0].Name != "a" {
		t.Errorf("unexpected job name: %q", summaries[0].Name)
	}
}

func TestEnableJob_ToggleDisableEnable(t *testing.T) {
	s, _ := newTestService(t)
	id, _ := s.AddJob("j", everySchedule(1000), Payload{Input: "msg"}, false)

	job, ok := s.EnableJob(id, false)
	if !ok {
		t.Fatal("EnableJob returned false")
	}
	if job.Enabled {
		t.Error("expected job to be disabled")
	}
	if job.State.NextRunAtMs != nil {
		t.Error("expected nil NextRunAtMs when disabled")
	}

	job, ok = s.EnableJob(id, true)
	if !ok {
		t.Fatal("EnableJob returned false on re-enable")
	}
	if !job.Enabled {
		t.Error("expected job to be enabled")
	}
}

func TestListAllJobs_SortedByNextRun(t *testing.T) {
	s, _ := newTestService(t)
	s.AddJob("slow", everySchedule(60000), Payload{Input: "msg"}, false)
	s.AddJob("fast", everySchedule(1000), Payload{Input: "msg"}, false)

	jobs := s.ListAllJobs(false)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if *jobs[0].State.NextRunAtMs > *jobs[1].State.NextRunAtMs {
		t.Error("jobs not sorted by NextRunAtMs ascending")
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	s, path := newTestService(t)
	id, _ := s.AddJob("persist", everySchedule(5000), Payload{Input: "hello"}, false)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read jobs.json: %v", err)
	}
	var store jobStore
	if err := json.Unmarshal(data, &store); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(store.Jobs) != 1 {
		t.Fatalf("expected 1 persisted job, got %d", len(store.Jobs))
	}
	if store.Jobs[0].ID != id {
		t.Errorf("id mismatch in persisted file")
	}
}

func TestPersistence_LoadExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.json")
	existing := `{"version":1,"jobs":[{"id":"aabbccdd","name":"loaded","enabled":true,
		"schedule":{"kind":"every","everyMs":3000},"payload":{"input":"hi","notify":false},
		"state":{},"createdAtMs":1000,"updatedAtMs":1000,"deleteAfterRun":false}]}`
	os.WriteFile(path, []byte(existing), 0o644)

	s := NewScheduleService(path)
	jobs := s.ListAllJobs(false)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 loaded job, got %d", len(jobs))
	}
	if jobs[0].Name != "loaded" {
		t.Errorf("unexpected job name: %q", jobs[0].Name)
	}
}

func TestComputeNextRun_Every(t *testing.T) {
	everyMs := int64(5000)
	now := int64(1_000_000)
	result := computeNextRun(Schedule{Kind: "every", EveryMs: &everyMs}, now)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if *result != now+everyMs {
		t.Errorf("expected %d, got %d", now+everyMs, *result)
	}
}

func TestComputeNextRun_At_Past(t *testing.T) {
	past := time.Now().Add(-time.Hour).UnixMilli()
	if result := computeNextRun(Schedule{Kind: "at", AtMs: &past}, time.Now().UnixMilli()); result != nil {
		t.Errorf("expected nil for past at-job, got %d", *result)
	}
}

func TestComputeNextRun_Cron_UTC(t *testing.T) {
	expr, tz := "0 12 * * *", "UTC"
	result := computeNextRun(Schedule{Kind: "cron", Expr: &expr, TZ: &tz}, time.Now().UnixMilli())
	if result == nil {
		t.Fatal("expected non-nil cron next run")
	}
	if *result <= time.Now().UnixMilli() {
		t.Error("next run should be in the future")
	}
}

func TestComputeNextRun_Cron_InvalidExpr(t *testing.T) {
	expr := "not a cron"
	if result := computeNextRun(Schedule{Kind: "cron", Expr: &expr}, time.Now().UnixMilli()); result != nil {
		t.Error("expected nil for invalid cron expression")
	}
}

func TestExecuteJob_CallsOnJob(t *testing.T) {
	s, _ := newTestService(t)

	var called atomic.Int32
	var gotInput atomic.Value
	s.SetOnJob(func(_ context.Context, job Job) (string, error) {
		called.Add(1)
		gotInput.Store(job.Payload.Input)
		return "ok", nil
	})

	id, _ := s.AddJob("run", everySchedule(10000), Payload{Input: "payload text"}, false)
	cancel := startService(t, s)
	defer cancel()

	if !s.RunJob(context.Background(), id, true) {
		t.Fatal("RunJob returned false")
	}

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) && called.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if called.Load() == 0 {
		t.Fatal("onJob was not called")
	}
	if gotInput.Load() != "payload text" {
		t.Errorf("unexpected payload input: %v", gotInput.Load())
	}
}

func TestExecuteJob_UpdatesState(t *testing.T) {
	s, _ := newTestService(t)
	s.SetOnJob(func(_ context.Context, _ Job) (string, error) { return "done", nil })

	id, _ := s.AddJob("state", everySchedule(10000), Payload{Input: "msg"}, false)
	cancel := startService(t, s)
	defer cancel()

	s.RunJob(context.Background(), id, true)
	time.Sleep(50 * time.Millisecond)

	jobs := s.ListAllJobs(false)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].State.LastRunAtMs == nil {
		t.Error("expected LastRunAtMs to be set after execution")
	}
	if jobs[0].State.LastStatus == nil || *jobs[0].State.LastStatus != "ok" {
		t.Errorf("unexpected status: %v", jobs[0].State.LastStatus)
	}
}

func TestExecuteJob_AtDeleteAfterRun(t *testing.T) {
	s, _ := newTestService(t)
	s.SetOnJob(func(_ context.Context, _ Job) (string, error) { return "", nil })

	futureMs := time.Now().Add(time.Hour).UnixMilli()
	id, _ := s.AddJob("once", Schedule{Kind: "at", AtMs: &futureMs}, Payload{Input: "msg"}, true)
	cancel := startService(t, s)
	defer cancel()

	s.RunJob(context.Background(), id, true)
	time.Sleep(50 * time.Millisecond)

	jobs := s.ListAllJobs(true)
	if len(jobs) != 0 {
		t.Errorf("expected job deleted after run, got %d jobs", len(jobs))
	}
}

func TestRunJob_DisabledWithoutForce(t *testing.T) {
	s, _ := newTestService(t)
	id, _ := s.AddJob("j", everySchedule(10000), Payload{Input: "msg"}, false)
	s.EnableJob(id, false)
	cancel := startService(t, s)
	defer cancel()

	if s.RunJob(context.Background(), id, false) {
		t.Error("expected RunJob to return false for disabled job without force")
	}
}

func TestAtJob_PastDueFiresOnStart(t *testing.T) {
	s, _ := newTestService(t)

	var count atomic.Int32
	s.SetOnJob(func(_ context.Context, _ Job) (string, error) {
		count.Add(1)
		return "", nil
	})

	pastMs := time.Now().Add(-time.Hour).UnixMilli()
	id, err := s.AddJob("missed", Schedule{Kind: "at", AtMs: &pastMs}, Payload{Input: "late"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancel := startService(t, s)
	defer cancel()

	time.Sleep(100 * time.Millisecond)
	if n := count.Load(); n != 1 {
		t.Fatalf("expected 1 execution, got %d", n)
	}

	jobs := s.ListAllJobs(true)
	if len(jobs) != 1 || jobs[0].ID != id {
		t.Fatalf("expected the job to remain in the store, got %v", jobs)
	}
	if jobs[0].Enabled {
		t.Error("expected job disabled after running")
	}
	if jobs[0].State.NextRunAtMs != nil {
		t.Error("expected no next run for a completed one-time job")
	}
}

func TestEveryJob_FiresAfterInterval(t *testing.T) {
	s, _ := newTestService(t)

	var count atomic.Int32
	s.SetOnJob(func(_ context.Context, _ Job) (string, error) {
		count.Add(1)
		return "", nil
	})

	s.AddJob("fast", everySchedule(50), Payload{Input: "msg"}, false)
	cancel := startService(t, s)
	defer cancel()

	time.Sleep(180 * time.Millisecond)
	if n := count.Load(); n < 2 {
		t.Errorf("expected at least 2 executions, got %d", n)
	}
}
