package scenarios_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-surveywizard/pkg/scenarios"
)

func fastService() *scenarios.Service {
	return scenarios.NewService(scenarios.WithDelay(0))
}

func TestAdd_AssignsNextID(t *testing.T) {
	svc := fastService()
	ctx := context.Background()

	got, err := svc.Add(ctx, scenarios.Scenario{Name: "Scenario D", Respondents: 10, ScoreRange: "0 - 10"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.ID != 4 {
		t.Fatalf("expected id 4, got %d", got.ID)
	}

	empty := scenarios.NewService(scenarios.WithDelay(0), scenarios.WithSeed(nil))
	first, _ := empty.Add(ctx, scenarios.Scenario{Name: "Only"})
	if first.ID != 1 {
		t.Fatalf("expected id 1 on an empty store, got %d", first.ID)
	}

	if _, err := svc.Add(ctx, scenarios.Scenario{Name: "  "}); !errors.Is(err, scenarios.ErrInvalidScenario) {
		t.Fatalf("expected ErrInvalidScenario, got %v", err)
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	svc := fastService()
	got, err := svc.Search(context.Background(), "scenario b")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []scenarios.Scenario{{ID: 2, Name: "Scenario B", Respondents: 400, ScoreRange: "10 - 90"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	all, _ := svc.Search(context.Background(), "")
	if len(all) != 3 {
		t.Fatalf("empty term should match everything, got %d", len(all))
	}
}

func TestUpdateDeleteGet_UnknownIDs(t *testing.T) {
	svc := fastService()
	ctx := context.Background()

	name := "Renamed"
	updated, err := svc.Update(ctx, 1, scenarios.Patch{Name: &name})
	if err != nil || updated == nil || updated.Name != "Renamed" || updated.Respondents != 500 {
		t.Fatalf("unexpected update result %#v %v", updated, err)
	}
	if missing, err := svc.Update(ctx, 99, scenarios.Patch{Name: &name}); err != nil || missing != nil {
		t.Fatalf("expected nil for unknown id, got %#v %v", missing, err)
	}

	if ok, _ := svc.Delete(ctx, 2); !ok {
		t.Fatalf("expected delete to report true")
	}
	if ok, _ := svc.Delete(ctx, 2); ok {
		t.Fatalf("expected second delete to report false")
	}
	if got, _ := svc.Get(ctx, 2); got != nil {
		t.Fatalf("expected nil for deleted scenario, got %#v", got)
	}

	list, _ := svc.List(ctx)
	var ids []int
	for _, item := range list {
		ids = append(ids, item.ID)
	}
	if diff := cmp.Diff([]int{1, 3}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDelay_HonoursContext(t *testing.T) {
	svc := scenarios.NewService(scenarios.WithDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := svc.List(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLiveSearch_DeliversLatestTermOnly(t *testing.T) {
	svc := scenarios.NewService(scenarios.WithDelay(20 * time.Millisecond))
	live := svc.NewLiveSearch(30 * time.Millisecond)

	live.Input("scenario a")
	live.Input("scenario")
	live.Input("scenario c")

	select {
	case res := <-live.Results():
		if res.Err != nil {
			t.Fatalf("search error: %v", res.Err)
		}
		if res.Term != "scenario c" || len(res.Scenarios) != 1 || res.Scenarios[0].ID != 3 {
			t.Fatalf("unexpected result %#v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for live search result")
	}

	live.Close()
	if _, ok := <-live.Results(); ok {
		t.Fatalf("expected results channel to be closed")
	}
}

func TestLiveSearch_CloseCancelsInFlight(t *testing.T) {
	svc := scenarios.NewService(scenarios.WithDelay(time.Hour))
	live := svc.NewLiveSearch(time.Millisecond)
	live.Input("scenario")
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		live.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("close did not cancel the in-flight search")
	}
	live.Input("ignored after close")
}
