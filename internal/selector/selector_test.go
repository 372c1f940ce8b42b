package selector

import (
	"testing"

	"github.com/example/wtail/internal/config"
)

func TestFromOptionsExpandsAllKinds(t *testing.T) {
	opts := &config.Options{
		Namespace:    "ns1",
		Pods:         []string{"p1"},
		Deployments:  []string{"web"},
		StatefulSets: []string{"db"},
		DaemonSets:   []string{"agent"},
		Jobs:         []string{"migrate"},
		CronJobs:     []string{"backup"},
	}
	sels := FromOptions(opts)
	if len(sels) != 6 {
		t.Fatalf("expected 6 selectors, got %d", len(sels))
	}
	want := []Selector{
		{Kind: KindPod, Name: "p1", Namespace: "ns1"},
		{Kind: KindDeployment, Name: "web", Namespace: "ns1"},
		{Kind: KindStatefulSet, Name: "db", Namespace: "ns1"},
		{Kind: KindDaemonSet, Name: "agent", Namespace: "ns1"},
		{Kind: KindJob, Name: "migrate", Namespace: "ns1"},
		{Kind: KindCronJob, Name: "backup", Namespace: "ns1"},
	}
	for i := range want {
		if sels[i] != want[i] {
			t.Fatalf("selector %d: want %+v got %+v", i, want[i], sels[i])
		}
	}
}

func TestFromOptionsDeduplicates(t *testing.T) {
	opts := &config.Options{
		Namespace:   "ns1",
		Deployments: []string{"web", "web"},
	}
	sels := FromOptions(opts)
	if len(sels) != 1 {
		t.Fatalf("expected duplicate selectors to collapse, got %d", len(sels))
	}
}

func TestSelectorString(t *testing.T) {
	sel := Selector{Kind: KindCronJob, Name: "backup", Namespace: "ns1"}
	if got := sel.String(); got != "cronjob/backup" {
		t.Fatalf("unexpected selector string %q", got)
	}
}
