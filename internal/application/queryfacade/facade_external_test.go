package queryfacade_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/crepric/netfailoverd/internal/application/queryfacade"
	"github.com/crepric/netfailoverd/internal/domain/netstatus"
	"github.com/crepric/netfailoverd/internal/domain/routing"
)

type fakeHealth struct {
	names   []string
	records map[string]netstatus.Record
}

func (f *fakeHealth) CheckStatus(name string) (netstatus.Record, bool) {
	rec, ok := f.records[name]
	return rec, ok
}

func (f *fakeHealth) InterfaceNames() []string { return f.names }

type fakeRoutes struct {
	primary    string
	forceCalls []string
}

func (f *fakeRoutes) PrimaryDefaultGwInterface() string { return f.primary }

func (f *fakeRoutes) SetDefaultGw(name string) routing.Status {
	f.forceCalls = append(f.forceCalls, name)
	return routing.Ok()
}

func TestFacade_GetDefaultGw(t *testing.T) {
	f := queryfacade.New(&fakeHealth{}, &fakeRoutes{primary: "eth0"})
	name, ok := f.GetDefaultGw()
	assert.True(t, ok)
	assert.Equal(t, "eth0", name)
}

func TestFacade_GetDefaultGw_NoneKnownYet(t *testing.T) {
	f := queryfacade.New(&fakeHealth{}, &fakeRoutes{})
	_, ok := f.GetDefaultGw()
	assert.False(t, ok)
}

func TestFacade_GetIfStatus(t *testing.T) {
	now := time.Now()
	health := &fakeHealth{
		names: []string{"eth0", "eth1"},
		records: map[string]netstatus.Record{
			"eth0": {Status: netstatus.Healthy, LastCheckedAt: now},
			"eth1": {Status: netstatus.Unhealthy, LastCheckedAt: now},
		},
	}
	f := queryfacade.New(health, &fakeRoutes{})

	statuses := f.GetIfStatus()
	assert.Len(t, statuses, 2)
	assert.Equal(t, "eth0", statuses[0].IfName)
	assert.Equal(t, netstatus.Healthy, statuses[0].Status)
}

func TestFacade_ForceNewGateway_ForwardsToRouteManager(t *testing.T) {
	routes := &fakeRoutes{}
	f := queryfacade.New(&fakeHealth{}, routes)

	status := f.ForceNewGateway("eth1")
	assert.True(t, status.IsOk())
	assert.Equal(t, []string{"eth1"}, routes.forceCalls)
}

// TestFacade_ReadsAreSerialized exercises the facade's coarse mutex:
// concurrent GetDefaultGw/GetIfStatus callers must not race against each
// other (run with -race to catch a regression to an unlocked facade).
func TestFacade_ReadsAreSerialized(t *testing.T) {
	health := &fakeHealth{
		names: []string{"eth0"},
		records: map[string]netstatus.Record{
			"eth0": {Status: netstatus.Healthy, LastCheckedAt: time.Now()},
		},
	}
	f := queryfacade.New(health, &fakeRoutes{primary: "eth0"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.GetDefaultGw()
		}()
		go func() {
			defer wg.Done()
			_ = f.GetIfStatus()
		}()
	}
	wg.Wait()
}
