//go:build integration

package store

import (
	"testing"

	"github.com/newtron-network/fabricgen/internal/testutil"
)

func TestPublish(t *testing.T) {
	testutil.SkipIfNoRedis(t)
	addr := testutil.RedisAddr()
	testutil.FlushDB(t, addr, testutil.TestDB)
	ctx := testutil.Context(t)

	// A host that is no longer in the inventory must be removed.
	testutil.WriteSingleEntry(t, addr, testutil.TestDB, TableDevice, "dc1|leaf09", map[string]string{"role": "leaf"})

	p := NewPublisher(addr, "", testutil.TestDB)
	defer p.Close()
	if err := p.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	n, err := p.Publish(ctx, testInventory())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n != 6 {
		t.Errorf("Publish wrote %d entries, want 6", n)
	}

	if testutil.EntryExists(t, addr, testutil.TestDB, TableDevice, "dc1|leaf09") {
		t.Error("stale device leaf09 was not removed")
	}

	dev, err := p.Device(ctx, "dc1", "leaf01")
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	if dev["vtep_loopback"] != "10.255.3.1/32" || dev["role"] != "leaf" {
		t.Errorf("leaf01 = %v", dev)
	}

	hosts, err := p.Hosts(ctx, "dc1")
	if err != nil {
		t.Fatalf("Hosts: %v", err)
	}
	if len(hosts) != 2 || hosts[0] != "leaf01" || hosts[1] != "spine01" {
		t.Errorf("Hosts = %v", hosts)
	}

	access := testutil.ReadEntry(t, addr, testutil.TestDB, TableInterface, "dc1|leaf01|10GE1/0/48")
	if access["mode"] != "access" || access["vlan"] != "100" {
		t.Errorf("access interface = %v", access)
	}
}

func TestPublish_WildcardNameKeepsOtherFabrics(t *testing.T) {
	testutil.SkipIfNoRedis(t)
	addr := testutil.RedisAddr()
	testutil.FlushDB(t, addr, testutil.TestDB)
	ctx := testutil.Context(t)

	p := NewPublisher(addr, "", testutil.TestDB)
	defer p.Close()

	if _, err := p.Publish(ctx, testInventory()); err != nil {
		t.Fatalf("Publish dc1: %v", err)
	}
	wild := testInventory()
	wild.All.Vars.FabricName = "dc*"
	if _, err := p.Publish(ctx, wild); err != nil {
		t.Fatalf("Publish dc*: %v", err)
	}

	for _, key := range []string{"dc1", "dc1|spine01", "dc1|leaf01"} {
		table := TableDevice
		if key == "dc1" {
			table = TableFabric
		}
		if !testutil.EntryExists(t, addr, testutil.TestDB, table, key) {
			t.Errorf("%s|%s removed by publishing fabric dc*", table, key)
		}
	}
	if !testutil.EntryExists(t, addr, testutil.TestDB, TableDevice, "dc*|spine01") {
		t.Error("DEVICE|dc*|spine01 not written")
	}
}
