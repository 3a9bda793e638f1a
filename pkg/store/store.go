// Package store publishes a rendered inventory into Redis so other tooling
// (dashboards, IPAM sync jobs) can read the fabric without parsing YAML.
//
// Entries use the "TABLE|key" hash layout:
//
//	FABRIC|<fabric>                        asn, fabric_name, subnets
//	DEVICE|<fabric>|<host>                 role, id, ansible_host, loopback0, vtep_loopback
//	INTERFACE|<fabric>|<host>|<interface>  index, description, ip, mode, vlan
package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/fabricgen/pkg/fabric"
	"github.com/newtron-network/fabricgen/pkg/inventory"
	"github.com/newtron-network/fabricgen/pkg/util"
)

const (
	TableFabric    = "FABRIC"
	TableDevice    = "DEVICE"
	TableInterface = "INTERFACE"
)

// Entry is one Redis hash.
type Entry struct {
	Table  string
	Key    string
	Fields map[string]string
}

// RedisKey returns the full "TABLE|key" name.
func (e Entry) RedisKey() string {
	return e.Table + "|" + e.Key
}

// Entries flattens inv into hashes, ordered by Redis key. Empty fields are
// omitted.
func Entries(inv *inventory.Inventory) []Entry {
	v := inv.All.Vars
	name := v.FabricName
	entries := []Entry{{
		Table: TableFabric,
		Key:   name,
		Fields: fields(
			"asn", strconv.FormatUint(uint64(v.ASN), 10),
			"fabric_name", v.FabricName,
			"spine_loopback_subnet", v.SpineLoopbackSubnet,
			"leaf_loopback_subnet", v.LeafLoopbackSubnet,
			"vtep_loopback_subnet", v.VTEPLoopbackSubnet,
			"interconnect_subnet_base", v.InterconnectSubnetBase,
		),
	}}

	for host, h := range inv.All.Children.Spine.Hosts {
		entries = append(entries, Entry{
			Table: TableDevice,
			Key:   name + "|" + host,
			Fields: fields(
				"role", string(fabric.RoleSpine),
				"id", strconv.Itoa(h.SpineID),
				"ansible_host", h.AnsibleHost,
				"loopback0", h.Loopback0,
			),
		})
		entries = append(entries, interfaceEntries(name, host, h.Interfaces)...)
	}
	for host, h := range inv.All.Children.Leaf.Hosts {
		entries = append(entries, Entry{
			Table: TableDevice,
			Key:   name + "|" + host,
			Fields: fields(
				"role", string(fabric.RoleLeaf),
				"id", strconv.Itoa(h.LeafID),
				"ansible_host", h.AnsibleHost,
				"loopback0", h.Loopback0,
				"vtep_loopback", h.VTEPLoopback,
			),
		})
		entries = append(entries, interfaceEntries(name, host, h.Interfaces)...)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RedisKey() < entries[j].RedisKey()
	})
	return entries
}

func interfaceEntries(fabricName, host string, intfs []inventory.HostInterface) []Entry {
	out := make([]Entry, 0, len(intfs))
	for i, intf := range intfs {
		out = append(out, Entry{
			Table: TableInterface,
			Key:   fabricName + "|" + host + "|" + intf.Interface,
			Fields: fields(
				"index", strconv.Itoa(i),
				"description", intf.Description,
				"ip", intf.IP,
				"mode", intf.Mode,
				"vlan", intf.VLAN,
			),
		})
	}
	return out
}

func fields(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			m[kv[i]] = kv[i+1]
		}
	}
	return m
}

// Publisher writes inventories to a Redis database.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a publisher for the Redis server at addr.
func NewPublisher(addr, password string, db int) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Connect tests the connection
func (p *Publisher) Connect(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to redis %s: %w", p.client.Options().Addr, err)
	}
	return nil
}

// Close closes the connection
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish replaces everything stored for the inventory's fabric with the
// contents of inv in a single MULTI/EXEC transaction. It returns the number
// of hashes written.
func (p *Publisher) Publish(ctx context.Context, inv *inventory.Inventory) (int, error) {
	name := inv.All.Vars.FabricName
	if name == "" || strings.Contains(name, "|") {
		return 0, util.NewInvalidConfigError("fabric_name", "%q cannot be used as a key", name)
	}

	stale, err := p.fabricKeys(ctx, name)
	if err != nil {
		return 0, err
	}
	entries := Entries(inv)

	pipe := p.client.TxPipeline()
	if len(stale) > 0 {
		pipe.Del(ctx, stale...)
	}
	for _, e := range entries {
		args := make([]interface{}, 0, len(e.Fields)*2)
		for k, v := range e.Fields {
			args = append(args, k, v)
		}
		if len(args) == 0 {
			args = append(args, "NULL", "NULL")
		}
		pipe.HSet(ctx, e.RedisKey(), args...)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, fmt.Errorf("publishing fabric %s: %w", name, err)
	}

	util.WithFabric(name).Infof("published %d entries (%d stale removed)", len(entries), len(stale))
	return len(entries), nil
}

// Device reads back one device hash.
func (p *Publisher) Device(ctx context.Context, fabricName, host string) (map[string]string, error) {
	return p.client.HGetAll(ctx, TableDevice+"|"+fabricName+"|"+host).Result()
}

// Hosts lists the hostnames published for a fabric, sorted.
func (p *Publisher) Hosts(ctx context.Context, fabricName string) ([]string, error) {
	prefix := TableDevice + "|" + fabricName + "|"
	keys, err := scanKeys(ctx, p.client, prefix+"*", 100)
	if err != nil {
		return nil, err
	}
	hosts := make([]string, 0, len(keys))
	for _, k := range keys {
		hosts = append(hosts, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(hosts)
	return hosts, nil
}

func (p *Publisher) fabricKeys(ctx context.Context, name string) ([]string, error) {
	var keys []string
	for _, pattern := range fabricPatterns(name) {
		batch, err := scanKeys(ctx, p.client, pattern, 100)
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
	}
	return keys, nil
}

// fabricPatterns returns the SCAN patterns matching every key of one fabric.
// The name is escaped so a fabric called "dc*" never matches "dc1".
func fabricPatterns(name string) []string {
	n := escapePattern(name)
	return []string{
		TableFabric + "|" + n,
		TableDevice + "|" + n + "|*",
		TableInterface + "|" + n + "|*",
	}
}

// escapePattern quotes the glob metacharacters Redis MATCH understands.
func escapePattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// scanKeys iterates Redis keys matching the given pattern using cursor-based
// SCAN instead of the blocking O(N) KEYS command.
func scanKeys(ctx context.Context, client *redis.Client, pattern string, countHint int64) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, nextCursor, err := client.Scan(ctx, cursor, pattern, countHint).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
