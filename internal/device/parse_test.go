package device

import (
	"testing"
	"time"

	"NetMonitorAPI/internal/models"
)

var parseTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

const showInterfacesOutput = `Physical interface: ge-0/0/0, Enabled, Physical link is Up
  Link-level type: Ethernet, MTU: 1514, Speed: 1000mbps
  Traffic statistics:
    Input bytes : 123456789
    Output bytes : 987654321
    Input packets : 1000000
    Output packets : 2000000
  Input errors:
    Input errors : 12
    Input drops : 3
  Output errors:
    Output errors : 4
    Output drops : 1

Physical interface: ge-0/0/1, Administratively down, Physical link is Down
  Link-level type: Ethernet, MTU: 9192, Speed: 10Gbps
  Traffic statistics:
    Input bytes : 0
    Output bytes : 0
    Input packets : 0
    Output packets : 0
`

func TestParseInterfaces(t *testing.T) {
	metrics := parseInterfaces("r1", showInterfacesOutput, parseTime)

	if len(metrics) != 2 {
		t.Fatalf("parsed %d interfaces, want 2", len(metrics))
	}

	first := metrics[0]
	if first.InterfaceName != "ge-0/0/0" {
		t.Errorf("name = %q", first.InterfaceName)
	}
	if first.Status != models.IfStatusUp || first.AdminStatus != models.IfStatusUp {
		t.Errorf("status = %q/%q, want up/up", first.Status, first.AdminStatus)
	}
	if first.MTU != 1514 {
		t.Errorf("mtu = %d, want 1514", first.MTU)
	}
	if first.Speed != 1_000_000_000 {
		t.Errorf("speed = %d, want 1000mbps in bits", first.Speed)
	}
	if first.RxPackets != 1000000 || first.TxPackets != 2000000 {
		t.Errorf("packets = %d/%d", first.RxPackets, first.TxPackets)
	}
	if first.RxErrors != 12 || first.TxErrors != 4 {
		t.Errorf("errors = %d/%d", first.RxErrors, first.TxErrors)
	}
	if first.RxDrops != 3 || first.TxDrops != 1 {
		t.Errorf("drops = %d/%d", first.RxDrops, first.TxDrops)
	}

	second := metrics[1]
	if second.Status != models.IfStatusDown {
		t.Errorf("second status = %q, want down", second.Status)
	}
	if second.AdminStatus != models.IfStatusDown {
		t.Errorf("second admin status = %q, want down", second.AdminStatus)
	}
	if second.Speed != 10_000_000_000 {
		t.Errorf("second speed = %d, want 10Gbps in bits", second.Speed)
	}
}

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"1000mbps", 1_000_000_000},
		{"10Gbps", 10_000_000_000},
		{"100kbps", 100_000},
		{"Auto", 0},
		{"Unlimited", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseSpeed(tt.raw); got != tt.want {
			t.Errorf("parseSpeed(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

const showBGPSummaryOutput = `Groups: 2 Peers: 3 Down peers: 1
Table          Tot Paths  Act Paths Suppressed    History Damp State    Pending
inet.0                20         10          0          0          0          0
Peer                     AS      InPkt     OutPkt    OutQ   Flaps Last Up/Dwn State|#Active/Received/Accepted/Damped...
10.0.0.2              65002       1000       1100       0       1     2w3d 10/20/20/0
10.0.0.3              65003        500        600       0       0 00:05:12 Active
10.0.0.4              65004       2000       2100       0       0     1d2h Establ
  inet.0: 5/15/15/0
`

func TestParseBGPSummary(t *testing.T) {
	metrics := parseBGPSummary("r1", showBGPSummaryOutput, parseTime)

	if len(metrics) != 3 {
		t.Fatalf("parsed %d peers, want 3", len(metrics))
	}

	established := metrics[0]
	if established.PeerAddress != "10.0.0.2" || established.PeerAS != 65002 {
		t.Errorf("peer = %s AS%d", established.PeerAddress, established.PeerAS)
	}
	if established.State != models.BGPStateEstablished {
		t.Errorf("state = %q, want Established (route counts in state column)", established.State)
	}
	if established.ReceivedRoutes != 20 {
		t.Errorf("received routes = %d, want 20", established.ReceivedRoutes)
	}
	if established.InputMessages != 1000 || established.OutputMessages != 1100 {
		t.Errorf("messages = %d/%d", established.InputMessages, established.OutputMessages)
	}
	if want := int64(2*7*86400 + 3*86400); established.Uptime != want {
		t.Errorf("uptime = %d, want %d (2w3d)", established.Uptime, want)
	}

	down := metrics[1]
	if down.State != "Active" {
		t.Errorf("down peer state = %q, want Active", down.State)
	}
	if down.Uptime != 5*60+12 {
		t.Errorf("down peer uptime = %d, want 312", down.Uptime)
	}

	multiRib := metrics[2]
	if multiRib.State != models.BGPStateEstablished {
		t.Errorf("multi-rib state = %q, want Established", multiRib.State)
	}
	if multiRib.ReceivedRoutes != 15 {
		t.Errorf("multi-rib received routes = %d, want 15 (from rib line)", multiRib.ReceivedRoutes)
	}
}

func TestParsePeerUptime(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"2w3d", 2*7*86400 + 3*86400},
		{"4d", 4 * 86400},
		{"1:02:03", 3600 + 2*60 + 3},
		{"00:05:12", 5*60 + 12},
		{"01:05", 65},
		{"never", 0},
	}
	for _, tt := range tests {
		if got := parsePeerUptime(tt.raw); got != tt.want {
			t.Errorf("parsePeerUptime(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

const showSystemOutput = `Current time: 2026-03-14 10:00:00 UTC
Time Source:  NTP CLOCK
System booted: 2026-02-20 09:55:00 UTC (3 weeks, 1 day, 01:05 ago)
Last configured: 2026-03-01 12:00:00 UTC
10:00AM  up 22 days, 1:05, 1 user, load averages: 0.42, 0.33, 0.25

Total memory: 1048576 Kbytes
Used memory: 524288 Kbytes
Free memory: 524288 Kbytes
`

func TestParseSystem(t *testing.T) {
	m := parseSystem("r1", showSystemOutput, parseTime)

	if m.DeviceID != "r1" {
		t.Errorf("device = %q", m.DeviceID)
	}
	if m.CPULoad1Min != 0.42 || m.CPULoad5Min != 0.33 || m.CPULoad15Min != 0.25 {
		t.Errorf("load averages = %v/%v/%v", m.CPULoad1Min, m.CPULoad5Min, m.CPULoad15Min)
	}
	if m.MemoryTotal != 1048576*1024 {
		t.Errorf("memory total = %d", m.MemoryTotal)
	}
	if m.MemoryUsage != 524288*1024 {
		t.Errorf("memory usage = %d", m.MemoryUsage)
	}
	want := int64(3*7*86400 + 86400 + 65)
	if m.UptimeSeconds != want {
		t.Errorf("uptime = %d, want %d", m.UptimeSeconds, want)
	}
}

func TestParseSystemEmptyOutput(t *testing.T) {
	m := parseSystem("r1", "", parseTime)

	if m == nil {
		t.Fatal("empty output must still produce a zero-valued sample")
	}
	if m.CPULoad1Min != 0 || m.MemoryTotal != 0 || m.UptimeSeconds != 0 {
		t.Errorf("expected zero values, got %+v", m)
	}
}

func TestParseUptimeText(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"2 weeks, 3 days, 10:05", 2*7*86400 + 3*86400 + 10*60 + 5},
		{"21 days, 1 hour, 5 minutes", 21*86400 + 3600 + 5*60},
		{"45 seconds", 45},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseUptimeText(tt.raw); got != tt.want {
			t.Errorf("parseUptimeText(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
