package device

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"

	"github.com/gosnmp/gosnmp"
)

// IF-MIB ifTable columns.
const (
	oidIfDescr        = ".1.3.6.1.2.1.2.2.1.2"
	oidIfMtu          = ".1.3.6.1.2.1.2.2.1.4"
	oidIfSpeed        = ".1.3.6.1.2.1.2.2.1.5"
	oidIfAdminStatus  = ".1.3.6.1.2.1.2.2.1.7"
	oidIfOperStatus   = ".1.3.6.1.2.1.2.2.1.8"
	oidIfInOctets     = ".1.3.6.1.2.1.2.2.1.10"
	oidIfInUcastPkts  = ".1.3.6.1.2.1.2.2.1.11"
	oidIfInDiscards   = ".1.3.6.1.2.1.2.2.1.13"
	oidIfInErrors     = ".1.3.6.1.2.1.2.2.1.14"
	oidIfOutOctets    = ".1.3.6.1.2.1.2.2.1.16"
	oidIfOutUcastPkts = ".1.3.6.1.2.1.2.2.1.17"
	oidIfOutDiscards  = ".1.3.6.1.2.1.2.2.1.19"
	oidIfOutErrors    = ".1.3.6.1.2.1.2.2.1.20"
)

// BGP4-MIB bgpPeerTable columns.
const (
	oidBgpPeerState         = ".1.3.6.1.2.1.15.3.1.2"
	oidBgpPeerRemoteAs      = ".1.3.6.1.2.1.15.3.1.9"
	oidBgpPeerInUpdates     = ".1.3.6.1.2.1.15.3.1.10"
	oidBgpPeerOutUpdates    = ".1.3.6.1.2.1.15.3.1.11"
	oidBgpPeerFsmEstablTime = ".1.3.6.1.2.1.15.3.1.16"
)

// System gauges: sysUpTime plus UCD load and memory.
const (
	oidSysUpTime    = ".1.3.6.1.2.1.1.3.0"
	oidLoad1        = ".1.3.6.1.4.1.2021.10.1.3.1"
	oidLoad5        = ".1.3.6.1.4.1.2021.10.1.3.2"
	oidLoad15       = ".1.3.6.1.4.1.2021.10.1.3.3"
	oidMemTotalReal = ".1.3.6.1.4.1.2021.4.5.0"
	oidMemAvailReal = ".1.3.6.1.4.1.2021.4.6.0"
)

// bgpPeerState integer values per BGP4-MIB.
var bgpStateNames = map[int64]string{
	1: "Idle",
	2: "Connect",
	3: "Active",
	4: "OpenSent",
	5: "OpenConfirm",
	6: models.BGPStateEstablished,
}

// SNMPSource collects telemetry over SNMP v2c. It serves the interface and
// BGP families from IF-MIB and BGP4-MIB and system gauges from the UCD MIB.
type SNMPSource struct {
	timeout time.Duration
	log     *logger.Logger
}

func NewSNMPSource(timeout time.Duration, log *logger.Logger) *SNMPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SNMPSource{timeout: timeout, log: log}
}

func (s *SNMPSource) connect(ctx context.Context, access Access) (*gosnmp.GoSNMP, error) {
	port := uint16(access.Port)
	if port == 0 {
		port = 161
	}
	community := access.Community
	if community == "" {
		community = "public"
	}

	g := &gosnmp.GoSNMP{
		Target:    access.Host,
		Port:      port,
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   s.timeout,
		Retries:   1,
		Context:   ctx,
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("%w: snmp connect %s: %v", ErrUnreachable, access.Host, err)
	}

	return g, nil
}

func (s *SNMPSource) FetchInterfaces(ctx context.Context, deviceID string, access Access) ([]models.InterfaceMetric, error) {
	g, err := s.connect(ctx, access)
	if err != nil {
		return nil, err
	}
	defer g.Conn.Close()

	ts := time.Now().UTC()
	byIndex := map[string]*models.InterfaceMetric{}

	get := func(index string) *models.InterfaceMetric {
		m, ok := byIndex[index]
		if !ok {
			m = &models.InterfaceMetric{DeviceID: deviceID, Timestamp: ts}
			byIndex[index] = m
		}
		return m
	}

	columns := map[string]func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU){
		oidIfDescr: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.InterfaceName = pduString(pdu)
		},
		oidIfMtu: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.MTU = int(pduInt(pdu))
		},
		oidIfSpeed: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.Speed = pduInt(pdu)
		},
		oidIfAdminStatus: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.AdminStatus = ifStatusName(pduInt(pdu))
		},
		oidIfOperStatus: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.Status = ifStatusName(pduInt(pdu))
		},
		oidIfInOctets: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.RxBytes = pduInt(pdu)
		},
		oidIfInUcastPkts: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.RxPackets = pduInt(pdu)
		},
		oidIfInDiscards: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.RxDrops = pduInt(pdu)
		},
		oidIfInErrors: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.RxErrors = pduInt(pdu)
		},
		oidIfOutOctets: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.TxBytes = pduInt(pdu)
		},
		oidIfOutUcastPkts: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.TxPackets = pduInt(pdu)
		},
		oidIfOutDiscards: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.TxDrops = pduInt(pdu)
		},
		oidIfOutErrors: func(m *models.InterfaceMetric, pdu gosnmp.SnmpPDU) {
			m.TxErrors = pduInt(pdu)
		},
	}

	for oid, apply := range columns {
		prefix := oid + "."
		err := g.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
			apply(get(strings.TrimPrefix(pdu.Name, prefix)), pdu)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: walk %s on %s: %v", ErrUnreachable, oid, access.Host, err)
		}
	}

	indexes := make([]string, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Strings(indexes)

	metrics := make([]models.InterfaceMetric, 0, len(byIndex))
	for _, idx := range indexes {
		m := byIndex[idx]
		if m.InterfaceName == "" {
			continue
		}
		metrics = append(metrics, *m)
	}

	return metrics, nil
}

func (s *SNMPSource) FetchBGPPeers(ctx context.Context, deviceID string, access Access) ([]models.BGPMetric, error) {
	g, err := s.connect(ctx, access)
	if err != nil {
		return nil, err
	}
	defer g.Conn.Close()

	ts := time.Now().UTC()
	byPeer := map[string]*models.BGPMetric{}

	get := func(addr string) *models.BGPMetric {
		m, ok := byPeer[addr]
		if !ok {
			m = &models.BGPMetric{DeviceID: deviceID, PeerAddress: addr, Timestamp: ts}
			byPeer[addr] = m
		}
		return m
	}

	columns := map[string]func(m *models.BGPMetric, pdu gosnmp.SnmpPDU){
		oidBgpPeerState: func(m *models.BGPMetric, pdu gosnmp.SnmpPDU) {
			m.State = bgpStateName(pduInt(pdu))
		},
		oidBgpPeerRemoteAs: func(m *models.BGPMetric, pdu gosnmp.SnmpPDU) {
			m.PeerAS = pduInt(pdu)
		},
		oidBgpPeerInUpdates: func(m *models.BGPMetric, pdu gosnmp.SnmpPDU) {
			m.InputMessages = pduInt(pdu)
		},
		oidBgpPeerOutUpdates: func(m *models.BGPMetric, pdu gosnmp.SnmpPDU) {
			m.OutputMessages = pduInt(pdu)
		},
		oidBgpPeerFsmEstablTime: func(m *models.BGPMetric, pdu gosnmp.SnmpPDU) {
			m.Uptime = pduInt(pdu)
		},
	}

	walked := false
	for oid, apply := range columns {
		prefix := oid + "."
		err := g.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
			walked = true
			apply(get(strings.TrimPrefix(pdu.Name, prefix)), pdu)
			return nil
		})
		if err != nil {
			if walked {
				return nil, fmt.Errorf("walk %s on %s: %w", oid, access.Host, err)
			}
			// Nothing answered at all: the agent likely has no BGP4-MIB.
			return nil, fmt.Errorf("%w: bgp table on %s: %v", ErrNotSupported, access.Host, err)
		}
	}

	peers := make([]string, 0, len(byPeer))
	for addr := range byPeer {
		peers = append(peers, addr)
	}
	sort.Strings(peers)

	metrics := make([]models.BGPMetric, 0, len(byPeer))
	for _, addr := range peers {
		metrics = append(metrics, *byPeer[addr])
	}

	return metrics, nil
}

func (s *SNMPSource) FetchSystem(ctx context.Context, deviceID string, access Access) (*models.SystemMetric, error) {
	g, err := s.connect(ctx, access)
	if err != nil {
		return nil, err
	}
	defer g.Conn.Close()

	oids := []string{oidSysUpTime, oidLoad1, oidLoad5, oidLoad15, oidMemTotalReal, oidMemAvailReal}
	packet, err := g.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("%w: snmp get on %s: %v", ErrUnreachable, access.Host, err)
	}

	m := &models.SystemMetric{DeviceID: deviceID, Timestamp: time.Now().UTC()}

	var memTotalKB, memAvailKB int64
	for _, pdu := range packet.Variables {
		switch pdu.Name {
		case oidSysUpTime:
			m.UptimeSeconds = pduInt(pdu) / 100 // TimeTicks are hundredths
		case oidLoad1:
			m.CPULoad1Min = pduFloat(pdu)
		case oidLoad5:
			m.CPULoad5Min = pduFloat(pdu)
		case oidLoad15:
			m.CPULoad15Min = pduFloat(pdu)
		case oidMemTotalReal:
			memTotalKB = pduInt(pdu)
		case oidMemAvailReal:
			memAvailKB = pduInt(pdu)
		}
	}

	m.MemoryTotal = memTotalKB * 1024
	if memTotalKB > 0 {
		m.MemoryUsage = (memTotalKB - memAvailKB) * 1024
	}

	return m, nil
}

func ifStatusName(v int64) string {
	switch v {
	case 1:
		return models.IfStatusUp
	case 2:
		return models.IfStatusDown
	default:
		return "other"
	}
}

func bgpStateName(v int64) string {
	if name, ok := bgpStateNames[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", v)
}

func pduString(pdu gosnmp.SnmpPDU) string {
	if b, ok := pdu.Value.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", pdu.Value)
}

func pduInt(pdu gosnmp.SnmpPDU) int64 {
	return gosnmp.ToBigInt(pdu.Value).Int64()
}

// pduFloat reads a UCD load value, which agents expose as a decimal string.
func pduFloat(pdu gosnmp.SnmpPDU) float64 {
	s := strings.TrimSpace(pduString(pdu))
	var f float64
	fmt.Sscanf(s, "%f", &f)
	return f
}
