package device

import (
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"NetMonitorAPI/internal/models"
)

// CLI output parsers. Devices format their show output in recognizable
// labeled blocks; every value here is parsed best-effort and a field that
// cannot be read stays zero rather than failing the fetch.

var (
	reIfHeader = regexp.MustCompile(`(?m)^Physical interface: (\S+), (Enabled|Administratively down), Physical link is (\w+)`)
	reIfMTU    = regexp.MustCompile(`MTU: (\d+)`)
	reIfSpeed  = regexp.MustCompile(`Speed: (\S+?)(?:,|$|\s)`)

	ifCounterPatterns = map[string]*regexp.Regexp{
		"rx_packets": regexp.MustCompile(`Input packets\s*:\s*(\d+)`),
		"tx_packets": regexp.MustCompile(`Output packets\s*:\s*(\d+)`),
		"rx_bytes":   regexp.MustCompile(`Input bytes\s*:\s*(\d+)`),
		"tx_bytes":   regexp.MustCompile(`Output bytes\s*:\s*(\d+)`),
		"rx_errors":  regexp.MustCompile(`Input errors\s*:\s*(\d+)`),
		"tx_errors":  regexp.MustCompile(`Output errors\s*:\s*(\d+)`),
		"rx_drops":   regexp.MustCompile(`Input drops\s*:\s*(\d+)`),
		"tx_drops":   regexp.MustCompile(`Output drops\s*:\s*(\d+)`),
	}

	reLoadAverages = regexp.MustCompile(`load averages?:\s*([\d.]+),?\s+([\d.]+),?\s+([\d.]+)`)
	reSystemBooted = regexp.MustCompile(`System booted:.*\((.+?) ago\)`)
	reTotalMemory  = regexp.MustCompile(`Total memory:\s*(\d+)`)
	reUsedMemory   = regexp.MustCompile(`Used memory:\s*(\d+)`)
	reRoutesField  = regexp.MustCompile(`^(\d+)/(\d+)/\d+/\d+$`)
)

// parseInterfaces splits "show interfaces" output into per-interface blocks
// and reads status, speed, MTU and the eight traffic counters from each.
func parseInterfaces(deviceID, output string, ts time.Time) []models.InterfaceMetric {
	headers := reIfHeader.FindAllStringSubmatchIndex(output, -1)
	metrics := make([]models.InterfaceMetric, 0, len(headers))

	for i, loc := range headers {
		end := len(output)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		block := output[loc[0]:end]

		match := reIfHeader.FindStringSubmatch(block)
		m := models.InterfaceMetric{
			DeviceID:      deviceID,
			InterfaceName: match[1],
			Status:        strings.ToLower(match[3]),
			AdminStatus:   models.IfStatusUp,
			Timestamp:     ts,
		}
		if match[2] != "Enabled" {
			m.AdminStatus = models.IfStatusDown
		}

		if mtu := reIfMTU.FindStringSubmatch(block); mtu != nil {
			m.MTU, _ = strconv.Atoi(mtu[1])
		}
		if speed := reIfSpeed.FindStringSubmatch(block); speed != nil {
			m.Speed = parseSpeed(speed[1])
		}

		counters := map[string]*int64{
			"rx_packets": &m.RxPackets, "tx_packets": &m.TxPackets,
			"rx_bytes": &m.RxBytes, "tx_bytes": &m.TxBytes,
			"rx_errors": &m.RxErrors, "tx_errors": &m.TxErrors,
			"rx_drops": &m.RxDrops, "tx_drops": &m.TxDrops,
		}
		for name, re := range ifCounterPatterns {
			if v := re.FindStringSubmatch(block); v != nil {
				*counters[name], _ = strconv.ParseInt(v[1], 10, 64)
			}
		}

		metrics = append(metrics, m)
	}

	return metrics
}

// parseSpeed converts CLI speed notations ("1000mbps", "10Gbps", "Auto") to
// bits per second. Unknown notations give 0.
func parseSpeed(raw string) int64 {
	s := strings.ToLower(strings.TrimSuffix(strings.ToLower(raw), ","))
	var mult int64
	switch {
	case strings.HasSuffix(s, "gbps"):
		mult = 1_000_000_000
		s = strings.TrimSuffix(s, "gbps")
	case strings.HasSuffix(s, "mbps"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "mbps")
	case strings.HasSuffix(s, "kbps"):
		mult = 1_000
		s = strings.TrimSuffix(s, "kbps")
	default:
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n * mult
}

// parseBGPSummary reads peer rows out of "show bgp summary". A row starts
// with the peer address; the received-route count comes either from the
// state column of an established peer or a following rib line.
func parseBGPSummary(deviceID, output string, ts time.Time) []models.BGPMetric {
	metrics := []models.BGPMetric{}
	var current *models.BGPMetric

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		// Rib detail line for the previous peer, e.g. "inet.0: 10/20/20/0".
		if current != nil && strings.HasSuffix(fields[0], ":") && len(fields) >= 2 {
			if routes := reRoutesField.FindStringSubmatch(fields[1]); routes != nil {
				current.ReceivedRoutes, _ = strconv.ParseInt(routes[2], 10, 64)
			}
			continue
		}

		if net.ParseIP(fields[0]) == nil || len(fields) < 8 {
			continue
		}

		m := models.BGPMetric{
			DeviceID:    deviceID,
			PeerAddress: fields[0],
			Timestamp:   ts,
		}
		m.PeerAS, _ = strconv.ParseInt(fields[1], 10, 64)
		m.InputMessages, _ = strconv.ParseInt(fields[2], 10, 64)
		m.OutputMessages, _ = strconv.ParseInt(fields[3], 10, 64)
		m.Uptime = parsePeerUptime(fields[6])

		state := fields[7]
		if routes := reRoutesField.FindStringSubmatch(state); routes != nil {
			// Single-rib output folds the route counts into the state column
			// and the peer is established.
			m.State = models.BGPStateEstablished
			m.ReceivedRoutes, _ = strconv.ParseInt(routes[2], 10, 64)
		} else if state == "Establ" {
			m.State = models.BGPStateEstablished
		} else {
			m.State = state
		}

		metrics = append(metrics, m)
		current = &metrics[len(metrics)-1]
	}

	return metrics
}

// parsePeerUptime converts uptime notations like "2w3d", "4d", "1:02:03" or
// combinations ("2w3d 10:05") to seconds.
func parsePeerUptime(raw string) int64 {
	var total int64
	s := raw

	if i := strings.Index(s, "w"); i > 0 {
		if w, err := strconv.ParseInt(s[:i], 10, 64); err == nil {
			total += w * 7 * 86400
			s = s[i+1:]
		}
	}
	if i := strings.Index(s, "d"); i > 0 {
		if d, err := strconv.ParseInt(s[:i], 10, 64); err == nil {
			total += d * 86400
			s = s[i+1:]
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) >= 2 {
		mults := []int64{1, 60, 3600}
		for i := 0; i < len(parts) && i < 3; i++ {
			v, err := strconv.ParseInt(parts[len(parts)-1-i], 10, 64)
			if err != nil {
				continue
			}
			total += v * mults[i]
		}
	}

	return total
}

// parseSystem reads load averages, memory usage and uptime out of the
// combined uptime/memory command output.
func parseSystem(deviceID, output string, ts time.Time) *models.SystemMetric {
	m := &models.SystemMetric{
		DeviceID:  deviceID,
		Timestamp: ts,
	}

	if loads := reLoadAverages.FindStringSubmatch(output); loads != nil {
		m.CPULoad1Min, _ = strconv.ParseFloat(loads[1], 64)
		m.CPULoad5Min, _ = strconv.ParseFloat(loads[2], 64)
		m.CPULoad15Min, _ = strconv.ParseFloat(loads[3], 64)
	}

	// Memory counters are reported in Kbytes.
	if total := reTotalMemory.FindStringSubmatch(output); total != nil {
		kb, _ := strconv.ParseInt(total[1], 10, 64)
		m.MemoryTotal = kb * 1024
	}
	if used := reUsedMemory.FindStringSubmatch(output); used != nil {
		kb, _ := strconv.ParseInt(used[1], 10, 64)
		m.MemoryUsage = kb * 1024
	}

	if booted := reSystemBooted.FindStringSubmatch(output); booted != nil {
		m.UptimeSeconds = parseUptimeText(booted[1])
	}

	return m
}

// parseUptimeText converts textual durations like "2 weeks, 3 days, 10:05"
// or "21 days, 1 hour, 5 minutes" to seconds.
func parseUptimeText(raw string) int64 {
	var total int64
	s := strings.ToLower(raw)

	units := []struct {
		word    string
		seconds int64
	}{
		{"week", 7 * 86400},
		{"day", 86400},
		{"hour", 3600},
		{"min", 60},
		{"sec", 1},
	}

	for _, u := range units {
		idx := strings.Index(s, u.word)
		if idx < 0 {
			continue
		}
		head := strings.TrimSpace(strings.Trim(s[:idx], " ,"))
		fields := strings.Fields(head)
		if len(fields) == 0 {
			continue
		}
		if v, err := strconv.ParseInt(fields[len(fields)-1], 10, 64); err == nil {
			total += v * u.seconds
		}
		s = s[idx+len(u.word):]
	}

	// A trailing "hh:mm" or "hh:mm:ss" clock fragment.
	fields := strings.Fields(s)
	for _, f := range fields {
		if strings.Contains(f, ":") {
			total += parsePeerUptime(f)
			break
		}
	}

	return total
}
