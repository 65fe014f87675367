//go:build linux && amd64

package linuxroute

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// Field offsets within a tab-separated /proc/net/route line, following
// RouteManager::SyncRoutingTable's kIfNameOffset/kDstAddressOffset/
// kGwAddressOffset/kMetricOffset constants. The header line (Iface Destination
// Gateway Flags RefCnt Use Metric Mask MTU Window IRTT) is skipped.
const (
	fieldIfName  = 0
	fieldDst     = 1
	fieldGateway = 2
	fieldMetric  = 6

	minFields = 7

	// defaultProcNetRoute is the standard Linux path; overridable for tests.
	defaultProcNetRoute = "/proc/net/route"
)

// tableReader reads /proc/net/route, parameterized by path for testability,
// following the CPUCollector's procPath pattern.
type tableReader struct {
	procPath string
}

func newTableReader() *tableReader {
	return &tableReader{procPath: defaultProcNetRoute}
}

func (r *tableReader) readTable(ctx context.Context) ([]routing.Entry, error) {
	f, err := os.Open(r.procPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.procPath, err)
	}
	defer f.Close()

	var entries []routing.Entry
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < minFields {
			continue
		}

		dst, err := addressFromHex(fields[fieldDst])
		if err != nil {
			continue
		}
		gw, err := addressFromHex(fields[fieldGateway])
		if err != nil {
			continue
		}
		metric, err := strconv.Atoi(fields[fieldMetric])
		if err != nil {
			continue
		}

		entries = append(entries, routing.Entry{
			IfName: fields[fieldIfName],
			Dst:    dst,
			Gw:     gw,
			// /proc/net/route already reports the userspace metric (one less
			// than the kernel-internal value), so it is kept as is; see
			// Entry's doc comment.
			Metric: metric,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.procPath, err)
	}
	return entries, nil
}

// addressFromHex decodes /proc/net/route's little-endian hex-encoded IPv4
// address representation (e.g. "0101A8C0" for 192.168.1.1), mirroring
// MakeAddressFromIntAsStr in the reference implementation.
func addressFromHex(s string) (netip.Addr, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 4 {
		return netip.Addr{}, fmt.Errorf("malformed address %q", s)
	}
	// /proc/net/route stores the address in host byte order as written by
	// the kernel, which on little-endian platforms reverses the network
	// byte order octets; reversing here recovers the dotted-quad order.
	var b [4]byte
	b[0], b[1], b[2], b[3] = raw[3], raw[2], raw[1], raw[0]
	return netip.AddrFrom4(b), nil
}
