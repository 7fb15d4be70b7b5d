// Package proxmox probes Proxmox VE hosts: cluster nodes and the guests
// (VMs/containers) running on them, for the VM Topology Resolver to
// reconcile (spec.md §4.2, §4.7).
package proxmox

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/luthermonson/go-proxmox"
	"github.com/netwatch-io/netwatch/internal/adapters"
	"github.com/netwatch-io/netwatch/internal/models"
)

const defaultPort = 8006

// Adapter implements adapters.Adapter for proxmox devices.
type Adapter struct{}

// New returns a Proxmox Adapter.
func New() *Adapter { return &Adapter{} }

var _ adapters.Adapter = (*Adapter)(nil)

// Probe enumerates the cluster's nodes and the guests of every node. For
// QEMU guests it collects the non-loopback IPv4 addresses the guest agent
// reports; matching a guest to a monitored Device by those addresses is
// left to the caller (spec.md §4.2 "VM auto-matching").
func (a *Adapter) Probe(ctx context.Context, ipAddress string, creds models.Credentials, opts adapters.ProbeOptions) models.ProbeResult {
	pc, ok := creds.(models.ProxmoxCredentials)
	if !ok {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("proxmox adapter requires ProxmoxCredentials, got %T", creds)}
	}

	client, err := newClient(ipAddress, pc)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("configure proxmox client for %s: %w", ipAddress, err)}
	}

	version, err := client.Version(ctx)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("proxmox version %s: %w", ipAddress, err)}
	}

	cluster, err := client.Cluster(ctx)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("proxmox cluster status %s: %w", ipAddress, err)}
	}
	clusterName := cluster.Name

	nodeStatuses, err := client.Nodes(ctx)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("list proxmox nodes %s: %w", ipAddress, err)}
	}

	now := time.Now()
	data := models.DeviceData{Extra: map[string]string{"version": version.Version}}

	var nodes []models.ProxmoxNode
	var vms []models.ProxmoxVm
	for _, n := range nodeStatuses {
		nodes = append(nodes, models.ProxmoxNode{
			ClusterName: clusterName,
			NodeName:    n.Node,
			LastSeen:    now,
		})

		node, err := client.Node(ctx, n.Node)
		if err != nil {
			continue
		}
		vms = append(vms, fetchGuests(ctx, node, clusterName, n.Node, now)...)
	}

	data.CPUUsagePct = nil // host-level CPU is reported per-node, not aggregated onto the device row
	return models.ProbeResult{Success: true, Data: data, ProxmoxNodes: nodes, ProxmoxVms: vms}
}

func fetchGuests(ctx context.Context, node *proxmox.Node, clusterName, nodeName string, now time.Time) []models.ProxmoxVm {
	var out []models.ProxmoxVm

	vms, err := node.VirtualMachines(ctx)
	if err == nil {
		for _, vm := range vms {
			out = append(out, models.ProxmoxVm{
				HostDeviceID: "", // filled in by the caller once the Device row is resolved
				Vmid:         int(vm.VMID),
				VmType:       models.ProxmoxGuestQEMU,
				Name:         vm.Name,
				Status:       guestStatus(string(vm.Status)),
				Node:         nodeName,
				MemoryBytes:  int64(vm.MaxMem),
				DiskBytes:    int64(vm.MaxDisk),
				UptimeSeconds: int64(vm.Uptime),
				ClusterName:  clusterName,
				LastSeen:     now,
				IPAddresses:  guestIPs(ctx, vm),
			})
		}
	}

	containers, err := node.Containers(ctx)
	if err == nil {
		for _, ct := range containers {
			out = append(out, models.ProxmoxVm{
				Vmid:          int(ct.VMID),
				VmType:        models.ProxmoxGuestLXC,
				Name:          ct.Name,
				Status:        guestStatus(string(ct.Status)),
				Node:          nodeName,
				MemoryBytes:   int64(ct.MaxMem),
				DiskBytes:     int64(ct.MaxDisk),
				UptimeSeconds: int64(ct.Uptime),
				ClusterName:   clusterName,
				LastSeen:      now,
			})
		}
	}

	return out
}

// guestIPs consults the QEMU guest agent's network-get-interfaces call when
// available; agent-less VMs simply contribute no auto-match candidates
// (spec.md §4.2 VM auto-matching is best-effort).
func guestIPs(ctx context.Context, vm *proxmox.VirtualMachine) []string {
	ifaces, err := vm.AgentGetNetworkIFaces(ctx)
	if err != nil {
		return nil
	}
	var ips []string
	for _, iface := range ifaces {
		for _, addr := range iface.IPAddresses {
			if addr.IPAddressType == "ipv4" && !strings.HasPrefix(addr.IPAddress, "127.") {
				ips = append(ips, addr.IPAddress)
			}
		}
	}
	return ips
}

func guestStatus(raw string) models.ProxmoxGuestStatus {
	switch raw {
	case "running":
		return models.ProxmoxGuestRunning
	case "stopped":
		return models.ProxmoxGuestStopped
	case "paused":
		return models.ProxmoxGuestPaused
	default:
		return models.ProxmoxGuestUnknown
	}
}

func newClient(ip string, pc models.ProxmoxCredentials) (*proxmox.Client, error) {
	port := pc.Port
	if port == 0 {
		port = defaultPort
	}
	baseURL := fmt.Sprintf("https://%s:%d/api2/json", ip, port)

	httpClient := &http.Client{Timeout: 10 * time.Second}

	switch pc.Mode {
	case models.ProxmoxAuthToken:
		return proxmox.NewClient(baseURL,
			proxmox.WithHTTPClient(httpClient),
			proxmox.WithAPIToken(pc.TokenID, pc.TokenSecret),
		), nil
	case models.ProxmoxAuthPassword:
		client := proxmox.NewClient(baseURL, proxmox.WithHTTPClient(httpClient))
		_, err := client.Login(context.Background(), pc.Username, pc.Password, pc.Realm)
		if err != nil {
			return nil, fmt.Errorf("proxmox login: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported proxmox auth mode %q", pc.Mode)
	}
}
