// Package catalog defines the fixed list of security operations the
// dashboard can run. The catalog is built once at startup and never changes;
// its order is the only valid range for the dashboard's selection cursor.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/aegisops/aegis/internal/errors"
	"github.com/aegisops/aegis/internal/runner"
)

// Kind groups operations by what they do to the host.
type Kind int

const (
	// KindScan inspects the host without changing it.
	KindScan Kind = iota
	// KindHarden changes host configuration.
	KindHarden
)

// String returns a human-readable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindScan:
		return "scan"
	case KindHarden:
		return "harden"
	default:
		return "unknown"
	}
}

// Operation IDs, usable on the command line.
const (
	SecurityScan   = "security-scan"
	MalwareScan    = "malware-scan"
	HardenSSH      = "harden-ssh"
	EnableFirewall = "enable-firewall"
)

// Operation is a named administrative action bound to a concrete invocation.
type Operation struct {
	ID          string
	Title       string
	Description string
	Kind        Kind
	Program     string
	Args        []string

	run runner.Runner
}

// Invoke runs the operation's command through its runner.
func (o Operation) Invoke(ctx context.Context) runner.Result {
	return o.run.Run(ctx, o.Program, o.Args)
}

// CommandLine returns the invocation shown to the operator before running.
func (o Operation) CommandLine() string {
	return runner.CommandLine(o.Program, o.Args)
}

// Mutates reports whether running the operation changes the host.
func (o Operation) Mutates() bool {
	return o.Kind == KindHarden
}

// Catalog is the ordered, immutable operation list.
type Catalog struct {
	ops []Operation
}

// New builds the catalog bound to r. Simulated runners get the harmless
// argument vectors so a forced simulation never names real system files.
func New(r runner.Runner) *Catalog {
	simulated := r.Simulated()

	sshArgs := []string{"-i", "s/^PermitRootLogin.*/PermitRootLogin no/", "/etc/ssh/sshd_config"}
	ufwArgs := []string{"--force", "enable"}
	if simulated {
		sshArgs = []string{"-i", "s/PermitRootLogin yes/PermitRootLogin no/", "/fake/path/sshd_config"}
		ufwArgs = []string{"enable"}
	}

	return &Catalog{ops: []Operation{
		{
			ID:          SecurityScan,
			Title:       "Security Scan (Lynis)",
			Description: "Run full system audit",
			Kind:        KindScan,
			Program:     "lynis",
			Args:        []string{"audit", "system", "--quick", "--no-colors"},
			run:         r,
		},
		{
			ID:          MalwareScan,
			Title:       "Malware Scan (ClamAV)",
			Description: "Scan /tmp for threats",
			Kind:        KindScan,
			Program:     "clamscan",
			Args:        []string{"-r", "/tmp", "--no-summary"},
			run:         r,
		},
		{
			ID:          HardenSSH,
			Title:       "Harden SSH",
			Description: "Disable Root Login",
			Kind:        KindHarden,
			Program:     "sed",
			Args:        sshArgs,
			run:         r,
		},
		{
			ID:          EnableFirewall,
			Title:       "Enable Firewall",
			Description: "UFW Default Deny/Allow Out",
			Kind:        KindHarden,
			Program:     "ufw",
			Args:        ufwArgs,
			run:         r,
		},
	}}
}

// Len returns the number of operations.
func (c *Catalog) Len() int {
	return len(c.ops)
}

// Get returns the operation at index i. It panics when i is out of range,
// matching slice indexing; callers clamp their cursor first.
func (c *Catalog) Get(i int) Operation {
	return c.ops[i]
}

// All returns a copy of the operations in catalog order.
func (c *Catalog) All() []Operation {
	out := make([]Operation, len(c.ops))
	copy(out, c.ops)
	return out
}

// Find looks an operation up by ID or case-insensitive title.
func (c *Catalog) Find(name string) (int, Operation, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for i, op := range c.ops {
		if op.ID == needle || strings.ToLower(op.Title) == needle {
			return i, op, nil
		}
	}

	ids := make([]string, len(c.ops))
	for i, op := range c.ops {
		ids[i] = op.ID
	}
	return -1, Operation{}, errors.New(errors.ErrInput,
		fmt.Sprintf("No operation named '%s'", name),
		"Available operations: "+strings.Join(ids, ", "))
}

// Score rates a scan by exit status alone: 100 when the tool succeeded, 0
// otherwise. A finer score would parse the lynis hardening index.
func Score(res runner.Result) int {
	if res.Success {
		return 100
	}
	return 0
}
