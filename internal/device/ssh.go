package device

import (
	"context"
	"fmt"
	"net"
	"time"

	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"

	"golang.org/x/crypto/ssh"
)

// CLI commands issued per metric family.
const (
	cmdShowInterfaces = "show interfaces"
	cmdShowBGPSummary = "show bgp summary"
	cmdShowSystem     = "show system uptime | no-more ; show system memory"
)

// SSHSource collects telemetry by running show commands over SSH and parsing
// the CLI output. A fresh session is opened per fetch, mirroring how the
// device CLI treats each command as independent.
type SSHSource struct {
	timeout time.Duration
	log     *logger.Logger
}

func NewSSHSource(timeout time.Duration, log *logger.Logger) *SSHSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SSHSource{timeout: timeout, log: log}
}

func (s *SSHSource) FetchInterfaces(ctx context.Context, deviceID string, access Access) ([]models.InterfaceMetric, error) {
	out, err := s.run(ctx, access, cmdShowInterfaces)
	if err != nil {
		return nil, err
	}
	return parseInterfaces(deviceID, out, time.Now().UTC()), nil
}

func (s *SSHSource) FetchBGPPeers(ctx context.Context, deviceID string, access Access) ([]models.BGPMetric, error) {
	out, err := s.run(ctx, access, cmdShowBGPSummary)
	if err != nil {
		return nil, err
	}
	return parseBGPSummary(deviceID, out, time.Now().UTC()), nil
}

func (s *SSHSource) FetchSystem(ctx context.Context, deviceID string, access Access) (*models.SystemMetric, error) {
	out, err := s.run(ctx, access, cmdShowSystem)
	if err != nil {
		return nil, err
	}
	return parseSystem(deviceID, out, time.Now().UTC()), nil
}

// run opens a session, executes one command and returns its output. Dial
// failures are wrapped with ErrUnreachable; command failures are not.
func (s *SSHSource) run(ctx context.Context, access Access, command string) (string, error) {
	port := access.Port
	if port == 0 {
		port = 22
	}
	addr := fmt.Sprintf("%s:%d", access.Host, port)

	cfg := &ssh.ClientConfig{
		User: access.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(access.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         s.timeout,
	}

	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("%w: dial %s: %v", ErrUnreachable, addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("%w: handshake %s: %v", ErrUnreachable, addr, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("new session on %s: %w", addr, err)
	}
	defer session.Close()

	output, err := session.Output(command)
	if err != nil {
		return "", fmt.Errorf("run %q on %s: %w", command, addr, err)
	}

	return string(output), nil
}
