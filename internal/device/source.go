// Package device talks to managed network endpoints and turns their output
// into metric records. The monitoring core consumes it only through the
// TelemetrySource interface and treats Access as an opaque blob.
package device

import (
	"context"
	"errors"

	"NetMonitorAPI/internal/models"
)

// ErrUnreachable marks a transport-level failure: the device could not be
// reached at all, as opposed to a single metric family failing to parse.
var ErrUnreachable = errors.New("device unreachable")

// ErrNotSupported is returned by sources that cannot serve a metric family,
// e.g. routing sessions on a device that only speaks basic SNMP.
var ErrNotSupported = errors.New("metric family not supported by this source")

// Access carries whatever a source needs to open a session with one device.
// Registration hands it in; the monitoring core never inspects it.
type Access struct {
	Host      string `json:"host"`
	Port      int    `json:"port,omitempty"`
	Transport string `json:"transport,omitempty"` // "ssh" (default) or "snmp"
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	Community string `json:"community,omitempty"` // snmp only
}

// TelemetrySource fetches one metric family per call. Each family can fail
// independently; failure is signalled by a non-nil error, never by an empty
// result. Implementations wrap transport-level failures with ErrUnreachable.
type TelemetrySource interface {
	FetchInterfaces(ctx context.Context, deviceID string, access Access) ([]models.InterfaceMetric, error)
	FetchBGPPeers(ctx context.Context, deviceID string, access Access) ([]models.BGPMetric, error)
	FetchSystem(ctx context.Context, deviceID string, access Access) (*models.SystemMetric, error)
}

// MultiSource routes each fetch to the source matching the access transport.
type MultiSource struct {
	SSH  TelemetrySource
	SNMP TelemetrySource
}

func (m *MultiSource) pick(access Access) TelemetrySource {
	if access.Transport == "snmp" {
		return m.SNMP
	}
	return m.SSH
}

func (m *MultiSource) FetchInterfaces(ctx context.Context, deviceID string, access Access) ([]models.InterfaceMetric, error) {
	return m.pick(access).FetchInterfaces(ctx, deviceID, access)
}

func (m *MultiSource) FetchBGPPeers(ctx context.Context, deviceID string, access Access) ([]models.BGPMetric, error) {
	return m.pick(access).FetchBGPPeers(ctx, deviceID, access)
}

func (m *MultiSource) FetchSystem(ctx context.Context, deviceID string, access Access) (*models.SystemMetric, error) {
	return m.pick(access).FetchSystem(ctx, deviceID, access)
}
