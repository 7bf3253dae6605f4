package tlsinspect

import (
	"context"
	"crypto/tls"
	"crypto/x509/pkix"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"phishscope/pkg/models"
)

// Inspector pulls the peer certificate from an HTTPS host. Hostname and chain
// verification are deliberately disabled: the point is to look at adversarial
// certificates (self-signed, expired, mismatched), and rejecting the
// handshake would erase exactly that signal. Nothing is sent on the
// connection beyond the handshake.
type Inspector struct {
	timeout time.Duration
	log     *logrus.Logger
}

// NewInspector creates an Inspector with the given dial timeout
func NewInspector(timeout time.Duration, log *logrus.Logger) *Inspector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Inspector{timeout: timeout, log: log}
}

// Inspect opens a TLS connection to host (port 443 unless host already
// carries one) and returns the leaf certificate's attributes. Any failure -
// refused connection, timeout, no certificate - yields nil; inspection is
// never fatal to a collection.
func (i *Inspector) Inspect(ctx context.Context, host string) *models.SSLInfo {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, "443")
	}
	serverName, _, err := net.SplitHostPort(addr)
	if err != nil {
		i.log.Warnf("SSL inspection skipped, bad host %q: %v", host, err)
		return nil
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: i.timeout},
		Config: &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         serverName,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		i.log.WithField("host", host).Warnf("SSL inspection failed: %v", err)
		return nil
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		i.log.WithField("host", host).Warn("SSL inspection: no peer certificate presented")
		return nil
	}
	cert := state.PeerCertificates[0]

	return &models.SSLInfo{
		Issuer:             dnToMap(cert.Issuer),
		Subject:            dnToMap(cert.Subject),
		Version:            cert.Version,
		SerialNumber:       fmt.Sprintf("%X", cert.SerialNumber),
		NotBefore:          cert.NotBefore,
		NotAfter:           cert.NotAfter,
		ValidDaysRemaining: validDays(cert.NotAfter, time.Now()),
	}
}

// validDays returns whole days until notAfter, floored at zero for expired
// certificates
func validDays(notAfter, now time.Time) int {
	days := int(notAfter.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// dnToMap flattens a distinguished name into attribute -> first value
func dnToMap(name pkix.Name) map[string]string {
	m := make(map[string]string)
	set := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	set("commonName", name.CommonName)
	set("serialNumber", name.SerialNumber)
	if len(name.Organization) > 0 {
		set("organizationName", name.Organization[0])
	}
	if len(name.OrganizationalUnit) > 0 {
		set("organizationalUnitName", name.OrganizationalUnit[0])
	}
	if len(name.Country) > 0 {
		set("countryName", name.Country[0])
	}
	if len(name.Locality) > 0 {
		set("localityName", name.Locality[0])
	}
	if len(name.Province) > 0 {
		set("stateOrProvinceName", name.Province[0])
	}
	return m
}
