// Package thremotetest provides TLS fixtures
// for compression-service tests.
package thremotetest

import (
	"crypto/ed25519"
	crand "crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/gordian-engine/treehash/thremote"
	"github.com/stretchr/testify/require"
)

// TLSConfigs returns a loopback-only server TLS config
// and a client config that trusts it,
// both negotiating the compression-service ALPN.
func TLSConfigs(t *testing.T) (serverConf, clientConf *tls.Config) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(crand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName: "treehash compression server",
		},

		NotBefore: time.Now().Add(-time.Minute),
		NotAfter:  time.Now().Add(time.Hour),

		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},

		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}

	der, err := x509.CreateCertificate(crand.Reader, tmpl, tmpl, pub, priv)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(cert)

	serverConf = &tls.Config{
		Certificates: []tls.Certificate{
			{
				Certificate: [][]byte{der},
				PrivateKey:  priv,

				Leaf: cert,
			},
		},

		NextProtos: []string{thremote.ALPN},
	}

	clientConf = &tls.Config{
		RootCAs: pool,

		NextProtos: []string{thremote.ALPN},
	}

	return serverConf, clientConf
}
