// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package inspector

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	gosql "database/sql"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pingcap/check"
	"github.com/pingcap/schema-inspector/pkg/security"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// writeTestCerts writes a CA and a leaf certificate for 127.0.0.1 signed by it.
// The leaf serves both as the server and the client certificate.
func writeTestCerts(c *check.C) security.Config {
	dir := c.MkDir()
	cfg := security.Config{
		SSLCA:   filepath.Join(dir, "ca.crt"),
		SSLCert: filepath.Join(dir, "ssl.crt"),
		SSLKey:  filepath.Join(dir, "ssl.key"),
	}

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	c.Assert(err, check.IsNil)
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "schema-inspector test ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	c.Assert(err, check.IsNil)
	caCert, err := x509.ParseCertificate(caDER)
	c.Assert(err, check.IsNil)

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	c.Assert(err, check.IsNil)
	leafTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTmpl, caCert, &key.PublicKey, caKey)
	c.Assert(err, check.IsNil)
	keyDER, err := x509.MarshalECPrivateKey(key)
	c.Assert(err, check.IsNil)

	writePEM := func(path, typ string, der []byte) {
		c.Assert(os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der}), 0600), check.IsNil)
	}
	writePEM(cfg.SSLCA, "CERTIFICATE", caDER)
	writePEM(cfg.SSLCert, "CERTIFICATE", leafDER)
	writePEM(cfg.SSLKey, "EC PRIVATE KEY", keyDER)
	return cfg
}

// tlsServerSuite serves HTTP and gRPC health over one tls listener.
type tlsServerSuite struct {
	server    *Server
	clientTLS *tls.Config
	errCh     chan error
	addr      string
}

var _ = check.Suite(&tlsServerSuite{})

func (s *tlsServerSuite) SetUpTest(c *check.C) {
	dir := c.MkDir()
	file := filepath.Join(dir, "pagila.db")
	db, err := gosql.Open("sqlite3", file)
	c.Assert(err, check.IsNil)
	_, err = db.Exec(`CREATE TABLE actor (actor_id integer PRIMARY KEY, last_name varchar(45))`)
	c.Assert(err, check.IsNil)
	c.Assert(db.Close(), check.IsNil)

	sec := writeTestCerts(c)
	s.clientTLS, err = sec.ToTLSConfig()
	c.Assert(err, check.IsNil)

	path := filepath.Join(dir, "schema-inspector.toml")
	content := fmt.Sprintf(`
dsn = "sqlite://%s"
addr = "127.0.0.1:0"

[security]
ssl-ca = "%s"
ssl-cert = "%s"
ssl-key = "%s"
`, file, sec.SSLCA, sec.SSLCert, sec.SSLKey)
	c.Assert(os.WriteFile(path, []byte(content), 0644), check.IsNil)

	cfg := NewConfig()
	c.Assert(cfg.Parse([]string{"-config", path}), check.IsNil)
	c.Assert(cfg.tls, check.NotNil)
	s.server, err = NewServer(cfg)
	c.Assert(err, check.IsNil)

	s.errCh = make(chan error, 1)
	go func() {
		s.errCh <- s.server.Run()
	}()
	s.addr = ""
	for i := 0; i < 100; i++ {
		if a := s.server.Addr(); a != nil {
			s.addr = a.String()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.Assert(s.addr, check.Not(check.Equals), "")
}

func (s *tlsServerSuite) TearDownTest(c *check.C) {
	s.server.Close()
	select {
	case err := <-s.errCh:
		c.Assert(err, check.IsNil)
	case <-time.After(15 * time.Second):
		c.Fatal("server doesn't stop in time")
	}
}

func (s *tlsServerSuite) TestHTTPS(c *check.C) {
	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: s.clientTLS},
		Timeout:   5 * time.Second,
	}
	resp, err := client.Get("https://" + s.addr + "/status")
	c.Assert(err, check.IsNil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, check.Equals, http.StatusOK)
}

func (s *tlsServerSuite) TestGRPCHealth(c *check.C) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := grpc.DialContext(ctx, s.addr,
		grpc.WithTransportCredentials(credentials.NewTLS(s.clientTLS)), grpc.WithBlock())
	c.Assert(err, check.IsNil)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	var status healthpb.HealthCheckResponse_ServingStatus
	for i := 0; i < 100; i++ {
		hr, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "schema-inspector"})
		c.Assert(err, check.IsNil)
		status = hr.GetStatus()
		if status == healthpb.HealthCheckResponse_SERVING {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.Assert(status, check.Equals, healthpb.HealthCheckResponse_SERVING)
}

func (s *tlsServerSuite) TestPlaintextClientIsRejected(c *check.C) {
	client := &http.Client{Timeout: 5 * time.Second}
	_, err := client.Get("http://" + s.addr + "/status")
	c.Assert(err, check.NotNil)
}
