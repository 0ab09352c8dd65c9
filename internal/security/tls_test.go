package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSelfSigned(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "gateway.test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	if err := os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return certFile, keyFile
}

func TestServerConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSigned(t, dir)

	cfg, err := TLSFiles{CertFile: certFile, KeyFile: keyFile}.ServerConfig()
	if err != nil {
		t.Fatalf("server config: %v", err)
	}
	if cfg.MinVersion != tls.VersionTLS12 || cfg.ClientAuth != tls.NoClientCert {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	mtls, err := TLSFiles{CertFile: certFile, KeyFile: keyFile, CAFile: certFile, RequireClientCert: true}.ServerConfig()
	if err != nil {
		t.Fatalf("mtls config: %v", err)
	}
	if mtls.ClientAuth != tls.RequireAndVerifyClientCert || mtls.ClientCAs == nil {
		t.Fatalf("client auth not enforced: %+v", mtls)
	}
}

func TestServerConfigErrors(t *testing.T) {
	if _, err := (TLSFiles{}).ServerConfig(); !errors.Is(err, ErrMissingKeyPair) {
		t.Fatalf("expected ErrMissingKeyPair, got %v", err)
	}
	dir := t.TempDir()
	certFile, keyFile := writeSelfSigned(t, dir)
	if _, err := (TLSFiles{CertFile: certFile, KeyFile: keyFile, RequireClientCert: true}).ServerConfig(); err == nil {
		t.Fatal("expected error without ca file")
	}
	empty := filepath.Join(dir, "empty.pem")
	_ = os.WriteFile(empty, []byte("nothing"), 0o600)
	if _, err := (TLSFiles{CertFile: certFile, KeyFile: keyFile, CAFile: empty, RequireClientCert: true}).ServerConfig(); err == nil {
		t.Fatal("expected error for ca file without certificates")
	}
}
