package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// Profile names the TLS ClientHello the dictionary requests present.
type Profile string

const (
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
	ProfileGo      Profile = "go" // crypto/tls, no mimicry
	ProfileRandom  Profile = "random"
)

var helloIDs = map[Profile]utls.ClientHelloID{
	ProfileChrome:  utls.HelloChrome_Auto,
	ProfileFirefox: utls.HelloFirefox_Auto,
	ProfileSafari:  utls.HelloIOS_Auto,
	ProfileRandom:  utls.HelloRandomizedALPN,
}

// ParseProfile resolves a configured profile name, case-insensitively.
// The empty string selects ProfileGo.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if p == "" || p == ProfileGo {
		return ProfileGo, nil
	}
	if _, ok := helloIDs[p]; !ok {
		return "", fmt.Errorf("fingerprint: unknown profile %q", s)
	}
	return p, nil
}

// Transport returns an http.Transport presenting the given profile. ProfileGo
// yields a plain clone of http.DefaultTransport; every other profile dials
// TLS through a uTLS client. proxyFunc, when non-nil, replaces the
// transport's Proxy.
func Transport(p Profile, proxyFunc func(*http.Request) (*url.URL, error)) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyFunc != nil {
		transport.Proxy = proxyFunc
	}
	if p == ProfileGo {
		return transport, nil
	}

	helloID, ok := helloIDs[p]
	if !ok {
		return nil, fmt.Errorf("fingerprint: unknown profile %q", p)
	}

	dial := transport.DialContext
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		cfg := &utls.Config{ServerName: host}
		if tc := transport.TLSClientConfig; tc != nil {
			cfg.RootCAs = tc.RootCAs
			cfg.InsecureSkipVerify = tc.InsecureSkipVerify
		}

		uConn, err := newUConn(conn, cfg, helloID)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("fingerprint: utls handshake with %s: %w", host, err)
		}
		return uConn, nil
	}

	return transport, nil
}

// http1Only is the ALPN list offered on uTLS connections. net/http only
// speaks HTTP/2 over connections it dialed with crypto/tls, so a uTLS
// connection must never negotiate h2.
var http1Only = []string{"http/1.1"}

// helloSpec returns the ClientHello of id with its ALPN offer restricted to
// HTTP/1.1.
func helloSpec(id utls.ClientHelloID) (*utls.ClientHelloSpec, error) {
	spec, err := utls.UTLSIdToSpec(id)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: build %s hello: %w", id.Str(), err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = http1Only
		}
	}
	return &spec, nil
}

func newUConn(conn net.Conn, cfg *utls.Config, id utls.ClientHelloID) (*utls.UConn, error) {
	spec, err := helloSpec(id)
	if err != nil {
		return nil, err
	}
	cfg.NextProtos = http1Only
	uConn := utls.UClient(conn, cfg, utls.HelloCustom)
	if err := uConn.ApplyPreset(spec); err != nil {
		return nil, fmt.Errorf("fingerprint: apply %s hello: %w", id.Str(), err)
	}
	return uConn, nil
}
