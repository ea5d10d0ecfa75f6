package fingerprint

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	utls "github.com/refraction-networking/utls"
)

func TestParseProfile(t *testing.T) {
	cases := map[string]Profile{
		"":         ProfileGo,
		"go":       ProfileGo,
		"Chrome":   ProfileChrome,
		" firefox": ProfileFirefox,
		"safari":   ProfileSafari,
		"RANDOM":   ProfileRandom,
	}
	for in, want := range cases {
		got, err := ParseProfile(in)
		if err != nil {
			t.Errorf("ParseProfile(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseProfile(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseProfile("netscape"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestTransport_Profiles(t *testing.T) {
	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileSafari, ProfileGo, ProfileRandom} {
		t.Run(string(p), func(t *testing.T) {
			tr, err := Transport(p, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == ProfileGo && tr.DialTLSContext != nil {
				t.Error("go profile should use the standard TLS dialer")
			}
			if p != ProfileGo && tr.DialTLSContext == nil {
				t.Error("expected uTLS dialer to be installed")
			}
		})
	}
}

func TestTransport_ProxyFunc(t *testing.T) {
	proxyURL, _ := url.Parse("http://127.0.0.1:3128")
	tr, err := Transport(ProfileChrome, http.ProxyURL(proxyURL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, "https://mobile.youdao.com/dict", nil)
	got, err := tr.Proxy(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != proxyURL.String() {
		t.Errorf("expected proxy %s, got %v", proxyURL, got)
	}
}

func TestTransport_GoProfileRoundTrip(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	tr, err := Transport(ProfileGo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tr.CloseIdleConnections()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	resp, err := (&http.Client{Transport: tr}).Get(ts.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestTransport_UnknownProfile(t *testing.T) {
	_, err := Transport(Profile("netscape"), nil)
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if err.Error() != `fingerprint: unknown profile "netscape"` {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestHelloSpec_OffersOnlyHTTP1(t *testing.T) {
	for p, id := range helloIDs {
		t.Run(string(p), func(t *testing.T) {
			spec, err := helloSpec(id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var found bool
			for _, ext := range spec.Extensions {
				alpn, ok := ext.(*utls.ALPNExtension)
				if !ok {
					continue
				}
				found = true
				if len(alpn.AlpnProtocols) != 1 || alpn.AlpnProtocols[0] != "http/1.1" {
					t.Errorf("expected ALPN [http/1.1], got %v", alpn.AlpnProtocols)
				}
			}
			if !found && p != ProfileRandom {
				t.Error("expected the hello to carry an ALPN extension")
			}
		})
	}
}

func TestTransport_ChromeProfileAgainstHTTP2Server(t *testing.T) {
	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Proto))
	}))
	ts.EnableHTTP2 = true
	ts.StartTLS()
	defer ts.Close()

	tr, err := Transport(ProfileChrome, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tr.CloseIdleConnections()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	resp, err := (&http.Client{Transport: tr}).Get(ts.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(body) != "HTTP/1.1" {
		t.Errorf("expected 200 over HTTP/1.1, got %d %q", resp.StatusCode, body)
	}
}
