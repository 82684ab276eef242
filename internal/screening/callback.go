package screening

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// CallbackPath is where the screener posts verdicts, relative to the base URL.
const CallbackPath = "/api/v1/background-security-callback/"

// ResolveBaseURL returns the URL under which this service is reachable,
// including the context path. An explicit public base URL wins; otherwise the
// host is advertiseHost (or the machine hostname) and the port is taken from
// the bound listener address.
func ResolveBaseURL(publicBase, advertiseHost, contextPath string, addr net.Addr) (string, error) {
	if publicBase != "" {
		return publicBase + contextPath, nil
	}

	host := advertiseHost
	if host == "" {
		h, err := os.Hostname()
		if err != nil {
			return "", fmt.Errorf("resolve hostname: %w", err)
		}
		host = h
	}

	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return "", fmt.Errorf("listener address %v is not a TCP address", addr)
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(tcpAddr.Port)) + contextPath, nil
}

// CallbackURLs builds per-request callback URLs from a fixed base.
type CallbackURLs struct {
	base string
}

func NewCallbackURLs(base string) *CallbackURLs {
	return &CallbackURLs{base: base}
}

func (u *CallbackURLs) CallbackURL(token uuid.UUID) string {
	return u.base + CallbackPath + token.String()
}
