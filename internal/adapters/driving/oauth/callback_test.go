//nolint:noctx // Test file uses http.Get for convenience; context not required in tests
package oauth

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallbackServer(t *testing.T) {
	server := NewCallbackServer(8080, "/accounts/webhook", "ada@example.com")

	require.NotNil(t, server)
	assert.Equal(t, 8080, server.port)
	assert.Equal(t, "ada@example.com", server.expectedState)
	assert.NotNil(t, server.codeChan)
	assert.NotNil(t, server.errChan)
	assert.Nil(t, server.server)
}

func TestNewCallbackServer_DefaultPath(t *testing.T) {
	server := NewCallbackServer(8080, "", "state")

	assert.Equal(t, "http://localhost:8080/accounts/webhook", server.RedirectURI())
}

func TestCallbackServer_StartAndStop(t *testing.T) {
	port, err := FindAvailablePort(8080, 8180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "", "state")
	require.NoError(t, server.Start())

	assert.NotNil(t, server.server)
	assert.NotNil(t, server.listener)

	require.NoError(t, server.Stop())
	// Stopping again should not error
	require.NoError(t, server.Stop())
}

func TestCallbackServer_Start_PortInUse(t *testing.T) {
	port, err := FindAvailablePort(8080, 8180)
	require.NoError(t, err)

	server1 := NewCallbackServer(port, "", "state-1")
	require.NoError(t, server1.Start())
	defer server1.Stop()

	server2 := NewCallbackServer(port, "", "state-2")
	err = server2.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestCallbackServer_Stop_NotStarted(t *testing.T) {
	server := NewCallbackServer(8080, "", "state")

	require.NoError(t, server.Stop())
}

func TestCallbackServer_RandomPort(t *testing.T) {
	server := NewCallbackServer(0, "", "state")
	require.NoError(t, server.Start())
	defer server.Stop()

	assert.NotZero(t, server.Port())
}

func TestCallbackServer_HandleCallback_Success(t *testing.T) {
	port, err := FindAvailablePort(8080, 8180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "", "ada@example.com")
	require.NoError(t, server.Start())
	defer server.Stop()

	resp, err := http.Get(fmt.Sprintf(
		"http://localhost:%d/accounts/webhook?code=auth-code-1&state=%s",
		port, url.QueryEscape("ada@example.com")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))

	code, err := server.WaitForCode(1 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "auth-code-1", code)
}

func TestCallbackServer_HandleCallback_StateMismatch(t *testing.T) {
	port, err := FindAvailablePort(8080, 8180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "", "correct-state")
	require.NoError(t, server.Start())
	defer server.Stop()

	resp, err := http.Get(fmt.Sprintf(
		"http://localhost:%d/accounts/webhook?code=somecode&state=wrong-state", port))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = server.WaitForCode(1 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestCallbackServer_HandleCallback_MissingCode(t *testing.T) {
	port, err := FindAvailablePort(8080, 8180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "", "state")
	require.NoError(t, server.Start())
	defer server.Stop()

	resp, err := http.Get(fmt.Sprintf(
		"http://localhost:%d/accounts/webhook?state=state", port))
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = server.WaitForCode(1 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authorization code received")
}

func TestCallbackServer_HandleCallback_OAuthError(t *testing.T) {
	port, err := FindAvailablePort(8080, 8180)
	require.NoError(t, err)

	server := NewCallbackServer(port, "", "state")
	require.NoError(t, server.Start())
	defer server.Stop()

	resp, err := http.Get(fmt.Sprintf(
		"http://localhost:%d/accounts/webhook?error=access_denied&error_description=%s",
		port, url.QueryEscape("User denied access")))
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = server.WaitForCode(1 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
	assert.Contains(t, err.Error(), "User denied access")
}

func TestCallbackServer_WaitForCode_Timeout(t *testing.T) {
	server := NewCallbackServer(8080, "", "state")

	code, err := server.WaitForCode(100 * time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout waiting for authorization callback")
	assert.Empty(t, code)
}

func TestCallbackServer_WaitForCode_SingleDelivery(t *testing.T) {
	server := NewCallbackServer(8080, "", "state")

	go func() {
		time.Sleep(50 * time.Millisecond)
		server.codeChan <- "auth-code-once"
	}()

	code, err := server.WaitForCode(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "auth-code-once", code)

	// Code is consumed; a second wait times out.
	_, err = server.WaitForCode(100 * time.Millisecond)
	require.Error(t, err)
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort(8080, 8180)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 8080)
	assert.LessOrEqual(t, port, 8180)
}

func TestFindAvailablePort_NoneAvailable(t *testing.T) {
	// Occupy the whole range, then expect failure.
	server1 := NewCallbackServer(8080, "", "s")
	server2 := NewCallbackServer(8081, "", "s")
	if err := server1.Start(); err != nil {
		t.Skip("ports busy outside the test")
	}
	defer server1.Stop()
	if err := server2.Start(); err != nil {
		t.Skip("ports busy outside the test")
	}
	defer server2.Stop()

	_, err := FindAvailablePort(8080, 8081)
	require.Error(t, err)
}
